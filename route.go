package fletch

import "regexp"

// Route is one entry in a Router: a pattern, a method, a shared handler
// reference, an ordered middleware list, a regex-mode flag, and (for
// regex mode) a declared parameter key list that capture groups map to
// positionally.
type Route struct {
	Pattern    string
	Method     Method
	Handler    Handler
	Middleware []Middleware
	IsRegex    bool
	ParamKeys  []string

	regex *regexp.Regexp
}

// RouteSpec describes a route to be added via Router.AddGroup, before it
// is anchored to a group's prefix and middleware.
type RouteSpec struct {
	Pattern    string
	Method     Method
	Handler    Handler
	Middleware []Middleware
	IsRegex    bool
	ParamKeys  []string
}
