package fletch

import (
	"regexp"
	"strings"
)

// Router is an ordered sequence of Routes. It is constructed once, then
// read-only from every Reactor's point of view while the Server runs.
type Router struct {
	routes []*Route
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{}
}

// AddRoute appends a route to the router. For regex routes the pattern
// is compiled once here; a malformed regex panics at
// registration time as a programmer error (as opposed to request-time
// parse failures, which are always reported to the caller as a Response
// rather than a panic).
func (r *Router) AddRoute(pattern string, method Method, handler Handler, middleware []Middleware, isRegex bool, paramKeys []string) *Router {
	route := &Route{
		Pattern:    pattern,
		Method:     method,
		Handler:    handler,
		Middleware: middleware,
		IsRegex:    isRegex,
		ParamKeys:  paramKeys,
	}
	if isRegex {
		route.regex = regexp.MustCompile(pattern)
	}
	r.routes = append(r.routes, route)
	return r
}

// AddGroup appends each of routes with pattern prefixed by prefix, and
// its middleware list extended with the group's middleware appended
// after the route's own: the combined order is per-route middleware
// first, then the group's.
func (r *Router) AddGroup(prefix string, routes []RouteSpec, middleware []Middleware) *Router {
	for _, spec := range routes {
		pattern := joinPath(prefix, spec.Pattern)
		combined := make([]Middleware, 0, len(spec.Middleware)+len(middleware))
		combined = append(combined, spec.Middleware...)
		combined = append(combined, middleware...)
		r.AddRoute(pattern, spec.Method, spec.Handler, combined, spec.IsRegex, spec.ParamKeys)
	}
	return r
}

// AddResource appends the five routes of a REST resource, in this fixed
// order: GET /name, POST /name, GET /name/:id, PUT /name/:id,
// DELETE /name/:id.
func (r *Router) AddResource(name string, handler Handler, middleware []Middleware) *Router {
	base := joinPath("/", name)
	withID := joinPath(base, ":id")
	r.AddRoute(base, MethodGet, handler, middleware, false, nil)
	r.AddRoute(base, MethodPost, handler, middleware, false, nil)
	r.AddRoute(withID, MethodGet, handler, middleware, false, nil)
	r.AddRoute(withID, MethodPut, handler, middleware, false, nil)
	r.AddRoute(withID, MethodDelete, handler, middleware, false, nil)
	return r
}

// joinPath concatenates a prefix and a suffix with exactly one '/' between
// them.
func joinPath(prefix, suffix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if suffix == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return prefix + suffix
}

// splitSegments splits p on '/' into its non-empty segments.
func splitSegments(p string) []string {
	parts := strings.Split(p, "/")
	segments := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// FindRoute returns the first route, in insertion order, whose method
// matches and whose pattern matches path. Regex and parametric routes do
// not preempt each other.
func (r *Router) FindRoute(path string, method Method) (handler Handler, params map[string]string, middleware []Middleware, found bool) {
	for _, route := range r.routes {
		if route.Method != method {
			continue
		}
		if route.IsRegex {
			if p, ok := matchRegexRoute(route, path); ok {
				return route.Handler, p, route.Middleware, true
			}
			continue
		}
		if p, ok := matchLiteralRoute(route, path); ok {
			return route.Handler, p, route.Middleware, true
		}
	}
	return nil, nil, nil, false
}

func matchRegexRoute(route *Route, path string) (map[string]string, bool) {
	m := route.regex.FindStringSubmatch(path)
	if m == nil || m[0] != path {
		return nil, false
	}
	params := make(map[string]string)
	for i := 1; i < len(m); i++ {
		if i-1 < len(route.ParamKeys) {
			params[route.ParamKeys[i-1]] = m[i]
		}
	}
	return params, true
}

func matchLiteralRoute(route *Route, path string) (map[string]string, bool) {
	patternSegs := splitSegments(route.Pattern)
	pathSegs := splitSegments(path)
	if len(patternSegs) != len(pathSegs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			params[seg[1:]] = pathSegs[i]
			continue
		}
		if seg != pathSegs[i] {
			return nil, false
		}
	}
	return params, true
}
