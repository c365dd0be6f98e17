package fletch

// Group is a chainable builder for a set of RouteSpecs sharing a common
// prefix and middleware list, collected lazily and committed to a Router
// via Router.AddGroup when Build is called.
type Group struct {
	prefix     string
	middleware []Middleware
	specs      []RouteSpec
}

// NewGroup returns a Group rooted at prefix.
func NewGroup(prefix string) *Group {
	return &Group{prefix: prefix}
}

// Use appends middleware to the group's middleware list.
func (g *Group) Use(mw ...Middleware) *Group {
	g.middleware = append(g.middleware, mw...)
	return g
}

// Handle queues a route for this group.
func (g *Group) Handle(pattern string, method Method, handler Handler, middleware ...Middleware) *Group {
	g.specs = append(g.specs, RouteSpec{
		Pattern:    pattern,
		Method:     method,
		Handler:    handler,
		Middleware: middleware,
	})
	return g
}

// GET queues a GET route for this group.
func (g *Group) GET(pattern string, handler Handler, middleware ...Middleware) *Group {
	return g.Handle(pattern, MethodGet, handler, middleware...)
}

// POST queues a POST route for this group.
func (g *Group) POST(pattern string, handler Handler, middleware ...Middleware) *Group {
	return g.Handle(pattern, MethodPost, handler, middleware...)
}

// PUT queues a PUT route for this group.
func (g *Group) PUT(pattern string, handler Handler, middleware ...Middleware) *Group {
	return g.Handle(pattern, MethodPut, handler, middleware...)
}

// DELETE queues a DELETE route for this group.
func (g *Group) DELETE(pattern string, handler Handler, middleware ...Middleware) *Group {
	return g.Handle(pattern, MethodDelete, handler, middleware...)
}

// PATCH queues a PATCH route for this group.
func (g *Group) PATCH(pattern string, handler Handler, middleware ...Middleware) *Group {
	return g.Handle(pattern, MethodPatch, handler, middleware...)
}

// Build commits every queued route onto router via Router.AddGroup.
func (g *Group) Build(router *Router) {
	router.AddGroup(g.prefix, g.specs, g.middleware)
}
