package fletch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGroupBuildRegistersPrefixedRoutes checks a Group's queued routes
// land on the Router with the prefix applied.
func TestGroupBuildRegistersPrefixedRoutes(t *testing.T) {
	r := NewRouter()
	h := okHandler()

	g := NewGroup("/api/v1")
	g.GET("/ping", h)
	g.POST("/ping", h)
	g.Build(r)

	_, _, _, found := r.FindRoute("/api/v1/ping", MethodGet)
	assert.True(t, found)
	_, _, _, found = r.FindRoute("/api/v1/ping", MethodPost)
	assert.True(t, found)
}

// TestGroupUseAppliesToEveryQueuedRoute checks group middleware is
// attached to every route the group builds, not just the first.
func TestGroupUseAppliesToEveryQueuedRoute(t *testing.T) {
	r := NewRouter()
	h := okHandler()
	mw := Middleware(func(req *Request) *Response { return nil })

	g := NewGroup("/admin")
	g.Use(mw)
	g.GET("/a", h)
	g.GET("/b", h)
	g.Build(r)

	_, _, mwA, _ := r.FindRoute("/admin/a", MethodGet)
	_, _, mwB, _ := r.FindRoute("/admin/b", MethodGet)
	assert.Len(t, mwA, 1)
	assert.Len(t, mwB, 1)
}

// TestGroupHandleMethods checks each convenience method registers under
// the right HTTP method.
func TestGroupHandleMethods(t *testing.T) {
	r := NewRouter()
	h := okHandler()

	g := NewGroup("/res")
	g.PUT("/x", h)
	g.DELETE("/x", h)
	g.PATCH("/x", h)
	g.Build(r)

	_, _, _, found := r.FindRoute("/res/x", MethodPut)
	assert.True(t, found)
	_, _, _, found = r.FindRoute("/res/x", MethodDelete)
	assert.True(t, found)
	_, _, _, found = r.FindRoute("/res/x", MethodPatch)
	assert.True(t, found)
}
