package fletch

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// Request is the parsed form of one HTTP/1 request. It is built once by
// the Reactor, handed to middleware and the handler for the duration of
// the exchange by exclusive ownership, and discarded when the handler
// returns.
type Request struct {
	Method  Method
	URL     *URL
	Version Version
	Headers *Headers
	Body    []byte

	// Params holds path parameters extracted by the Router for the
	// matched route. Middleware may read and mutate it.
	Params map[string]string

	// RemoteAddr is the accepted peer's "ip:port", captured by the
	// listener at accept time so rate-limiting and access logging both
	// have a client identity to key on.
	RemoteAddr string

	// responseHeaders holds headers middleware wants applied to whatever
	// Response the handler eventually produces, set via SetResponseHeader.
	// Middleware in this design has no access to the Response — it only
	// runs before the handler — so a middleware like CORS that must
	// annotate every response, not just short-circuit ones, stages its
	// headers here; Server.dispatch merges them in after the handler
	// returns. Middleware that never calls SetResponseHeader sees no
	// change in behavior.
	responseHeaders *Headers

	// completionHooks are called by Server.dispatch once the final
	// Response is known, with the elapsed time since dispatch began.
	// This gives middleware like access logging an "after" hook despite
	// the list being invoked strictly before the handler.
	completionHooks []func(*Request, *Response, time.Duration)

	start time.Time
}

// SetResponseHeader stages a header to be applied to the eventual
// Response, whether it comes from a later middleware's short-circuit or
// the matched handler. It does not overwrite a header the Response
// already carries by the time it is applied.
func (r *Request) SetResponseHeader(name, value string) {
	if r.responseHeaders == nil {
		r.responseHeaders = NewHeaders()
	}
	r.responseHeaders.Set(name, value)
}

// OnComplete registers fn to run once the final Response for this
// exchange is known, receiving the elapsed time since dispatch began.
// Hooks run in registration order.
func (r *Request) OnComplete(fn func(*Request, *Response, time.Duration)) {
	r.completionHooks = append(r.completionHooks, fn)
}

// PendingResponseHeader returns a header previously staged with
// SetResponseHeader, or "" if none was staged under that name. Exported
// chiefly so middleware can be unit-tested without assembling a whole
// Server to observe the merge Server.dispatch performs.
func (r *Request) PendingResponseHeader(name string) string {
	return r.responseHeaders.Get(name)
}

// CompletionHooksForTest returns the hooks registered via OnComplete, in
// registration order. Exported under this name chiefly so middleware
// packages can unit-test an OnComplete registration without assembling a
// whole Server to drive Server.dispatch's invocation of them.
func (r *Request) CompletionHooksForTest() []func(*Request, *Response, time.Duration) {
	return r.completionHooks
}

// Header returns the first value for name, matched case-insensitively.
func (r *Request) Header(name string) string {
	return r.Headers.Get(name)
}

// Param returns the path parameter named name, or "" if it was not
// captured by the matched route.
func (r *Request) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Query returns the query string value for key, or "" if absent.
func (r *Request) Query(key string) string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Query[key]
}

// Path returns the request's path component.
func (r *Request) Path() string {
	if r.URL == nil {
		return "/"
	}
	return r.URL.Path
}

// ErrEmptyBody is returned by BindJSON when the request has no body to
// read from.
var ErrEmptyBody = errors.New("fletch: request body is empty")

// BindJSON unmarshals the request body into obj with goccy/go-json, the
// same decoder Response.JSON uses to serialize.
func (r *Request) BindJSON(obj interface{}) error {
	if len(r.Body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(r.Body, obj)
}

// JSONField looks up a single field in the request body by its path
// segments (e.g. "user", "email") without unmarshaling into a concrete
// type, using fastjson's zero-allocation value parser. A string value is
// returned unquoted; any other value (number, bool, object, array) is
// returned as its JSON text. Returns "" if the body is absent, not valid
// JSON, or the path does not resolve.
func (r *Request) JSONField(path ...string) string {
	if len(r.Body) == 0 {
		return ""
	}
	var p fastjson.Parser
	v, err := p.ParseBytes(r.Body)
	if err != nil {
		return ""
	}
	field := v.Get(path...)
	if field == nil {
		return ""
	}
	if s, err := field.StringBytes(); err == nil {
		return string(s)
	}
	return field.String()
}
