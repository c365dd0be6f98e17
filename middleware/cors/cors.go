// Package cors implements Cross-Origin Resource Sharing as fletch
// middleware: configurable allowed origins/methods/headers and preflight
// handling.
//
// Because fletch middleware only runs before the handler, a non-preflight
// request's CORS headers cannot be set directly on a Response
// that does not exist yet; this middleware stages them via
// Request.SetResponseHeader, which Server.dispatch applies to whatever
// Response the handler eventually returns. A preflight (OPTIONS) request
// still short-circuits with an immediate Response.
package cors

import (
	"strconv"
	"strings"

	"github.com/fletch-http/fletch"
)

// Config represents the configuration for the CORS middleware.
type Config struct {
	// AllowOrigins is a comma-separated list of origins a cross-domain
	// request can be executed from. "*" allows all origins.
	AllowOrigins string

	// AllowMethods is a comma-separated list of methods the client is
	// allowed to use with cross-domain requests.
	AllowMethods string

	// AllowHeaders is a comma-separated list of non-simple headers the
	// client is allowed to use with cross-domain requests.
	AllowHeaders string

	// ExposeHeaders lists headers safe to expose to the CORS API.
	ExposeHeaders string

	// AllowCredentials indicates whether the request can include user
	// credentials like cookies or HTTP authentication.
	AllowCredentials bool

	// MaxAge is how long, in seconds, a preflight response may be cached.
	// 0 means no Max-Age header.
	MaxAge int
}

// DefaultConfig returns the default configuration for the CORS middleware.
func DefaultConfig() Config {
	return Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{
			string(fletch.MethodGet),
			string(fletch.MethodPost),
			string(fletch.MethodPut),
			string(fletch.MethodDelete),
			string(fletch.MethodHead),
			string(fletch.MethodOptions),
			string(fletch.MethodPatch),
		}, ","),
	}
}

// New returns middleware that handles CORS per cfg. Config defaults if
// omitted; only the first Config is used if more than one is passed.
func New(config ...Config) fletch.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(req *fletch.Request) *fletch.Response {
		origin := req.Header("Origin")
		if origin == "" {
			return nil
		}

		allowOrigin := resolveAllowOrigin(cfg.AllowOrigins, origin)
		req.SetResponseHeader("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			req.SetResponseHeader("Vary", "Origin")
		}

		if req.Method != fletch.MethodOptions {
			if cfg.ExposeHeaders != "" {
				req.SetResponseHeader("Access-Control-Expose-Headers", cfg.ExposeHeaders)
			}
			if cfg.AllowCredentials {
				req.SetResponseHeader("Access-Control-Allow-Credentials", "true")
			}
			return nil
		}

		return preflightResponse(req, cfg, allowOrigin)
	}
}

func resolveAllowOrigin(allowOrigins, origin string) string {
	if allowOrigins == "*" {
		return "*"
	}
	for _, o := range strings.Split(allowOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == origin || o == "*" {
			return origin
		}
	}
	return ""
}

// preflightResponse builds the 204 response to an OPTIONS preflight,
// short-circuiting the middleware chain.
func preflightResponse(req *fletch.Request, cfg Config, allowOrigin string) *fletch.Response {
	resp := fletch.NewResponse()
	resp.SetStatus(fletch.StatusNoContent)
	resp.SetHeader("Access-Control-Allow-Origin", allowOrigin)
	if allowOrigin != "*" {
		resp.SetHeader("Vary", "Origin")
	}
	resp.SetHeader("Access-Control-Allow-Methods", cfg.AllowMethods)

	if cfg.AllowHeaders != "" {
		resp.SetHeader("Access-Control-Allow-Headers", cfg.AllowHeaders)
	} else if requested := req.Header("Access-Control-Request-Headers"); requested != "" {
		resp.SetHeader("Access-Control-Allow-Headers", requested)
	}

	if cfg.AllowCredentials {
		resp.SetHeader("Access-Control-Allow-Credentials", "true")
	}
	if cfg.MaxAge > 0 {
		resp.SetHeader("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
	return resp
}
