// Package basicauth implements HTTP Basic Authentication as fletch
// middleware (RFC 7617): constant-time credential comparison, returning a
// non-nil Response to short-circuit on failure.
package basicauth

import (
	"crypto/subtle"
	"encoding/base64"

	"github.com/fletch-http/fletch"
)

// Config holds the single username/password pair this middleware checks
// the Authorization header against.
type Config struct {
	Username string
	Password string
}

// DefaultConfig returns placeholder credentials; real use should always
// pass a Config.
func DefaultConfig() Config {
	return Config{
		Username: "example",
		Password: "example",
	}
}

const basicPrefix = "Basic "

// New returns middleware that rejects any request without a valid
// Authorization header for cfg's credentials. Config defaults if omitted;
// only the first Config is used if more than one is passed.
func New(config ...Config) fletch.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(req *fletch.Request) *fletch.Response {
		authHeader := req.Header("Authorization")
		if len(authHeader) <= len(basicPrefix) || authHeader[:len(basicPrefix)] != basicPrefix {
			return unauthorized()
		}

		decoded, err := base64.StdEncoding.DecodeString(authHeader[len(basicPrefix):])
		if err != nil {
			return unauthorized()
		}

		cred := string(decoded)
		sep := -1
		for i := 0; i < len(cred); i++ {
			if cred[i] == ':' {
				sep = i
				break
			}
		}
		if sep == -1 {
			return unauthorized()
		}

		username, password := cred[:sep], cred[sep+1:]
		if subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1 &&
			subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1 {
			return nil
		}
		return unauthorized()
	}
}

func unauthorized() *fletch.Response {
	resp := fletch.NewResponse()
	resp.SetStatus(fletch.StatusUnauthorized)
	resp.Text("Unauthorized")
	resp.SetHeader("WWW-Authenticate", `Basic realm="restricted"`)
	return resp
}
