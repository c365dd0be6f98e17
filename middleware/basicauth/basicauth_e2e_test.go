package basicauth

import (
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/fletch-http/fletch"
	"github.com/stretchr/testify/assert"
)

// freePort reserves an ephemeral TCP port on loopback and releases it
// immediately, for use by a fletch.Server started moments later.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

// TestBasicAuthMiddlewareE2E drives a real fletch.Server over loopback TCP
// guarded by the Basic Auth middleware.
func TestBasicAuthMiddlewareE2E(t *testing.T) {
	port := freePort(t)

	srv := fletch.New(fletch.Config{NumReactors: 1, DisableStartupMessage: true})
	srv.GET("/protected", fletch.HandlerFunc(func(r *fletch.Request) *fletch.Response {
		resp := fletch.NewResponse()
		resp.Text("Protected Content")
		return resp
	}), New(Config{Username: "admin", Password: "password"}))

	go func() { _ = srv.Run("127.0.0.1", uint16(port)) }()
	defer srv.Stop()
	waitForServer(t, port)

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{"valid credentials", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:password")), http.StatusOK, "Protected Content"},
		{"wrong password", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:nope")), http.StatusUnauthorized, "Unauthorized"},
		{"missing header", "", http.StatusUnauthorized, "Unauthorized"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:"+strconv.Itoa(port)+"/protected", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := http.DefaultClient.Do(req)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantBody, string(body))
		})
	}
}

func waitForServer(t *testing.T, port int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", "127.0.0.1:"+strconv.Itoa(port), 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server on port %d never came up", port)
}
