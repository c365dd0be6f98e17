package basicauth

import (
	"encoding/base64"
	"testing"

	"github.com/fletch-http/fletch"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "example", config.Username)
	assert.Equal(t, "example", config.Password)
}

func newReq(authHeader string) *fletch.Request {
	req := &fletch.Request{Headers: fletch.NewHeaders()}
	if authHeader != "" {
		req.Headers.Set("Authorization", authHeader)
	}
	return req
}

func TestNewAllowsValidCredentials(t *testing.T) {
	mw := New(Config{Username: "admin", Password: "secret"})
	req := newReq("Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	assert.Nil(t, mw(req), "valid credentials should not short-circuit")
}

func TestNewRejectsWrongPassword(t *testing.T) {
	mw := New(Config{Username: "admin", Password: "secret"})
	req := newReq("Basic " + base64.StdEncoding.EncodeToString([]byte("admin:wrong")))
	resp := mw(req)
	if assert.NotNil(t, resp) {
		assert.Equal(t, fletch.StatusUnauthorized, resp.Status)
		assert.Equal(t, "Unauthorized", string(resp.Body))
	}
}

func TestNewRejectsMissingHeader(t *testing.T) {
	mw := New(Config{Username: "admin", Password: "secret"})
	resp := mw(newReq(""))
	if assert.NotNil(t, resp) {
		assert.Equal(t, fletch.StatusUnauthorized, resp.Status)
	}
}

func TestNewRejectsNonBasicScheme(t *testing.T) {
	mw := New(Config{Username: "admin", Password: "secret"})
	resp := mw(newReq("Bearer token"))
	assert.Equal(t, fletch.StatusUnauthorized, resp.Status)
}

func TestNewRejectsInvalidBase64(t *testing.T) {
	mw := New(Config{Username: "admin", Password: "secret"})
	resp := mw(newReq("Basic not-base64!!"))
	assert.Equal(t, fletch.StatusUnauthorized, resp.Status)
}

func TestNewRejectsMissingColon(t *testing.T) {
	mw := New(Config{Username: "admin", Password: "secret"})
	req := newReq("Basic " + base64.StdEncoding.EncodeToString([]byte("adminsecret")))
	resp := mw(req)
	assert.Equal(t, fletch.StatusUnauthorized, resp.Status)
}

func TestNewDefaultConfig(t *testing.T) {
	mw := New()
	req := newReq("Basic " + base64.StdEncoding.EncodeToString([]byte("example:example")))
	assert.Nil(t, mw(req))
}
