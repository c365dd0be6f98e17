package fletch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewResponseDefaults checks the zero-value Response fletch hands to
// handlers.
func TestNewResponseDefaults(t *testing.T) {
	r := NewResponse()
	assert.Equal(t, Version11, r.Version)
	assert.Equal(t, StatusOK, r.Status)
	assert.NotNil(t, r.Headers)
}

// TestResponseTextSetsContentTypeAndLength checks Text's side effects.
func TestResponseTextSetsContentTypeAndLength(t *testing.T) {
	r := NewResponse()
	r.Text("hello")

	assert.Equal(t, "hello", string(r.Body))
	assert.Equal(t, "text/plain; charset=utf-8", r.Headers.Get("Content-Type"))
	assert.Equal(t, "5", r.Headers.Get("Content-Length"))
}

// TestResponseJSONSetsContentTypeAndLength checks JSON marshals the value
// and sets headers to match.
func TestResponseJSONSetsContentTypeAndLength(t *testing.T) {
	r := NewResponse()
	err := r.JSON(map[string]string{"hello": "world"})
	assert.NoError(t, err)

	assert.Equal(t, "application/json; charset=utf-8", r.Headers.Get("Content-Type"))
	assert.Contains(t, string(r.Body), `"hello":"world"`)
}

// TestResponseSerializeFormat checks the wire format: status line, headers
// in insertion order, blank line, body.
func TestResponseSerializeFormat(t *testing.T) {
	r := NewResponse()
	r.SetStatus(StatusCreated)
	r.SetHeader("X-A", "1")
	r.SetHeader("X-B", "2")
	r.SetBody([]byte("ok"))

	raw := string(r.Serialize())
	lines := strings.Split(raw, "\r\n")

	assert.Equal(t, "HTTP/1.1 201 Created", lines[0])
	assert.Equal(t, "X-A: 1", lines[1])
	assert.Equal(t, "X-B: 2", lines[2])
	assert.Equal(t, "", lines[3])
	assert.True(t, strings.HasSuffix(raw, "ok"))
}

// TestPlainTextResponseSetsConnectionClose checks every core-issued error
// response always carries Connection: close.
func TestPlainTextResponseSetsConnectionClose(t *testing.T) {
	r := plainTextResponse(StatusBadRequest, "bad request")
	assert.Equal(t, "close", r.Headers.Get("Connection"))
	assert.Equal(t, StatusBadRequest, r.Status)
	assert.Equal(t, "bad request", string(r.Body))
}
