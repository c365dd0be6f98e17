package fletch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVersionString checks the wire rendering of each known version.
func TestVersionString(t *testing.T) {
	assert.Equal(t, "HTTP/0.9", Version09.String())
	assert.Equal(t, "HTTP/1.0", Version10.String())
	assert.Equal(t, "HTTP/1.1", Version11.String())
	assert.Equal(t, "HTTP/1.1", VersionUnknown.String())
}

// TestParseVersionAccepted checks only HTTP/1.0 and HTTP/1.1 parse.
func TestParseVersionAccepted(t *testing.T) {
	v, ok := parseVersion("HTTP/1.1")
	assert.True(t, ok)
	assert.Equal(t, Version11, v)

	v, ok = parseVersion("HTTP/1.0")
	assert.True(t, ok)
	assert.Equal(t, Version10, v)
}

// TestParseVersionRejected checks HTTP/2.0 and garbage are rejected, even
// though Version20 exists as a constant for String() rendering.
func TestParseVersionRejected(t *testing.T) {
	_, ok := parseVersion("HTTP/2.0")
	assert.False(t, ok)

	_, ok = parseVersion("garbage")
	assert.False(t, ok)
}

// TestValidMethodsCoversEveryConstant checks every exported Method
// constant is reachable via the parsing lookup table.
func TestValidMethodsCoversEveryConstant(t *testing.T) {
	want := []Method{
		MethodGet, MethodHead, MethodPost, MethodPut, MethodDelete,
		MethodConnect, MethodOptions, MethodTrace, MethodPatch,
	}
	for _, m := range want {
		got, ok := validMethods[string(m)]
		assert.True(t, ok, m)
		assert.Equal(t, m, got)
	}
}
