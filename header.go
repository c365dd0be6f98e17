package fletch

import "strings"

// header is a single name/value pair as it appeared on the wire, or as a
// handler set it. The name keeps whatever case the producer gave it.
type header struct {
	name  string
	value string
}

// Headers holds an HTTP header mapping: string-to-string, case-preserving
// on write, case-insensitive on lookup. Insertion order is kept so that
// Response serialization can emit headers in the order a handler or
// middleware set them.
//
// Unlike net/http's Header, this is not a map keyed by canonical form: the
// exact case given by the caller survives round-trips, which is required
// for Request parsing (producer-supplied case) as well as for handlers that
// want a specific header casing on the wire.
type Headers struct {
	entries []header
}

// NewHeaders returns an empty Headers value.
func NewHeaders() *Headers {
	return &Headers{entries: make([]header, 0, 8)}
}

func (h *Headers) indexOf(name string) int {
	for i := range h.entries {
		if strings.EqualFold(h.entries[i].name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value for name, matched case-insensitively. Returns ""
// if the header is absent.
func (h *Headers) Get(name string) string {
	if h == nil {
		return ""
	}
	if i := h.indexOf(name); i >= 0 {
		return h.entries[i].value
	}
	return ""
}

// Has reports whether name is present, matched case-insensitively.
func (h *Headers) Has(name string) bool {
	return h != nil && h.indexOf(name) >= 0
}

// Set replaces any existing value for name (matched case-insensitively)
// with value, preserving the position of the first occurrence. If absent,
// it is appended using the case given here.
func (h *Headers) Set(name, value string) {
	if i := h.indexOf(name); i >= 0 {
		h.entries[i].value = value
		return
	}
	h.entries = append(h.entries, header{name: name, value: value})
}

// Add appends name/value as a new entry without replacing an existing one,
// preserving the case given here. Used by the codec when parsing a request
// so duplicate header lines are not silently merged out of order.
func (h *Headers) Add(name, value string) {
	h.entries = append(h.entries, header{name: name, value: value})
}

// Del removes all entries matching name, case-insensitively.
func (h *Headers) Del(name string) {
	out := h.entries[:0]
	for _, e := range h.entries {
		if !strings.EqualFold(e.name, name) {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Keys returns the header names in insertion order, each exactly as given.
func (h *Headers) Keys() []string {
	if h == nil {
		return nil
	}
	keys := make([]string, len(h.entries))
	for i, e := range h.entries {
		keys[i] = e.name
	}
	return keys
}

// Len reports the number of header entries.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Clone returns a deep copy of h.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return NewHeaders()
	}
	c := &Headers{entries: make([]header, len(h.entries))}
	copy(c.entries, h.entries)
	return c
}

// Range calls fn for every header entry in insertion order.
func (h *Headers) Range(fn func(name, value string)) {
	if h == nil {
		return
	}
	for _, e := range h.entries {
		fn(e.name, e.value)
	}
}
