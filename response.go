package fletch

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/valyala/bytebufferpool"
)

// Response is built by a handler and transferred to the Reactor for
// serialization. It is mutable while the handler runs and read-only
// afterward.
type Response struct {
	Version Version
	Status  Status
	Headers *Headers
	Body    []byte
}

// NewResponse returns a Response defaulted to HTTP/1.1 with empty headers.
func NewResponse() *Response {
	return &Response{
		Version: Version11,
		Status:  StatusOK,
		Headers: NewHeaders(),
	}
}

// SetHeader sets a response header, preserving the case given here.
func (r *Response) SetHeader(name, value string) *Response {
	r.Headers.Set(name, value)
	return r
}

// SetStatus sets the response status code.
func (r *Response) SetStatus(status Status) *Response {
	r.Status = status
	return r
}

// SetBody sets the response body. The core never inserts Content-Length
// on its own; use Text or JSON, or set it explicitly, if that matters.
func (r *Response) SetBody(body []byte) *Response {
	r.Body = body
	return r
}

// Text sets the body to s, Content-Type to text/plain, and Content-Length.
func (r *Response) Text(s string) *Response {
	r.Body = []byte(s)
	r.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	r.Headers.Set("Content-Length", strconv.Itoa(len(r.Body)))
	return r
}

// JSON marshals v with goccy/go-json and sets the body, Content-Type, and
// Content-Length accordingly.
func (r *Response) JSON(v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Body = body
	r.Headers.Set("Content-Type", "application/json; charset=utf-8")
	r.Headers.Set("Content-Length", strconv.Itoa(len(r.Body)))
	return nil
}

// Serialize renders the response in wire format: status line, headers in
// insertion order, blank line, body verbatim.
func (r *Response) Serialize() []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(r.Version.String())
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(int(r.Status)))
	buf.WriteByte(' ')
	buf.WriteString(StatusText(r.Status))
	buf.WriteString("\r\n")

	r.Headers.Range(func(name, value string) {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})

	buf.WriteString("\r\n")
	buf.Write(r.Body)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// plainTextResponse builds one of the core's fixed failure responses,
// always carrying Connection: close.
func plainTextResponse(status Status, body string) *Response {
	r := NewResponse()
	r.Status = status
	r.Text(body)
	r.Headers.Set("Connection", "close")
	return r
}
