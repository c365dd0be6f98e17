// Package httpcodec frames request bytes (decides when a buffer holds
// exactly one complete request) and parses them into primitive fields
// the fletch package turns into a Request. It intentionally returns only
// strings/byte slices, not
// fletch.Request/fletch.Headers/fletch.URL, to avoid an import cycle with
// the root package that calls it.
//
// Header-end detection uses github.com/evanphx/wildcat, a zero-copy
// HTTP/1 parser that does nothing more than locate the offset where the
// header block ends — the start line and header lines are still split
// out by hand here.
package httpcodec

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/evanphx/wildcat"
)

// ErrMalformed is returned by Parse when the header block, the start line
// (which must split into exactly three tokens), or a present Content-Length
// header cannot be parsed — surfaces as 400 Bad Request to the caller.
// Method and version tokens are not validated here.
var ErrMalformed = errors.New("fletch: malformed request")

var headerTerminator = []byte("\r\n\r\n")

// HeaderField is one raw header line, name and value as given by the
// producer, case preserved.
type HeaderField struct {
	Name  string
	Value string
}

// ParsedRequest is the structural result of Parse.
type ParsedRequest struct {
	Method  string
	Target  string
	Version string
	Headers []HeaderField
	Body    []byte
}

// IsRequestReady implements request framing: a request is complete once
// the buffer contains the header terminator and, if Content-Length is present
// and parses as a non-negative base-10 integer, at least that many body
// bytes follow. A present-but-unparseable Content-Length is reported as
// ready (Parse will then fail it as malformed, surfacing as 400) so the
// Reactor does not spin waiting on a byte count that will never resolve.
func IsRequestReady(buf []byte) bool {
	idx := bytes.Index(buf, headerTerminator)
	if idx < 0 {
		return false
	}
	headerEnd := idx + len(headerTerminator)
	length, present, ok := contentLengthFromHeaderBlock(buf[:idx])
	if !present || !ok {
		return true
	}
	return len(buf)-headerEnd >= length
}

// Parse parses buf, which must already satisfy IsRequestReady, into a
// ParsedRequest.
func Parse(buf []byte) (*ParsedRequest, error) {
	p := wildcat.NewHTTPParser()
	headerEnd, err := p.Parse(buf)
	if err != nil {
		return nil, ErrMalformed
	}

	raw := bytes.TrimSuffix(buf[:headerEnd], headerTerminator)
	lines := strings.Split(string(raw), "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, ErrMalformed
	}

	startLine := strings.Fields(lines[0])
	if len(startLine) != 3 {
		return nil, ErrMalformed
	}
	method, target, version := startLine[0], startLine[1], startLine[2]

	headers := make([]HeaderField, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		field, ok := parseHeaderLine(line)
		if !ok {
			continue
		}
		headers = append(headers, field)
	}

	length, present, ok := contentLengthFromFields(headers)
	if present && !ok {
		return nil, ErrMalformed
	}

	var body []byte
	if present {
		bodyEnd := headerEnd + length
		if bodyEnd > len(buf) {
			bodyEnd = len(buf)
		}
		body = buf[headerEnd:bodyEnd]
	}

	return &ParsedRequest{
		Method:  method,
		Target:  target,
		Version: version,
		Headers: headers,
		Body:    body,
	}, nil
}

// parseHeaderLine splits one CRLF-stripped header line on the first ": ",
// tolerating a bare ":" without a following space.
func parseHeaderLine(line string) (HeaderField, bool) {
	if idx := strings.Index(line, ": "); idx >= 0 {
		return HeaderField{Name: line[:idx], Value: strings.TrimSuffix(line[idx+2:], "\r")}, true
	}
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		value := strings.TrimPrefix(line[idx+1:], " ")
		return HeaderField{Name: line[:idx], Value: strings.TrimSuffix(value, "\r")}, true
	}
	return HeaderField{}, false
}

// contentLengthFromHeaderBlock scans a raw, not-yet-split header block
// (start line plus header lines, no trailing blank line) for
// Content-Length without building a HeaderField slice, for use in the hot
// framing path.
func contentLengthFromHeaderBlock(block []byte) (length int, present, ok bool) {
	lines := strings.Split(string(block), "\r\n")
	for _, line := range lines[1:] {
		field, okLine := parseHeaderLine(line)
		if !okLine || !strings.EqualFold(field.Name, "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(field.Value))
		if err != nil || n < 0 {
			return 0, true, false
		}
		return n, true, true
	}
	return 0, false, false
}

// contentLengthFromFields looks up Content-Length case-insensitively in an
// already-split header field list.
func contentLengthFromFields(headers []HeaderField) (length int, present, ok bool) {
	for _, f := range headers {
		if !strings.EqualFold(f.Name, "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(f.Value))
		if err != nil || n < 0 {
			return 0, true, false
		}
		return n, true, true
	}
	return 0, false, false
}
