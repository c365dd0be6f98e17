package fletch

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/fletch-http/fletch/internal/buffer"
	"github.com/fletch-http/fletch/internal/httpcodec"
)

// connPhase is a Connection's position in the request/response cycle.
type connPhase int32

const (
	phaseReadingRequest connPhase = iota
	phaseProcessing
	phaseWritingResponse
	phaseClosed
)

// Connection wraps one accepted socket and the two byte buffers that
// carry its inbound and outbound bytes. It belongs to exactly one
// Reactor for its whole lifetime; nothing else touches its descriptor.
type Connection struct {
	fd         int
	remoteAddr string
	in         *buffer.Buffer
	out        *buffer.Buffer
	phase      connPhase
}

// connPool recycles *Connection values across accept cycles so a busy
// reactor doesn't allocate a fresh struct for every socket it ever
// admits. This is the supplemented ConnectionPool concept: a
// descriptor's Connection is returned to the pool once close() runs,
// and the next newConnection call reuses it instead of allocating.
var connPool = sync.Pool{
	New: func() interface{} { return new(Connection) },
}

// newConnection wraps fd, already accepted and set non-blocking by the
// caller, reusing a pooled *Connection when one is available. remoteAddr
// is the peer address captured at accept time, needed by rate-limiting
// and access-log middleware.
func newConnection(fd int, remoteAddr string) *Connection {
	c := connPool.Get().(*Connection)
	c.fd = fd
	c.remoteAddr = remoteAddr
	c.in = buffer.New()
	c.out = buffer.New()
	c.phase = phaseReadingRequest
	return c
}

// readOnce performs a single non-blocking read into in. It returns
// ok=false when the peer closed the connection (EOF) or a
// non-transient error occurred; the caller destroys the Connection in
// that case. A would-block read (EAGAIN) is reported as ok=true with n=0:
// there is simply nothing to do until the Poller reports readiness again.
func (c *Connection) readOnce(scratch []byte) (n int, ok bool) {
	n, err := unix.Read(c.fd, scratch)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return 0, true
		}
		return 0, false
	}
	if n == 0 {
		// Peer closed its write half.
		return 0, false
	}
	c.in.Append(scratch[:n])
	return n, true
}

// isRequestReady reports whether in currently holds one complete request,
// per the codec's framing rules.
func (c *Connection) isRequestReady() bool {
	return httpcodec.IsRequestReady(c.in.Snapshot())
}

// parseRequest parses the complete request currently sitting in in into a
// Request, and advances in past the consumed bytes (any pipelined bytes
// following the request are preserved for the next cycle).
func (c *Connection) parseRequest() (*Request, error) {
	raw := c.in.Snapshot()
	parsed, err := httpcodec.Parse(raw)
	if err != nil {
		return nil, err
	}

	method, knownMethod := validMethods[parsed.Method]
	if !knownMethod {
		return nil, errUnsupportedMethod
	}
	version, knownVersion := parseVersion(parsed.Version)
	if !knownVersion {
		return nil, errUnsupportedVersion
	}
	u, err := ParseURL(parsed.Target)
	if err != nil {
		return nil, err
	}

	headers := NewHeaders()
	for _, f := range parsed.Headers {
		headers.Add(f.Name, f.Value)
	}

	consumed := requestByteLength(raw, parsed)
	c.in.Advance(consumed)

	return &Request{
		Method:     method,
		URL:        u,
		Version:    version,
		Headers:    headers,
		Body:       append([]byte(nil), parsed.Body...),
		RemoteAddr: c.remoteAddr,
	}, nil
}

// requestByteLength computes how many leading bytes of raw the parsed
// request occupies, so the caller can advance past exactly that much and
// retain a pipelined follow-on request intact.
func requestByteLength(raw []byte, parsed *httpcodec.ParsedRequest) int {
	headerEnd := len(raw)
	if idx := indexHeaderTerminator(raw); idx >= 0 {
		headerEnd = idx + len(headerTerminator)
	}
	return headerEnd + len(parsed.Body)
}

func indexHeaderTerminator(raw []byte) int {
	for i := 0; i+len(headerTerminator) <= len(raw); i++ {
		match := true
		for j := range headerTerminator {
			if raw[i+j] != headerTerminator[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// prepareResponse serializes resp into out, readying the Connection for
// writeOnce.
func (c *Connection) prepareResponse(resp *Response) {
	c.out.Append(resp.Serialize())
	c.phase = phaseWritingResponse
}

// writeOnce performs a single non-blocking write from out. out.Advance(n)
// keeps exactly the unsent tail instead of discarding the whole buffer on
// any positive write. drained reports whether out is now empty.
func (c *Connection) writeOnce() (drained bool, ok bool) {
	pending := c.out.Snapshot()
	if len(pending) == 0 {
		return true, true
	}
	n, err := unix.Write(c.fd, pending)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return false, true
		}
		return false, false
	}
	c.out.Advance(n)
	return c.out.Empty(), true
}

// close closes the underlying descriptor exactly once and marks the
// Connection closed.
func (c *Connection) close() {
	if c.phase == phaseClosed {
		return
	}
	c.phase = phaseClosed
	_ = unix.Close(c.fd)
	c.in.Release()
	c.out.Release()
	c.in = nil
	c.out = nil
	connPool.Put(c)
}
