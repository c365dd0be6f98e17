package fletch

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fletch-http/fletch/internal/poller"
	"github.com/fletch-http/fletch/log"
)

// dispatchFunc runs a parsed Request through middleware and the matched
// handler, producing the Response to write back. A panic from it never
// crosses the reactor loop: reactor.invoke recovers it and converts it via
// Config.ErrorHandler, see Server.dispatch.
type dispatchFunc func(req *Request) *Response

// reactor owns one Poller, a private set of Connections, and an admission
// queue fed by the Dispatcher. Exactly one goroutine ever touches a
// reactor's Poller or Connection map — new descriptors arrive through
// admit rather than being inserted directly, which is what keeps the
// descriptor→Connection map free of cross-thread races.
type reactor struct {
	id   int
	p    poller.Poller
	conn map[int]*Connection
	log  *log.Logger

	admit chan admission

	dispatch        dispatchFunc
	errorHandler    func(recovered interface{}) *Response
	pollTimeout     time.Duration
	readBufSize     int
	maxRequestBytes int

	running int32
	done    chan struct{}
	stop    sync.Once
}

func newReactor(id int, cfg Config, dispatch dispatchFunc) (*reactor, error) {
	p, err := poller.New()
	if err != nil {
		return nil, err
	}
	errHandler := cfg.ErrorHandler
	if errHandler == nil {
		errHandler = defaultErrorHandler
	}
	return &reactor{
		id:              id,
		p:               p,
		conn:            make(map[int]*Connection),
		log:             logger.With(fmt.Sprintf("reactor-%d", id)),
		admit:           make(chan admission, 256),
		dispatch:        dispatch,
		errorHandler:    errHandler,
		pollTimeout:     cfg.PollTimeout,
		readBufSize:     cfg.ReadBufferSize,
		maxRequestBytes: cfg.MaxRequestBytes,
		done:            make(chan struct{}),
	}, nil
}

// admission is one descriptor queued for a reactor to pick up at the top
// of its next poll iteration.
type admission struct {
	fd         int
	remoteAddr string
}

// register queues fd for admission into this reactor's poll set. The
// queue holds 256 pending admissions; the caller (the Dispatcher's accept
// loop) blocks only while that queue is full.
func (r *reactor) register(fd int, remoteAddr string) {
	r.admit <- admission{fd: fd, remoteAddr: remoteAddr}
}

// run is the reactor's whole life: drain admissions, poll, handle
// readiness, repeat, until stopReactor closes done. A per-event failure is
// logged and the offending connection is closed; it never escapes the
// loop. The loop stays on one OS thread for its whole life.
func (r *reactor) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	atomic.StoreInt32(&r.running, 1)
	defer atomic.StoreInt32(&r.running, 0)

	for {
		select {
		case <-r.done:
			r.drain()
			return
		default:
		}

		r.drainAdmissions()

		events, err := r.p.Poll(int(r.pollTimeout / time.Millisecond))
		if err != nil {
			r.log.Error().Err(err).Msg("poll failed")
			continue
		}
		for _, ev := range events {
			r.handleEvent(ev)
		}
	}
}

func (r *reactor) drainAdmissions() {
	for {
		select {
		case a := <-r.admit:
			c := newConnection(a.fd, a.remoteAddr)
			r.conn[a.fd] = c
			if err := r.p.Add(a.fd, readEvents()); err != nil {
				r.log.Error().Err(err).Msg("admit failed")
				c.close()
				delete(r.conn, a.fd)
			}
		default:
			return
		}
	}
}

func readEvents() poller.EventFlag {
	return poller.Read | poller.EdgeTriggered
}

func writeEvents() poller.EventFlag {
	return poller.Write | poller.EdgeTriggered
}

func (r *reactor) handleEvent(ev poller.Event) {
	c, present := r.conn[ev.FD]
	if !present {
		return
	}

	if ev.Events&(poller.Error|poller.Hangup) != 0 && ev.Events&poller.Read == 0 {
		r.closeConn(c)
		return
	}

	if ev.Events&poller.Read != 0 {
		r.handleReadable(c)
		if c.phase == phaseClosed {
			return
		}
	}
	if ev.Events&poller.Write != 0 {
		r.handleWritable(c)
	}
}

// handleReadable reads available bytes, and once a full request is
// framed, parses it, dispatches it, and queues the resulting response
// for write.
func (r *reactor) handleReadable(c *Connection) {
	scratch := make([]byte, r.readBufSize)
	for {
		n, ok := c.readOnce(scratch)
		if !ok {
			r.closeConn(c)
			return
		}
		if n == 0 {
			break
		}
		if n < len(scratch) {
			// Edge-triggered: stop once a read returns less than asked,
			// the socket buffer is drained for now.
			break
		}
	}

	if !c.isRequestReady() {
		if r.maxRequestBytes > 0 && c.in.Size() > r.maxRequestBytes {
			c.prepareResponse(failureResponse(errRequestTooLarge))
			r.flushOrArm(c)
		}
		return
	}

	c.phase = phaseProcessing
	req, err := c.parseRequest()
	if err != nil {
		resp := failureResponse(err)
		c.prepareResponse(resp)
		r.flushOrArm(c)
		return
	}

	resp := r.invoke(req)
	resp.Headers.Set("Connection", "close")
	c.prepareResponse(resp)
	r.flushOrArm(c)
}

// invoke calls dispatch, recovering a handler panic.
func (r *reactor) invoke(req *Request) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Msgf("handler panic recovered: %v", rec)
			resp = r.errorHandler(rec)
		}
	}()
	return r.dispatch(req)
}

// flushOrArm attempts an immediate write; if the response did not fit in
// one syscall, the connection is armed for write-readiness instead of
// spinning.
func (r *reactor) flushOrArm(c *Connection) {
	drained, ok := c.writeOnce()
	if !ok {
		r.closeConn(c)
		return
	}
	if drained {
		// Keep-alive is not implemented: every response closes the
		// connection once fully written.
		r.closeConn(c)
		return
	}
	if err := r.p.Modify(c.fd, writeEvents()); err != nil {
		r.log.Error().Err(err).Msg("arm for write failed")
		r.closeConn(c)
	}
}

func (r *reactor) handleWritable(c *Connection) {
	drained, ok := c.writeOnce()
	if !ok {
		r.closeConn(c)
		return
	}
	if drained {
		r.closeConn(c)
	}
}

func (r *reactor) closeConn(c *Connection) {
	_ = r.p.Remove(c.fd)
	delete(r.conn, c.fd)
	c.close()
}

// drain closes every connection still owned by this reactor, called once
// on shutdown.
func (r *reactor) drain() {
	for _, c := range r.conn {
		_ = r.p.Remove(c.fd)
		c.close()
	}
	r.conn = make(map[int]*Connection)
	_ = r.p.Close()
}

// stopReactor signals run to exit after its current poll cycle, within
// one PollTimeout.
func (r *reactor) stopReactor() {
	r.stop.Do(func() {
		close(r.done)
	})
}
