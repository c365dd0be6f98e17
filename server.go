package fletch

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Server owns a Router, a global Middleware list, a Listener, and a fleet
// of Reactors. It is the single embeddable entry point: construct
// one with New, register routes on its Router, then call Run.
type Server struct {
	router     *Router
	middleware []Middleware
	config     Config

	mu         sync.Mutex
	ln         *listener
	fleet      []*reactor
	dispatcher *dispatcher
	acceptDone chan struct{}
	running    int32
}

// New returns a Server ready for route registration. Passing no Config
// uses DefaultConfig(); in a passed Config, a zero PollTimeout,
// AcceptPollInterval or ReadBufferSize takes its DefaultConfig() value.
func New(config ...Config) *Server {
	cfg := DefaultConfig()
	if len(config) > 0 {
		def := cfg
		cfg = config[0]
		if cfg.PollTimeout <= 0 {
			cfg.PollTimeout = def.PollTimeout
		}
		if cfg.AcceptPollInterval <= 0 {
			cfg.AcceptPollInterval = def.AcceptPollInterval
		}
		if cfg.ReadBufferSize <= 0 {
			cfg.ReadBufferSize = def.ReadBufferSize
		}
	}
	return &Server{
		router: NewRouter(),
		config: cfg,
	}
}

// Router exposes the Server's Router for route registration.
func (s *Server) Router() *Router {
	return s.router
}

// Use appends global middleware, run before every route's own middleware
// in Dispatch order.
func (s *Server) Use(mw ...Middleware) *Server {
	s.middleware = append(s.middleware, mw...)
	return s
}

// GET, POST, PUT, DELETE, PATCH register a route directly on the
// Server's Router, mirroring Group's convenience methods.
func (s *Server) GET(pattern string, handler Handler, middleware ...Middleware) *Server {
	s.router.AddRoute(pattern, MethodGet, handler, middleware, false, nil)
	return s
}

func (s *Server) POST(pattern string, handler Handler, middleware ...Middleware) *Server {
	s.router.AddRoute(pattern, MethodPost, handler, middleware, false, nil)
	return s
}

func (s *Server) PUT(pattern string, handler Handler, middleware ...Middleware) *Server {
	s.router.AddRoute(pattern, MethodPut, handler, middleware, false, nil)
	return s
}

func (s *Server) DELETE(pattern string, handler Handler, middleware ...Middleware) *Server {
	s.router.AddRoute(pattern, MethodDelete, handler, middleware, false, nil)
	return s
}

func (s *Server) PATCH(pattern string, handler Handler, middleware ...Middleware) *Server {
	s.router.AddRoute(pattern, MethodPatch, handler, middleware, false, nil)
	return s
}

// Group returns a route builder anchored at prefix.
func (s *Server) Group(prefix string) *Group {
	return NewGroup(prefix)
}

// Run binds host:port and starts the accept loop plus the reactor fleet.
// It blocks until Stop is called. If accept fails with a non-transient
// error, the accept loop ends but the Reactors keep serving the
// connections already admitted, and Run still returns only after Stop.
func (s *Server) Run(host string, port uint16) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return errors.New("fletch: server already running")
	}

	ln, err := listen(host, port)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return err
	}

	numReactors := s.config.NumReactors
	if numReactors < 1 {
		numReactors = 1
	}
	fleet := make([]*reactor, 0, numReactors)
	for i := 0; i < numReactors; i++ {
		r, err := newReactor(i, s.config, s.dispatch)
		if err != nil {
			for _, started := range fleet {
				started.stopReactor()
			}
			_ = ln.close()
			atomic.StoreInt32(&s.running, 0)
			return err
		}
		fleet = append(fleet, r)
	}

	s.mu.Lock()
	s.ln = ln
	s.fleet = fleet
	s.dispatcher = newDispatcher(fleet)
	s.acceptDone = make(chan struct{})
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range fleet {
		wg.Add(1)
		go func(r *reactor) {
			defer wg.Done()
			r.run()
		}(r)
	}

	if !s.config.DisableStartupMessage {
		displayStartupMessage(ln.addr, numReactors)
	}

	s.acceptLoop()
	wg.Wait()
	return nil
}

// acceptLoop is the Server's accept thread: non-blocking accept, handing
// each new descriptor to the Dispatcher, sleeping briefly on a
// would-block result rather than busy-spinning.
func (s *Server) acceptLoop() {
	for {
		select {
		case <-s.acceptDone:
			return
		default:
		}

		fd, remoteAddr, accepted, ok := s.ln.accept()
		if !ok {
			logger.Error().Msg("accept failed, stopping accept loop")
			return
		}
		if !accepted {
			time.Sleep(s.config.AcceptPollInterval)
			continue
		}
		s.dispatcher.admit(fd, remoteAddr)
	}
}

// Stop idempotently shuts the server down: it stops the accept loop,
// closes the listener, and signals every Reactor to stop within one
// PollTimeout.
func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.acceptDone != nil {
		close(s.acceptDone)
	}
	var err error
	if s.ln != nil {
		err = s.ln.close()
	}
	for _, r := range s.fleet {
		r.stopReactor()
	}
	return err
}

// dispatch implements the per-request flow: global middleware, route
// lookup, then route middleware in order (with short-circuit on a non-nil
// Response), then the handler. A route miss that no global middleware
// short-circuited is a 404; a method mismatch against an
// otherwise-matching path is still a 404, since the router does not
// distinguish the two for lookup purposes.
func (s *Server) dispatch(req *Request) *Response {
	req.start = time.Now()

	resp := s.route(req)

	if req.responseHeaders != nil {
		req.responseHeaders.Range(func(name, value string) {
			if !resp.Headers.Has(name) {
				resp.Headers.Set(name, value)
			}
		})
	}
	elapsed := time.Since(req.start)
	for _, hook := range req.completionHooks {
		hook(req, resp, elapsed)
	}
	return resp
}

// route runs global middleware, resolves the handler, then runs route
// middleware, in list order, each able to short-circuit with a non-nil
// Response. Global middleware runs before the lookup, so it also sees
// requests that match no route, and req.Params is not yet set for it.
func (s *Server) route(req *Request) *Response {
	for _, mw := range s.middleware {
		if resp := mw(req); resp != nil {
			return resp
		}
	}

	handler, params, routeMiddleware, found := s.router.FindRoute(req.Path(), req.Method)
	if !found {
		return plainTextResponse(StatusNotFound, "Not Found")
	}
	req.Params = params

	for _, mw := range routeMiddleware {
		if resp := mw(req); resp != nil {
			return resp
		}
	}

	return handler.Handle(req)
}

// failureResponse converts a Connection.parseRequest error into the
// core's fixed failure responses.
func failureResponse(err error) *Response {
	switch {
	case errors.Is(err, errRequestTooLarge):
		return plainTextResponse(StatusRequestEntityTooLarge, "Request Entity Too Large")
	case errors.Is(err, errUnsupportedMethod), errors.Is(err, errUnsupportedVersion), errors.Is(err, ErrInvalidURL):
		return plainTextResponse(StatusBadRequest, "Bad Request")
	default:
		return plainTextResponse(StatusBadRequest, "Bad Request")
	}
}

// defaultErrorHandler converts a recovered handler panic into a 500,
// unless the panic value is an *HttpError, in which case its own status
// and message are used.
func defaultErrorHandler(recovered interface{}) *Response {
	if httpErr, ok := recovered.(*HttpError); ok {
		return plainTextResponse(httpErr.Code, httpErr.Error())
	}
	if err, ok := recovered.(error); ok {
		var httpErr *HttpError
		if errors.As(err, &httpErr) {
			return plainTextResponse(httpErr.Code, httpErr.Error())
		}
		return plainTextResponse(StatusInternalServerError, err.Error())
	}
	return plainTextResponse(StatusInternalServerError, "Internal Server Error")
}
