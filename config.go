package fletch

import "time"

// Config configures a Server. None of these values affect Handler/Router
// semantics, but a real embeddable core still needs them tunable.
type Config struct {
	// NumReactors is the size of the reactor fleet.
	NumReactors int

	// PollTimeout bounds each Poller.poll call.
	PollTimeout time.Duration

	// AcceptPollInterval is how long the accept loop sleeps after a
	// would-block accept.
	AcceptPollInterval time.Duration

	// ReadBufferSize is the size of the temporary region readOnce reads
	// into.
	ReadBufferSize int

	// MaxRequestBytes bounds the inbound buffer before framing gives up
	// and reports a 413 Request Entity Too Large; 0 means unbounded.
	MaxRequestBytes int

	// DisableStartupMessage suppresses the banner Server.Run logs.
	DisableStartupMessage bool

	// ErrorHandler converts a recovered handler panic into a Response.
	// If nil, defaultErrorHandler is used.
	ErrorHandler func(recovered interface{}) *Response
}

// DefaultConfig returns sane defaults for embedding.
func DefaultConfig() Config {
	return Config{
		NumReactors:           4,
		PollTimeout:           100 * time.Millisecond,
		AcceptPollInterval:    10 * time.Millisecond,
		ReadBufferSize:        4096,
		MaxRequestBytes:       0,
		DisableStartupMessage: false,
		ErrorHandler:          defaultErrorHandler,
	}
}
