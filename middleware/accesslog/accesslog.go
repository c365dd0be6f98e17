// Package accesslog implements request access logging as fletch
// middleware: a configurable format-string template and a level-by-status
// split, writing through the fletch/log logger.
//
// Because fletch middleware only runs before the handler, logging status
// and latency needs an "after" hook; this middleware registers one via
// Request.OnComplete rather than wrapping the handler itself.
package accesslog

import (
	"strconv"
	"strings"
	"time"

	"github.com/fletch-http/fletch"
	"github.com/fletch-http/fletch/log"
)

// Config configures the AccessLog middleware's output format.
type Config struct {
	// Format is the log line template. Recognized placeholders:
	// ${remote_ip} ${method} ${path} ${status} ${latency} ${latency_human}
	// ${bytes_in} ${user_agent} ${referer} ${time} ${query}
	Format string

	// Logger overrides the package's default logger, letting an embedder
	// or a test capture output.
	Logger *log.Logger
}

// DefaultConfig returns the default log line format.
func DefaultConfig() Config {
	return Config{
		Format: "${time} | ${status} | ${latency_human} | ${method} ${path}",
	}
}

// New returns middleware that logs one line per request once its Response
// is known. Config defaults if omitted; only the first Config is used if
// more than one is passed.
func New(config ...Config) fletch.Middleware {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	out := cfg.Logger
	if out == nil {
		out = logger
	}

	return func(req *fletch.Request) *fletch.Response {
		req.OnComplete(func(req *fletch.Request, resp *fletch.Response, latency time.Duration) {
			msg := render(cfg.Format, req, resp, latency)
			logAtStatus(out, resp.Status, msg)
		})
		return nil
	}
}

// render expands Format's placeholders for one completed exchange.
func render(format string, req *fletch.Request, resp *fletch.Response, latency time.Duration) string {
	msg := format
	msg = strings.ReplaceAll(msg, "${remote_ip}", req.RemoteAddr)
	msg = strings.ReplaceAll(msg, "${method}", string(req.Method))
	msg = strings.ReplaceAll(msg, "${path}", req.Path())
	msg = strings.ReplaceAll(msg, "${status}", strconv.Itoa(int(resp.Status)))
	msg = strings.ReplaceAll(msg, "${latency}", latency.String())
	msg = strings.ReplaceAll(msg, "${latency_human}", formatLatency(latency))
	msg = strings.ReplaceAll(msg, "${bytes_in}", strconv.Itoa(len(req.Body)))
	msg = strings.ReplaceAll(msg, "${user_agent}", req.Header("User-Agent"))
	msg = strings.ReplaceAll(msg, "${referer}", req.Header("Referer"))
	msg = strings.ReplaceAll(msg, "${time}", time.Now().Format("2006-01-02 15:04:05"))
	msg = strings.ReplaceAll(msg, "${query}", rawQuery(req))
	return msg
}

func rawQuery(req *fletch.Request) string {
	if req.URL == nil || len(req.URL.Query) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(req.URL.Query))
	for k, v := range req.URL.Query {
		if v == "" {
			pairs = append(pairs, k)
			continue
		}
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, "&")
}

// logAtStatus picks a log level from the response status: 5xx→error,
// 4xx→warn, else→info.
func logAtStatus(l *log.Logger, status fletch.Status, msg string) {
	switch {
	case status >= 500:
		l.Error().Msg(msg)
	case status >= 400:
		l.Warn().Msg(msg)
	default:
		l.Info().Msg(msg)
	}
}

// formatLatency renders d with the coarsest unit that keeps it readable,
// favoring ms/µs over raw durations in request logs.
func formatLatency(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return strconv.FormatInt(d.Nanoseconds(), 10) + "ns"
	case d < time.Millisecond:
		return strconv.FormatFloat(float64(d.Nanoseconds())/float64(time.Microsecond), 'f', 2, 64) + "µs"
	case d < time.Second:
		return strconv.FormatFloat(float64(d.Nanoseconds())/float64(time.Millisecond), 'f', 2, 64) + "ms"
	default:
		return strconv.FormatFloat(float64(d.Nanoseconds())/float64(time.Second), 'f', 2, 64) + "s"
	}
}

// logger is the package's default sink, overridable per Config or
// globally for tests via SetLogger.
var logger = log.New(log.DefaultConsoleWriter(), log.InfoLevel)

// SetLogger replaces the package's default logger sink.
func SetLogger(l *log.Logger) {
	logger = l
}
