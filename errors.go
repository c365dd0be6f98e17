package fletch

import "errors"

// Sentinel request failures. errUnsupportedMethod and errUnsupportedVersion
// are surfaced by Connection.parseRequest and map to 400 Bad Request in
// failureResponse; errRequestTooLarge is raised by the reactor when the
// inbound buffer exceeds MaxRequestBytes and maps to 413 Request Entity
// Too Large.
var (
	errUnsupportedMethod  = errors.New("fletch: unsupported method")
	errUnsupportedVersion = errors.New("fletch: unsupported version")
	errRequestTooLarge    = errors.New("fletch: request exceeds MaxRequestBytes")
)
