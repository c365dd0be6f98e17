package fletch

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// listenBacklog is the fixed accept backlog.
const listenBacklog = 128

// listener is a non-blocking IPv4 TCP listening socket. Hostname
// resolution is out of scope: host must be "", "0.0.0.0", or a
// dotted-quad literal.
type listener struct {
	fd   int
	addr string
}

// listen binds and starts listening on host:port.
func listen(host string, port uint16) (*listener, error) {
	ip, err := resolveBindAddress(host)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("fletch: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fletch: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fletch: set nonblocking: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: int(port)}
	copy(sa.Addr[:], ip)
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fletch: bind: %w", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("fletch: listen: %w", err)
	}

	return &listener{fd: fd, addr: fmt.Sprintf("%s:%d", host, port)}, nil
}

// resolveBindAddress accepts only "", "0.0.0.0", or an IPv4 dotted-quad
// literal — no hostname resolution.
func resolveBindAddress(host string) ([4]byte, error) {
	var out [4]byte
	if host == "" || host == "0.0.0.0" {
		return out, nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return out, fmt.Errorf("fletch: invalid bind address %q (hostname resolution is not supported)", host)
	}
	v4 := ip.To4()
	if v4 == nil {
		return out, fmt.Errorf("fletch: bind address %q is not IPv4", host)
	}
	copy(out[:], v4)
	return out, nil
}

// accept performs one non-blocking accept. ok is false only on a
// non-transient error; a would-block condition is reported as (0, "",
// false, true) so the caller's accept loop just keeps polling.
// remoteAddr is the peer's "ip:port", captured directly from accept(2)'s
// returned sockaddr so downstream middleware (rate limiting, access
// logging) has a client identity to key on.
func (l *listener) accept() (fd int, remoteAddr string, accepted bool, ok bool) {
	connFd, sa, err := unix.Accept(l.fd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return 0, "", false, true
		}
		return 0, "", false, false
	}
	if err := unix.SetNonblock(connFd, true); err != nil {
		_ = unix.Close(connFd)
		return 0, "", false, false
	}
	return connFd, sockaddrString(sa), true, true
}

// sockaddrString renders a unix.Sockaddr as "ip:port", falling back to ""
// for anything other than an IPv4 peer address.
func sockaddrString(sa unix.Sockaddr) string {
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return ""
	}
	ip := net.IP(in4.Addr[:])
	return fmt.Sprintf("%s:%d", ip.String(), in4.Port)
}

// close closes the listening socket.
func (l *listener) close() error {
	return unix.Close(l.fd)
}
