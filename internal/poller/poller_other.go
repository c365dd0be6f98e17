//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && unix

package poller

import (
	"sync"

	"golang.org/x/sys/unix"
)

// pollPoller is the fallback Poller for unix platforms without epoll or
// kqueue. It re-derives readiness with unix.Poll each call; it has no
// true edge-triggered mode, so EdgeTriggered is accepted but ignored.
type pollPoller struct {
	mu  sync.Mutex
	set map[int]EventFlag
}

// New returns the Poller for the current platform.
func New() (Poller, error) {
	return &pollPoller{set: make(map[int]EventFlag)}, nil
}

func (p *pollPoller) Add(fd int, events EventFlag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set[fd] = events
	return nil
}

func (p *pollPoller) Modify(fd int, events EventFlag) error {
	return p.Add(fd, events)
}

func (p *pollPoller) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.set, fd)
	return nil
}

func (p *pollPoller) Poll(timeoutMS int) ([]Event, error) {
	p.mu.Lock()
	fds := make([]unix.PollFd, 0, len(p.set))
	order := make([]int, 0, len(p.set))
	for fd, events := range p.set {
		var ev int16 = unix.POLLERR | unix.POLLHUP
		if events&Read != 0 {
			ev |= unix.POLLIN
		}
		if events&Write != 0 {
			ev |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: ev})
		order = append(order, fd)
	}
	p.mu.Unlock()

	if len(fds) == 0 {
		return nil, nil
	}

	n, err := unix.Poll(fds, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	out := make([]Event, 0, n)
	for i, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		var f EventFlag
		if pfd.Revents&unix.POLLIN != 0 {
			f |= Read
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			f |= Write
		}
		if pfd.Revents&unix.POLLERR != 0 {
			f |= Error
		}
		if pfd.Revents&unix.POLLHUP != 0 {
			f |= Hangup
		}
		out = append(out, Event{FD: order[i], Events: f})
		if len(out) == MaxBatch {
			break
		}
	}
	return out, nil
}

func (p *pollPoller) Close() error {
	return nil
}
