//go:build linux

package poller

import (
	"errors"

	"golang.org/x/sys/unix"
)

// epollPoller is the Linux Poller, backed directly by the epoll syscalls
// in golang.org/x/sys/unix.
type epollPoller struct {
	fd     int
	events [MaxBatch]unix.EpollEvent
}

// New returns the Poller for the current platform.
func New() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{fd: fd}, nil
}

func toEpoll(events EventFlag) uint32 {
	var e uint32 = unix.EPOLLERR | unix.EPOLLHUP
	if events&Read != 0 {
		e |= unix.EPOLLIN
	}
	if events&Write != 0 {
		e |= unix.EPOLLOUT
	}
	if events&EdgeTriggered != 0 {
		e |= unix.EPOLLET
	}
	return e
}

func fromEpoll(e uint32) EventFlag {
	var f EventFlag
	if e&unix.EPOLLIN != 0 {
		f |= Read
	}
	if e&unix.EPOLLOUT != 0 {
		f |= Write
	}
	if e&unix.EPOLLERR != 0 {
		f |= Error
	}
	if e&unix.EPOLLHUP != 0 {
		f |= Hangup
	}
	return f
}

func (p *epollPoller) Add(fd int, events EventFlag) error {
	ev := unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) Modify(fd int, events EventFlag) error {
	ev := unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) Remove(fd int) error {
	err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
	if err != nil && (errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENOENT)) {
		// Already closed elsewhere; not an error per the Poller contract.
		return nil
	}
	return err
}

func (p *epollPoller) Poll(timeoutMS int) ([]Event, error) {
	n, err := unix.EpollWait(p.fd, p.events[:], timeoutMS)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Event{FD: int(p.events[i].Fd), Events: fromEpoll(p.events[i].Events)})
	}
	return out, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.fd)
}
