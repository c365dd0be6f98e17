//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package poller

import (
	"errors"

	"golang.org/x/sys/unix"
)

// kqueuePoller is the BSD/macOS Poller, backed by kqueue. EdgeTriggered
// maps to EV_CLEAR, kqueue's edge-triggered equivalent.
type kqueuePoller struct {
	fd int
}

// New returns the Poller for the current platform.
func New() (Poller, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{fd: fd}, nil
}

func (p *kqueuePoller) register(fd int, events EventFlag, flags uint16) error {
	var changes []unix.Kevent_t
	if events&Read != 0 || flags == unix.EV_DELETE {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  flags | clearFlag(events),
		})
	}
	if events&Write != 0 {
		changes = append(changes, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  flags | clearFlag(events),
		})
	}
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.fd, changes, nil, nil)
	return err
}

func clearFlag(events EventFlag) uint16 {
	if events&EdgeTriggered != 0 {
		return unix.EV_CLEAR
	}
	return 0
}

func (p *kqueuePoller) Add(fd int, events EventFlag) error {
	return p.register(fd, events, unix.EV_ADD|unix.EV_ENABLE)
}

func (p *kqueuePoller) Modify(fd int, events EventFlag) error {
	// kqueue has no in-place modify; remove both filters then re-add.
	_ = p.Remove(fd)
	return p.Add(fd, events)
}

func (p *kqueuePoller) Remove(fd int) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	_, err := unix.Kevent(p.fd, changes, nil, nil)
	if err != nil && (errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENOENT)) {
		return nil
	}
	return nil
}

func (p *kqueuePoller) Poll(timeoutMS int) ([]Event, error) {
	var ts *unix.Timespec
	if timeoutMS >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMS) * 1_000_000)
		ts = &t
	}
	events := make([]unix.Kevent_t, MaxBatch)
	n, err := unix.Kevent(p.fd, nil, events, ts)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		var f EventFlag
		switch events[i].Filter {
		case unix.EVFILT_READ:
			f |= Read
		case unix.EVFILT_WRITE:
			f |= Write
		}
		if events[i].Flags&unix.EV_EOF != 0 {
			f |= Hangup
		}
		if events[i].Flags&unix.EV_ERROR != 0 {
			f |= Error
		}
		out = append(out, Event{FD: int(events[i].Ident), Events: f})
	}
	return out, nil
}

func (p *kqueuePoller) Close() error {
	return unix.Close(p.fd)
}
