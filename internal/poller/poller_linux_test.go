//go:build linux

package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

// TestPollReportsReadReadiness checks a descriptor with pending data is
// reported Read-ready.
func TestPollReportsReadReadiness(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)
	defer p.Close()

	a, b := socketPair(t)
	assert.NoError(t, p.Add(a, Read))

	_, err = unix.Write(b, []byte("hi"))
	assert.NoError(t, err)

	events, err := p.Poll(1000)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, a, events[0].FD)
	assert.NotZero(t, events[0].Events&Read)
}

// TestPollTimesOutWithNoEvents checks a Poll with nothing ready returns an
// empty, error-free result rather than blocking past timeoutMS.
func TestPollTimesOutWithNoEvents(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)
	defer p.Close()

	a, _ := socketPair(t)
	assert.NoError(t, p.Add(a, Read))

	events, err := p.Poll(50)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

// TestRemoveAlreadyClosedIsNotAnError checks Remove on a descriptor that
// was already closed elsewhere does not return an error, per the Poller
// contract.
func TestRemoveAlreadyClosedIsNotAnError(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)
	defer p.Close()

	a, b := socketPair(t)
	assert.NoError(t, p.Add(a, Read))
	_ = unix.Close(a)
	_ = unix.Close(b)

	assert.NoError(t, p.Remove(a))
}

// TestModifyChangesMonitoredEvents checks a descriptor modified from
// Read to Write does not report readiness for incoming data alone.
func TestModifyChangesMonitoredEvents(t *testing.T) {
	p, err := New()
	assert.NoError(t, err)
	defer p.Close()

	a, b := socketPair(t)
	assert.NoError(t, p.Add(a, Read))
	assert.NoError(t, p.Modify(a, Write))

	_, err = unix.Write(b, []byte("hi"))
	assert.NoError(t, err)

	events, err := p.Poll(50)
	assert.NoError(t, err)
	for _, e := range events {
		assert.Zero(t, e.Events&Read, "read events should not appear once monitoring only Write")
	}
}
