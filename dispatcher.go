package fletch

import "sync"

// dispatcher hands each newly accepted descriptor to one reactor in its
// fleet, round-robin. It holds no Connection state of its own — only the
// index into the fleet — so the accept loop never contends with a
// reactor's own goroutine.
type dispatcher struct {
	mu    sync.Mutex
	next  int
	fleet []*reactor
}

func newDispatcher(fleet []*reactor) *dispatcher {
	return &dispatcher{fleet: fleet}
}

// admit assigns fd to the next reactor in round-robin order and queues it
// for admission there.
func (d *dispatcher) admit(fd int, remoteAddr string) {
	d.mu.Lock()
	r := d.fleet[d.next]
	d.next = (d.next + 1) % len(d.fleet)
	d.mu.Unlock()

	r.register(fd, remoteAddr)
}
