package storage

import "sync"

// Subscription receives config bucket changes in commit order. Delivery is
// never blocked by a slow reader: pending changes queue up in memory, so a
// writer may safely be the same goroutine that reads C.
type Subscription struct {
	id    int
	owner *Storage

	mu      sync.Mutex
	queue   []Change
	signal  chan struct{}
	out     chan Change
	done    chan struct{}
	stopped sync.Once
}

// Subscribe registers a new subscriber
func (s *Storage) Subscribe() (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	s.nextID++
	sub := &Subscription{
		id:     s.nextID,
		owner:  s,
		signal: make(chan struct{}, 1),
		out:    make(chan Change),
		done:   make(chan struct{}),
	}
	s.subs[sub.id] = sub
	go sub.pump()
	return sub, nil
}

// C delivers changes. It is closed once the subscription ends.
func (sub *Subscription) C() <-chan Change {
	return sub.out
}

// Close ends the subscription
func (sub *Subscription) Close() {
	sub.owner.mu.Lock()
	delete(sub.owner.subs, sub.id)
	sub.owner.mu.Unlock()
	sub.stop()
}

func (sub *Subscription) stop() {
	sub.stopped.Do(func() { close(sub.done) })
}

func (sub *Subscription) enqueue(c Change) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, c)
	sub.mu.Unlock()

	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

func (sub *Subscription) pump() {
	defer close(sub.out)
	for {
		select {
		case <-sub.done:
			return
		case <-sub.signal:
		}

		for {
			sub.mu.Lock()
			if len(sub.queue) == 0 {
				sub.mu.Unlock()
				break
			}
			next := sub.queue[0]
			sub.queue = sub.queue[1:]
			sub.mu.Unlock()

			select {
			case sub.out <- next:
			case <-sub.done:
				return
			}
		}
	}
}
