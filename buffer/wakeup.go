package buffer

import "sync"

// Waker is the token the scheduler registers on an edge via
// RegisterWakeup; the peer fires it after a commit. Coalescing of
// repeated fires into one pending wakeup happens on the receiving
// side (the actor's size-1 readiness channel), so firing is always
// safe and idempotent, per spec §4.1's wakeup discipline.
type Waker struct {
	fire func()
}

func NewWaker(fire func()) *Waker { return &Waker{fire: fire} }

func (w *Waker) notify() {
	if w != nil && w.fire != nil {
		w.fire()
	}
}

// wakeSet holds the wakers registered on one side of an edge (a ring
// writer's space may wake several readers at once on fan-out).
type wakeSet struct {
	mu     sync.Mutex
	wakers []*Waker
}

func (s *wakeSet) register(w *Waker) {
	s.mu.Lock()
	s.wakers = append(s.wakers, w)
	s.mu.Unlock()
}

// notifyAll fires every registered waker; a buffer calls it once per
// commit, not once per item.
func (s *wakeSet) notifyAll() {
	s.mu.Lock()
	ws := s.wakers
	s.mu.Unlock()
	for _, w := range ws {
		w.notify()
	}
}
