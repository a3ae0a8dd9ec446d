package dashboard

import "sync"

// disposable is a render product that holds resources until disposed.
type disposable interface {
	Dispose()
}

// slot owns at most one disposable instance. Readers borrow the instance
// under a read lock; a replacement never lets two instances coexist.
type slot[T disposable] struct {
	mu  sync.RWMutex
	cur T
	set bool
}

// Replace disposes the current instance and then installs what build returns.
func (s *slot[T]) Replace(build func() T) {
	s.release()
	s.install(build())
}

func (s *slot[T]) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		s.cur.Dispose()
		var zero T
		s.cur, s.set = zero, false
	}
}

func (s *slot[T]) install(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur, s.set = v, true
}

// With calls fn with the current instance. It reports false without calling
// fn when the slot is empty.
func (s *slot[T]) With(fn func(T) error) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return false, nil
	}
	return true, fn(s.cur)
}
