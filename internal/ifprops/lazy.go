package ifprops

import "sync"

// lazyValue holds a value computed on first successful read. Concurrent
// readers block on the mutex, so the computation runs at most once per
// success; a failed computation stores nothing and the next read retries.
type lazyValue[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
}

func (l *lazyValue[T]) get(compute func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.value, nil
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	l.value = v
	l.done = true
	return v, nil
}

func (l *lazyValue[T]) computed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}
