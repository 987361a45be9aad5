package lazy

import "sync"

// New defers get until the first call to Get.
func New[T any](get func() T) *Value[T] {
	return &Value[T]{get: get}
}

// Value is computed once, on first use, and shared afterwards.
type Value[T any] struct {
	once  sync.Once
	value T
	get   func() T
}

func (l *Value[T]) Get() T {
	l.once.Do(func() {
		l.value = l.get()
	})
	return l.value
}
