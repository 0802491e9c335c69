package devserver

import (
	"sort"
	"sync"
)

// table is an in-memory collection keyed by an auto-assigned id.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[int64]T
	next int64
	idOf func(*T) *int64
}

func newTable[T any](idOf func(*T) *int64) *table[T] {
	return &table[T]{rows: make(map[int64]T), idOf: idOf}
}

func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) insert(v T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	*t.idOf(&v) = t.next
	t.rows[t.next] = v
	return v
}

func (t *table[T]) update(id int64, v T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		var zero T
		return zero, false
	}
	*t.idOf(&v) = id
	t.rows[id] = v
	return v, true
}

func (t *table[T]) remove(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}
