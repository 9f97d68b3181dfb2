package party

// Map is a fixed-size container indexed by the participants of a given
// IDSlice, tracking which slots have been filled (spec.md §3 "Participant
// map"). It is the building block every protocol round uses to know when
// it has heard from everyone before advancing.
type Map[T any] struct {
	ids    IDSlice
	values map[ID]T
	filled map[ID]bool
}

// NewMap creates an empty Map over ids.
func NewMap[T any](ids IDSlice) *Map[T] {
	return &Map[T]{
		ids:    ids,
		values: make(map[ID]T, len(ids)),
		filled: make(map[ID]bool, len(ids)),
	}
}

// Set records the value contributed by id. Setting an id not present in
// the underlying list is a caller bug and panics.
func (m *Map[T]) Set(id ID, v T) {
	if !m.ids.Contains(id) {
		panic("party: Set on participant outside the map's list")
	}
	m.values[id] = v
	m.filled[id] = true
}

// Get returns the value for id and whether it has been set.
func (m *Map[T]) Get(id ID) (T, bool) {
	v, ok := m.filled[id]
	if !ok || !v {
		var zero T
		return zero, false
	}
	return m.values[id], true
}

// Full reports whether every participant in the list has contributed.
func (m *Map[T]) Full() bool {
	for _, id := range m.ids {
		if !m.filled[id] {
			return false
		}
	}
	return true
}

// Range calls f for every filled id, in sorted order.
func (m *Map[T]) Range(f func(ID, T)) {
	for _, id := range m.ids {
		if m.filled[id] {
			f(id, m.values[id])
		}
	}
}

// Counter tracks first-seen membership without storing a payload; used
// where a round only needs to know who has confirmed, not what they sent.
type Counter struct {
	ids  IDSlice
	seen map[ID]bool
}

// NewCounter creates an empty Counter over ids.
func NewCounter(ids IDSlice) *Counter {
	return &Counter{ids: ids, seen: make(map[ID]bool, len(ids))}
}

// Mark records that id has been seen. Returns false if id was already
// marked (useful for detecting duplicate/replayed messages).
func (c *Counter) Mark(id ID) bool {
	if c.seen[id] {
		return false
	}
	c.seen[id] = true
	return true
}

// Full reports whether every participant in the list has been marked.
func (c *Counter) Full() bool {
	for _, id := range c.ids {
		if !c.seen[id] {
			return false
		}
	}
	return true
}
