package prospect

// OrderedSet is a set that remembers insertion order.
// The zero value is ready to use.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]struct{}
}

// NewOrderedSet returns a set holding items in their first-seen order.
func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{}
	s.Add(items...)
	return s
}

// Add inserts values not already present and reports whether any was new.
func (s *OrderedSet[T]) Add(values ...T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	added := false
	for _, v := range values {
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = struct{}{}
		s.items = append(s.items, v)
		added = true
	}
	return added
}

// Values returns a copy of the elements in insertion order.
func (s *OrderedSet[T]) Values() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
