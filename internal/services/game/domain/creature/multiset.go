package creature

import "sort"

// Multiset is an unordered bag of creatures. The zero value is empty and
// ready to use; Add allocates on first use.
type Multiset struct {
	counts map[Type]int
	size   int
}

// NewMultiset returns a multiset holding the given creatures.
func NewMultiset(types ...Type) Multiset {
	var m Multiset
	for _, t := range types {
		m.Add(t)
	}
	return m
}

// Add puts one creature of type t into the bag. Zero types are ignored.
func (m *Multiset) Add(t Type) {
	if t.IsZero() {
		return
	}
	if m.counts == nil {
		m.counts = make(map[Type]int)
	}
	m.counts[t]++
	m.size++
}

// Remove takes one creature of type t out of the bag and reports whether one
// was present.
func (m *Multiset) Remove(t Type) bool {
	n := m.counts[t]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(m.counts, t)
	} else {
		m.counts[t] = n - 1
	}
	m.size--
	return true
}

// Count returns how many creatures of type t are in the bag.
func (m Multiset) Count(t Type) int {
	return m.counts[t]
}

// Contains reports whether at least one creature of type t is in the bag.
func (m Multiset) Contains(t Type) bool {
	return m.counts[t] > 0
}

// Len returns the number of creatures in the bag.
func (m Multiset) Len() int {
	return m.size
}

// Types returns the distinct creature types sorted by name.
func (m Multiset) Types() []Type {
	types := make([]Type, 0, len(m.counts))
	for t := range m.counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].name < types[j].name })
	return types
}

// Clone returns an independent copy of the bag.
func (m Multiset) Clone() Multiset {
	if m.counts == nil {
		return Multiset{}
	}
	counts := make(map[Type]int, len(m.counts))
	for t, n := range m.counts {
		counts[t] = n
	}
	return Multiset{counts: counts, size: m.size}
}

// Equal reports whether both bags hold the same creatures.
func (m Multiset) Equal(other Multiset) bool {
	if m.size != other.size || len(m.counts) != len(other.counts) {
		return false
	}
	for t, n := range m.counts {
		if other.counts[t] != n {
			return false
		}
	}
	return true
}
