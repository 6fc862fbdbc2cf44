// Package cull removes brush faces that are fully hidden behind a
// coincident, opposite-facing face.
package cull

// DiscardSet is a growable set of face ids marked for exclusion from mesh
// and collider generation. Once frozen it is read-only and safe to share
// between workers.
type DiscardSet struct {
	bits   []uint64
	count  int
	frozen bool
}

// NewDiscardSet returns an empty set sized for n face ids.
func NewDiscardSet(n int) *DiscardSet {
	s := &DiscardSet{}
	s.Reset(n)
	return s
}

// Reset empties the set, resizes it for n ids and unfreezes it.
func (s *DiscardSet) Reset(n int) {
	words := (n + 63) / 64
	if cap(s.bits) >= words {
		s.bits = s.bits[:words]
		clear(s.bits)
	} else {
		s.bits = make([]uint64, words)
	}
	s.count = 0
	s.frozen = false
}

// Add marks id as discarded and reports whether it was newly added.
// Adding to a frozen set is a programming error and panics.
func (s *DiscardSet) Add(id int) bool {
	if s.frozen {
		panic("cull: Add on frozen discard set")
	}
	if id < 0 {
		return false
	}
	w := id / 64
	if w >= len(s.bits) {
		s.bits = append(s.bits, make([]uint64, w-len(s.bits)+1)...)
	}
	mask := uint64(1) << (uint(id) % 64)
	if s.bits[w]&mask != 0 {
		return false
	}
	s.bits[w] |= mask
	s.count++
	return true
}

// Contains reports whether id is discarded. Negative ids are never
// discarded. A nil set contains nothing.
func (s *DiscardSet) Contains(id int) bool {
	if s == nil || id < 0 {
		return false
	}
	w := id / 64
	if w >= len(s.bits) {
		return false
	}
	return s.bits[w]&(uint64(1)<<(uint(id)%64)) != 0
}

// Len returns the number of discarded ids.
func (s *DiscardSet) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Freeze makes the set read-only.
func (s *DiscardSet) Freeze() {
	s.frozen = true
}

// Frozen reports whether the set is read-only.
func (s *DiscardSet) Frozen() bool {
	return s.frozen
}

// IDs returns the discarded ids in ascending order.
func (s *DiscardSet) IDs() []int {
	if s == nil {
		return nil
	}
	ids := make([]int, 0, s.count)
	for w, word := range s.bits {
		for b := 0; word != 0; b++ {
			if word&1 != 0 {
				ids = append(ids, w*64+b)
			}
			word >>= 1
		}
	}
	return ids
}
