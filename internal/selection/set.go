// Package selection tracks which catalog records the user has picked for plotting.
package selection

import (
	"slices"
	"strconv"
	"strings"
)

// Set is an unordered set of catalog record ids. The zero value is ready to use.
// It is not safe for concurrent mutation; the owning view serialises access.
type Set struct {
	ids map[int]struct{}
}

// New returns a set holding ids.
func New(ids ...int) *Set {
	s := &Set{}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Set) add(id int) {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	s.ids[id] = struct{}{}
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Set) Toggle(id int) bool {
	if s.Remove(id) {
		return false
	}
	s.add(id)
	return true
}

// Remove deselects id, reporting whether it was selected.
func (s *Set) Remove(id int) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Clear deselects everything.
func (s *Set) Clear() {
	clear(s.ids)
}

// Contains reports whether id is selected.
func (s *Set) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the selected ids in ascending order. Fetching and export use
// this order so one render always sees the same sequence.
func (s *Set) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Fingerprint is a compact, order-independent identity of the set contents.
func (s *Set) Fingerprint() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
