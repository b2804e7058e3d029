// Package intset provides small sorted integer sets. They are used for item
// indexes during lane tracing and for state bookkeeping while splitting, where
// deterministic iteration order matters.
package intset

import (
	"fmt"
	"strings"
)

// Set is an integer set kept as a sorted vector.
type Set struct {
	elems []int
}

func New(elems ...int) *Set {
	s := &Set{}
	for _, e := range elems {
		s.Insert(e)
	}
	return s
}

func (s *Set) Len() int {
	return len(s.elems)
}

func (s *Set) At(i int) int {
	return s.elems[i]
}

func (s *Set) Values() []int {
	return s.elems
}

func (s *Set) find(v int) (int, bool) {
	lo, hi := 0, len(s.elems)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.elems[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(s.elems) && s.elems[lo] == v
}

// Insert adds v and reports whether the set changed.
func (s *Set) Insert(v int) bool {
	i, ok := s.find(v)
	if ok {
		return false
	}
	s.elems = append(s.elems, 0)
	copy(s.elems[i+1:], s.elems[i:])
	s.elems[i] = v
	return true
}

func (s *Set) Contains(v int) bool {
	_, ok := s.find(v)
	return ok
}

func (s *Set) Copy() *Set {
	c := &Set{elems: make([]int, len(s.elems))}
	copy(c.elems, s.elems)
	return c
}

func (s *Set) Equal(o *Set) bool {
	if len(s.elems) != len(o.elems) {
		return false
	}
	for i, v := range s.elems {
		if o.elems[i] != v {
			return false
		}
	}
	return true
}

// UnionWith merges o into s and reports whether s changed.
func (s *Set) UnionWith(o *Set) bool {
	merged := make([]int, 0, len(s.elems)+len(o.elems))
	i, j := 0, 0
	changed := false
	for i < len(s.elems) && j < len(o.elems) {
		switch {
		case s.elems[i] < o.elems[j]:
			merged = append(merged, s.elems[i])
			i++
		case s.elems[i] > o.elems[j]:
			merged = append(merged, o.elems[j])
			j++
			changed = true
		default:
			merged = append(merged, s.elems[i])
			i++
			j++
		}
	}
	merged = append(merged, s.elems[i:]...)
	if j < len(o.elems) {
		merged = append(merged, o.elems[j:]...)
		changed = true
	}
	s.elems = merged
	return changed
}

func (s *Set) String() string {
	var b strings.Builder
	for i, v := range s.elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	return b.String()
}
