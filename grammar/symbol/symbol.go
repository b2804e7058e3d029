package symbol

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindDefinition Kind = iota
	KindTerminal
	KindNonTerminal
)

func (k Kind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindTerminal:
		return "terminal"
	case KindNonTerminal:
		return "non-terminal"
	}
	return "?"
}

type Flags uint16

const (
	// Install is the lowest bit.
	Install Flags = 1 << iota
	Left
	Right
	None
	Case
	Aliased
	Empty
)

const Associativity = Left | Right | None

// Symbol is one interned terminal, nonterminal, or definition. Order is the
// allocation sequence number and is the sort key of every symbol set, so all
// set iteration is deterministic run to run.
type Symbol struct {
	Order      int
	Name       string
	Kind       Kind
	Token      int
	Flags      Flags
	Precedence int // -1 when undeclared
	InsertCost int
	DeleteCost int
	Alias      *Symbol
}

func (s *Symbol) Assoc() Flags {
	return s.Flags & Associativity
}

// IsEmpty reports whether the symbol is an epsilon terminal. Epsilon
// terminals occupy RHS positions but never shift.
func (s *Symbol) IsEmpty() bool {
	return s.Kind == KindTerminal && s.Flags&Empty != 0
}

func (s *Symbol) String() string {
	return s.Name
}

type tableKey struct {
	name string
	kind Kind
}

// Table interns symbols and hands out their order keys.
type Table struct {
	next    int
	entries map[tableKey]*Symbol
	list    []*Symbol
}

func NewTable() *Table {
	return &Table{
		entries: map[tableKey]*Symbol{},
	}
}

// Intern returns the existing symbol for (name, kind) or allocates one.
func (t *Table) Intern(name string, kind Kind) *Symbol {
	key := tableKey{name: name, kind: kind}
	if sym, ok := t.entries[key]; ok {
		return sym
	}
	t.next++
	sym := &Symbol{
		Order:      t.next,
		Name:       name,
		Kind:       kind,
		Precedence: -1,
	}
	t.entries[key] = sym
	t.list = append(t.list, sym)
	return sym
}

// Lookup returns the symbol for (name, kind), or nil.
func (t *Table) Lookup(name string, kind Kind) *Symbol {
	return t.entries[tableKey{name: name, kind: kind}]
}

// Symbols returns all interned symbols in allocation order.
func (t *Table) Symbols() []*Symbol {
	return t.list
}

// Marker allocates a symbol that is not interned. Markers seed kernel follow
// sets during lookahead edge discovery; they carry token numbers above the
// terminal range and are removed from every set before the phase ends.
func (t *Table) Marker(token int) *Symbol {
	t.next++
	return &Symbol{
		Order:      t.next,
		Name:       "marker",
		Kind:       KindTerminal,
		Token:      token,
		Precedence: -1,
	}
}

// Set is a symbol set kept as a vector sorted by Order. Union, intersection,
// and equality run as linear merges.
type Set struct {
	elems []*Symbol
}

func (s *Set) Len() int {
	return len(s.elems)
}

func (s *Set) At(i int) *Symbol {
	return s.elems[i]
}

func (s *Set) Clear() {
	s.elems = s.elems[:0]
}

func (s *Set) find(sym *Symbol) (int, bool) {
	lo, hi := 0, len(s.elems)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.elems[mid].Order < sym.Order {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(s.elems) && s.elems[lo].Order == sym.Order
}

// Insert adds sym and reports whether the set changed.
func (s *Set) Insert(sym *Symbol) bool {
	i, ok := s.find(sym)
	if ok {
		return false
	}
	s.elems = append(s.elems, nil)
	copy(s.elems[i+1:], s.elems[i:])
	s.elems[i] = sym
	return true
}

func (s *Set) Delete(sym *Symbol) {
	if i, ok := s.find(sym); ok {
		s.elems = append(s.elems[:i], s.elems[i+1:]...)
	}
}

func (s *Set) Contains(sym *Symbol) bool {
	_, ok := s.find(sym)
	return ok
}

// FindToken returns the first member carrying the given token number, or nil.
func (s *Set) FindToken(token int) *Symbol {
	for _, sym := range s.elems {
		if sym.Token == token {
			return sym
		}
	}
	return nil
}

func (s *Set) Copy() *Set {
	c := &Set{elems: make([]*Symbol, len(s.elems))}
	copy(c.elems, s.elems)
	return c
}

func (s *Set) Equal(o *Set) bool {
	if len(s.elems) != len(o.elems) {
		return false
	}
	for i, sym := range s.elems {
		if o.elems[i] != sym {
			return false
		}
	}
	return true
}

// UnionWith merges o into s and reports whether s changed.
func (s *Set) UnionWith(o *Set) bool {
	if len(o.elems) == 0 {
		return false
	}
	merged := make([]*Symbol, 0, len(s.elems)+len(o.elems))
	i, j := 0, 0
	changed := false
	for i < len(s.elems) && j < len(o.elems) {
		switch {
		case s.elems[i].Order < o.elems[j].Order:
			merged = append(merged, s.elems[i])
			i++
		case s.elems[i].Order > o.elems[j].Order:
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

// Union returns a new set holding every member of a and b.
func Union(a, b *Set) *Set {
	u := a.Copy()
	u.UnionWith(b)
	return u
}

// Intersect returns a new set holding the members common to a and b.
func Intersect(a, b *Set) *Set {
	r := &Set{}
	i, j := 0, 0
	for i < len(a.elems) && j < len(b.elems) {
		switch {
		case a.elems[i].Order < b.elems[j].Order:
			i++
		case a.elems[i].Order > b.elems[j].Order:
			j++
		default:
			r.elems = append(r.elems, a.elems[i])
			i++
			j++
		}
	}
	return r
}

func (s *Set) String() string {
	var b strings.Builder
	for i, sym := range s.elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprint(&b, sym.Name)
	}
	return b.String()
}
