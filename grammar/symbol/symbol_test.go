package symbol

import (
	"testing"
)

func TestTableInterning(t *testing.T) {
	tab := NewTable()

	a := tab.Intern("a", KindTerminal)
	b := tab.Intern("b", KindTerminal)
	if a == b {
		t.Fatal("distinct names interned to the same symbol")
	}
	if tab.Intern("a", KindTerminal) != a {
		t.Fatal("interning an existing name allocated a new symbol")
	}
	if tab.Intern("a", KindNonTerminal) == a {
		t.Fatal("terminal and nonterminal namespaces are not distinct")
	}
	if a.Order >= b.Order {
		t.Fatalf("order keys do not follow allocation order: %v >= %v", a.Order, b.Order)
	}
	if tab.Lookup("c", KindTerminal) != nil {
		t.Fatal("lookup invented a symbol")
	}
}

func TestSetOrderedInsert(t *testing.T) {
	tab := NewTable()
	c := tab.Intern("c", KindTerminal)
	a := tab.Intern("a", KindTerminal)
	b := tab.Intern("b", KindTerminal)

	s := &Set{}
	for _, sym := range []*Symbol{b, c, a, b} {
		s.Insert(sym)
	}
	if s.Len() != 3 {
		t.Fatalf("set has %v members, want 3", s.Len())
	}
	// Members iterate in allocation order regardless of insertion order.
	want := []*Symbol{c, a, b}
	for i, sym := range want {
		if s.At(i) != sym {
			t.Fatalf("member %v is %v, want %v", i, s.At(i).Name, sym.Name)
		}
	}

	s.Delete(a)
	if s.Contains(a) || s.Len() != 2 {
		t.Fatal("delete failed")
	}
}

func TestSetMerges(t *testing.T) {
	tab := NewTable()
	var syms []*Symbol
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		syms = append(syms, tab.Intern(name, KindTerminal))
	}

	s1 := &Set{}
	s1.Insert(syms[0])
	s1.Insert(syms[2])
	s2 := &Set{}
	s2.Insert(syms[2])
	s2.Insert(syms[4])

	u := Union(s1, s2)
	if u.Len() != 3 || !u.Contains(syms[0]) || !u.Contains(syms[2]) || !u.Contains(syms[4]) {
		t.Fatalf("union is [%v]", u)
	}

	i := Intersect(s1, s2)
	if i.Len() != 1 || !i.Contains(syms[2]) {
		t.Fatalf("intersection is [%v]", i)
	}

	if !s1.UnionWith(s2) {
		t.Fatal("UnionWith reported no change after adding a member")
	}
	if s1.UnionWith(s2) {
		t.Fatal("UnionWith reported a change on a superset")
	}
	if !s1.Equal(u) {
		t.Fatalf("in-place union [%v] differs from [%v]", s1, u)
	}
}

func TestMarkers(t *testing.T) {
	tab := NewTable()
	a := tab.Intern("a", KindTerminal)
	a.Token = 1

	m := tab.Marker(5)
	if tab.Lookup("marker", KindTerminal) != nil {
		t.Fatal("markers must not be interned")
	}

	s := &Set{}
	s.Insert(a)
	s.Insert(m)
	if s.FindToken(5) != m {
		t.Fatal("marker not found by token number")
	}
	s.Delete(m)
	if s.FindToken(5) != nil {
		t.Fatal("marker survived deletion")
	}
}
