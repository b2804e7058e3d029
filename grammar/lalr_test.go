package grammar

import (
	"testing"

	"github.com/rmongiovi/sdtgen/grammar/symbol"
)

func TestLookaheadFixedPoint(t *testing.T) {
	g := mustBuild(t, exprDef(false))

	// At the fixed point every update edge's destination lookahead must
	// contain its source lookahead, and one more pass must change nothing.
	for i := 1; i < len(g.states); i++ {
		for j := 0; j < g.states[i].kernel; j++ {
			src := &g.states[i].items[j]
			for _, u := range g.states[i].items[j].update {
				dst := g.states[u.state].items[u.item].lookahead
				for k := 0; k < src.lookahead.Len(); k++ {
					if !dst.Contains(src.lookahead.At(k)) {
						t.Errorf("lookahead of (%d,%d) is missing %v propagated from (%d,%d)",
							u.state, u.item, src.lookahead.At(k).Name, i, j)
					}
				}
			}
		}
	}

	for i := 1; i < len(g.states); i++ {
		for j := 0; j < g.states[i].kernel; j++ {
			for _, u := range g.states[i].items[j].update {
				if g.states[u.state].items[u.item].lookahead.UnionWith(g.states[i].items[j].lookahead) {
					t.Fatalf("lookahead of (%d,%d) changed after the fixed point", u.state, u.item)
				}
			}
		}
	}
}

func TestGoalLookahead(t *testing.T) {
	g := mustBuild(t, exprDef(false))

	la := g.states[1].items[0].lookahead
	if !la.Contains(g.sentinel) {
		t.Fatal("start state's initial item lost the sentinel lookahead")
	}
	if la.Len() != 1 {
		t.Fatalf("start state's initial item lookahead is [%v], want the sentinel alone", la)
	}
}

func TestMarkersRemoved(t *testing.T) {
	g := mustBuild(t, exprDef(false))

	// No marker may survive the lookahead phase in any follow or lookahead
	// set; markers carry token numbers beyond the terminal range while real
	// lookahead symbols are terminals.
	for i := 1; i < len(g.states); i++ {
		for j := range g.states[i].items {
			it := &g.states[i].items[j]
			for k := 0; k < it.follow.Len(); k++ {
				if it.follow.At(k).Token > g.termCount() {
					t.Fatalf("marker %v survived in the follow of (%d,%d)", it.follow.At(k).Token, i, j)
				}
			}
			for k := 0; k < it.lookahead.Len(); k++ {
				if it.lookahead.At(k).Token > g.termCount() {
					t.Fatalf("marker %v survived in the lookahead of (%d,%d)", it.lookahead.At(k).Token, i, j)
				}
			}
		}
	}
}

func TestFirstSets(t *testing.T) {
	g := mustBuild(t, exprDef(false))

	for _, nt := range []string{"expr", "term", "factor"} {
		sym := g.syms.Lookup(nt, symbol.KindNonTerminal)
		if sym == nil {
			t.Fatalf("nonterminal %v not interned", nt)
		}
		fst := g.first[sym.Token]
		if fst.nullable {
			t.Errorf("%v is unexpectedly nullable", nt)
		}
		for _, want := range []string{"l_paren", "id"} {
			if fst.symbols.FindToken(g.syms.Lookup(want, symbol.KindTerminal).Token) == nil {
				t.Errorf("FIRST(%v) is missing %v: [%v]", nt, want, fst.symbols)
			}
		}
	}
}
