package grammar

import (
	"strings"
	"testing"

	"github.com/rmongiovi/sdtgen/grammar/symbol"
	"github.com/rmongiovi/sdtgen/spec"
)

// ambiguousExprDef is an ambiguous arithmetic grammar disambiguated by
// precedence: mul binds tighter than add, both left associative.
func ambiguousExprDef(options ...string) *spec.GrammarDefinition {
	return &spec.GrammarDefinition{
		Name:    "ambig",
		Context: 3,
		DefCost: 5,
		Terminals: []spec.TerminalDef{
			termPrec("add", 1, 1, 1, "left"),
			termPrec("mul", 1, 1, 2, "left"),
			term("id", 2, 2),
		},
		NonTerminals: []string{"expr"},
		Productions: []spec.ProductionDef{
			prod("expr", 1, "expr", "add", "expr"),
			prod("expr", 2, "expr", "mul", "expr"),
			prod("expr", 3, "id"),
		},
		Start: "expr",
	}
}

func TestShiftReducePrecedence(t *testing.T) {
	def := ambiguousExprDef()
	def.Options = []string{"ambiguous"}
	g := mustBuild(t, def)

	add := g.syms.Lookup("add", symbol.KindTerminal).Token
	mul := g.syms.Lookup("mul", symbol.KindTerminal).Token

	// In the state holding expr -> expr add expr . the action on mul must
	// stay a shift and the action on add must become the reduce.
	found := false
	for i := 1; i < len(g.states); i++ {
		for j := 0; j < g.states[i].kernel; j++ {
			it := &g.states[i].items[j]
			if it.dot < g.prods[it.prod].length || g.prods[it.prod].semantic != 1 {
				continue
			}
			found = true
			if g.action[i][mul] <= spec.ShiftOffset {
				t.Errorf("state %d: action on mul is %v, want a shift", i, g.action[i][mul])
			}
			if g.action[i][add] != -it.prod {
				t.Errorf("state %d: action on add is %v, want reduce by %v", i, g.action[i][add], it.prod)
			}
		}
	}
	if !found {
		t.Fatal("no state holds the completed add production")
	}
}

func TestShiftReduceWithoutAmbiguous(t *testing.T) {
	g, err := FromDefinition(ambiguousExprDef())
	if err != nil {
		t.Fatalf("failed to lower the definition: %v", err)
	}
	if err := g.Generate(); err == nil {
		t.Fatal("a shift/reduce conflict without AMBIGUOUS must be fatal")
	}
}

func TestResolutionSoundness(t *testing.T) {
	def := ambiguousExprDef()
	def.Options = []string{"ambiguous"}
	g := mustBuild(t, def)

	// By encoding a cell holds one action, so no cell can keep both sides of
	// a resolved conflict; what is left to check is that no terminal cell
	// holds the accept encoding.
	for i := 1; i < len(g.action); i++ {
		for token := 1; token <= g.termCount(); token++ {
			v := g.action[i][token]
			if v < 0 && v <= spec.AcceptOffset {
				t.Errorf("state %d token %d: accept encoded on a terminal", i, token)
			}
		}
	}
}

// lalrMergeDef is LR(1) but not LALR(1): the lookaheads of A -> c and
// B -> c merge in the shared state after c, distinguishable only by whether
// the ancestor path runs through a or b.
func lalrMergeDef(options ...string) *spec.GrammarDefinition {
	return &spec.GrammarDefinition{
		Name:    "merge",
		Options: options,
		Context: 3,
		DefCost: 5,
		Terminals: []spec.TerminalDef{
			term("a", 1, 1),
			term("b", 1, 1),
			term("c", 1, 1),
			term("d", 1, 1),
			term("e", 1, 1),
		},
		NonTerminals: []string{"S", "A", "B"},
		Productions: []spec.ProductionDef{
			prod("S", 1, "a", "A", "d"),
			prod("S", 2, "b", "B", "d"),
			prod("S", 3, "a", "B", "e"),
			prod("S", 4, "b", "A", "e"),
			prod("A", 5, "c"),
			prod("B", 6, "c"),
		},
		Start: "S",
	}
}

func TestReduceReduceSplitStates(t *testing.T) {
	g := mustBuild(t, lalrMergeDef("splitstates"))

	// The merged c-state is copied once: the collection grows by exactly
	// one state over the 14 of the LR(0) collection.
	if g.StateCount() != 15 {
		t.Fatalf("state count is %v, want 15 (one copied state)", g.StateCount())
	}

	// After splitting no state carries two reduces on the same terminal.
	for i := 1; i < len(g.states); i++ {
		reduces := map[int]int{}
		for j := range g.states[i].items {
			it := &g.states[i].items[j]
			if it.dot < g.prods[it.prod].length {
				continue
			}
			for k := 0; k < it.lookahead.Len(); k++ {
				token := it.lookahead.At(k).Token
				if prev, ok := reduces[token]; ok && prev != it.prod {
					t.Errorf("state %d still reduces by both %v and %v on %v",
						i, prev, it.prod, g.symbolOf(token).Name)
				}
				reduces[token] = it.prod
			}
		}
	}
}

func TestReduceReduceWithoutSplitStates(t *testing.T) {
	g, err := FromDefinition(lalrMergeDef())
	if err != nil {
		t.Fatalf("failed to lower the definition: %v", err)
	}
	err = g.Generate()
	if err == nil {
		t.Fatal("a reduce/reduce conflict without SPLITSTATES must be fatal")
	}
	if !strings.Contains(err.Error(), "reduce-reduce") {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestIrreparableReduceReduce(t *testing.T) {
	// Both reduces become admissible on d through the same state, so the
	// spontaneous follows intersect and no split can help.
	def := &spec.GrammarDefinition{
		Name:    "hopeless",
		Options: []string{"splitstates"},
		Context: 3,
		DefCost: 5,
		Terminals: []spec.TerminalDef{
			term("a", 1, 1),
			term("c", 1, 1),
			term("d", 1, 1),
		},
		NonTerminals: []string{"S", "A", "B"},
		Productions: []spec.ProductionDef{
			prod("S", 1, "a", "A", "d"),
			prod("S", 2, "a", "B", "d"),
			prod("A", 3, "c"),
			prod("B", 4, "c"),
		},
		Start: "S",
	}
	g, err := FromDefinition(def)
	if err != nil {
		t.Fatalf("failed to lower the definition: %v", err)
	}
	if err := g.Generate(); err == nil {
		t.Fatal("an irreparable reduce/reduce conflict must be fatal")
	}
}
