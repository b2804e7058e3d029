package grammar

import (
	"sort"
	"strings"
	"testing"

	"github.com/rmongiovi/sdtgen/spec"
)

func term(name string, ins, del int) spec.TerminalDef {
	return spec.TerminalDef{Name: name, Precedence: -1, InsertCost: ins, DeleteCost: del}
}

func termPrec(name string, ins, del, prec int, assoc string) spec.TerminalDef {
	td := term(name, ins, del)
	td.Precedence = prec
	td.Assoc = assoc
	return td
}

func prod(lhs string, sem int, rhs ...string) spec.ProductionDef {
	return spec.ProductionDef{LHS: lhs, RHS: rhs, Semantic: sem}
}

func mustBuild(t *testing.T, def *spec.GrammarDefinition) *Grammar {
	t.Helper()
	g, err := FromDefinition(def)
	if err != nil {
		t.Fatalf("failed to lower the definition: %v", err)
	}
	if err := g.Generate(); err != nil {
		t.Fatalf("failed to generate tables: %v", err)
	}
	return g
}

// kernelSignatures renders every state's kernel in a form independent of
// production numbering, for comparing collections across runs.
func kernelSignatures(g *Grammar) []string {
	var sigs []string
	for i := 1; i < len(g.states); i++ {
		var items []string
		for j := 0; j < g.states[i].kernel; j++ {
			items = append(items, g.describeItem(&g.states[i].items[j]))
		}
		sort.Strings(items)
		sigs = append(sigs, strings.Join(items, "; "))
	}
	sort.Strings(sigs)
	return sigs
}

// exprDef is the usual expression grammar. The alternatives of every
// nonterminal appear in the given order so tests can permute them.
func exprDef(swapped bool) *spec.GrammarDefinition {
	prods := []spec.ProductionDef{
		prod("expr", 1, "expr", "add", "term"),
		prod("expr", 2, "term"),
		prod("term", 3, "term", "mul", "factor"),
		prod("term", 4, "factor"),
		prod("factor", 5, "l_paren", "expr", "r_paren"),
		prod("factor", 6, "id"),
	}
	if swapped {
		prods[0], prods[1] = prods[1], prods[0]
		prods[2], prods[3] = prods[3], prods[2]
		prods[4], prods[5] = prods[5], prods[4]
	}
	return &spec.GrammarDefinition{
		Name:    "expr",
		Context: 3,
		DefCost: 5,
		Terminals: []spec.TerminalDef{
			term("add", 1, 1),
			term("mul", 1, 1),
			term("l_paren", 1, 1),
			term("r_paren", 1, 1),
			term("id", 2, 2),
		},
		NonTerminals: []string{"expr", "term", "factor"},
		Productions:  prods,
		Start:        "expr",
	}
}
