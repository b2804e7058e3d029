package grammar

import (
	"reflect"
	"testing"

	"github.com/rmongiovi/sdtgen/spec"
)

func TestBuildStatesCanonical(t *testing.T) {
	// The collection must be invariant under permutation of alternatives:
	// the same number of states with set-equal kernels.
	g1 := mustBuild(t, exprDef(false))
	g2 := mustBuild(t, exprDef(true))

	if g1.StateCount() != g2.StateCount() {
		t.Fatalf("state counts differ under alternative permutation: %v != %v", g1.StateCount(), g2.StateCount())
	}
	if !reflect.DeepEqual(kernelSignatures(g1), kernelSignatures(g2)) {
		t.Fatalf("kernels differ under alternative permutation:\n%v\n%v", kernelSignatures(g1), kernelSignatures(g2))
	}
}

func TestGotoEdges(t *testing.T) {
	g := mustBuild(t, exprDef(false))

	// Every goto edge must lead to the state holding the kernel built by
	// advancing the dot over the edge symbol, and the target's kernel items
	// must hold the reciprocal ancestor edges.
	for i := 1; i < len(g.states); i++ {
		for _, gt := range g.states[i].gotos {
			var want []item
			for j := range g.states[i].items {
				it := &g.states[i].items[j]
				if it.dot < g.prods[it.prod].length && g.prods[it.prod].rhs[it.dot].Token == gt.token {
					want = append(want, g.newItem(it.prod, g.skipEmpties(it.prod, it.dot+1)))
				}
			}
			next := &g.states[gt.state]
			if !g.itemsetEqual(next.items, next.kernel, want, len(want)) {
				t.Errorf("state %d goto on %v: kernel of state %d does not match the advanced items", i, g.symbolOf(gt.token).Name, gt.state)
			}

			for j := 0; j < next.kernel; j++ {
				for _, anc := range next.items[j].ancestors {
					d := g.states[anc.state].items[anc.item].descendant
					if d.state != gt.state && anc.state != i {
						continue
					}
					if anc.state == i && (d.state != gt.state || d.item != j) {
						t.Errorf("state %d item %d: ancestor edge from %v is not mirrored by a descendant edge", gt.state, j, anc)
					}
				}
			}
		}
	}
}

func TestDepthFirstClosureOrdering(t *testing.T) {
	// With error repair the first closure item of the start state must head
	// the cheapest derivation of the start symbol, which requires the
	// depth-first closure.
	def := exprDef(false)
	def.Options = []string{"errorrepair"}
	g := mustBuild(t, def)

	first := &g.states[1].items[g.states[1].kernel]
	if g.prods[first.prod].lhs.Name != "expr" {
		t.Fatalf("first closure item derives %v, want expr", g.prods[first.prod].lhs.Name)
	}
	// After the repair sort expr's cheapest alternative is expr -> term.
	if len(g.prods[first.prod].rhs) != 1 {
		t.Fatalf("first closure item is not the cheapest alternative: %v", g.describeItem(first))
	}
}

func TestEmptyTerminalsSkipped(t *testing.T) {
	// Epsilon terminals are skipped by the dot and excluded from the
	// effective RHS length.
	def := &spec.GrammarDefinition{}
	*def = *exprDef(false)
	def.Terminals = append(def.Terminals, spec.TerminalDef{Name: "opt", Empty: true, Precedence: -1})
	def.Productions = append([]spec.ProductionDef{}, def.Productions...)
	def.Productions[5] = prod("factor", 6, "opt", "id", "opt")

	g := mustBuild(t, def)
	for i := 1; i < len(g.prods); i++ {
		if g.prods[i].lhs.Name == "factor" && len(g.prods[i].rhs) == 3 {
			if g.prods[i].length != 2 {
				t.Errorf("length %v, want 2 (trailing empty stripped)", g.prods[i].length)
			}
			if g.prods[i].effectiveLength() != 1 {
				t.Errorf("effective length %v, want 1", g.prods[i].effectiveLength())
			}
			return
		}
	}
	t.Fatal("rewritten factor production not found")
}
