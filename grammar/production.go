package grammar

import (
	"math"

	"github.com/rmongiovi/sdtgen/grammar/symbol"
)

// production is one fully expanded grammar alternative. length is the index
// just past the last non-epsilon RHS position; items whose dot reaches length
// are reduce items even when epsilon terminals trail them.
type production struct {
	lhs      *symbol.Symbol
	rhs      []*symbol.Symbol
	length   int
	semantic int

	// Error repair sort keys: the minimum number of derivation steps to
	// reach an all-terminal string, and the minimum insertion cost of any
	// string derivable from this production.
	steps  int
	insert int
}

// effectiveLength is the number of RHS positions the runtime pops: epsilon
// terminals shift nothing.
func (p *production) effectiveLength() int {
	count := 0
	for j := 0; j < p.length; j++ {
		if !p.rhs[j].IsEmpty() {
			count++
		}
	}
	return count
}

// computeSortKeys relaxes steps and insert to their fixed point.
func (g *Grammar) computeSortKeys() {
	for {
		changed := false
		for i := 1; i < len(g.prods); i++ {
			p := &g.prods[i]
			steps := 0
			insert := 0
			for j := 0; j < p.length; j++ {
				if p.rhs[j].Kind == symbol.KindNonTerminal {
					minSteps := math.MaxInt
					minInsert := math.MaxInt
					for k := g.lhsIndex[p.rhs[j].Token-g.termCount()]; k < len(g.prods); k++ {
						if g.prods[k].lhs != p.rhs[j] {
							break
						}
						if g.prods[k].steps < minSteps {
							minSteps = g.prods[k].steps
						}
						if g.prods[k].insert < minInsert {
							minInsert = g.prods[k].insert
						}
					}
					if steps < math.MaxInt && minSteps < math.MaxInt {
						steps += minSteps
					} else {
						steps = math.MaxInt
					}
					if insert < math.MaxInt && minInsert < math.MaxInt {
						insert += minInsert
					} else {
						insert = math.MaxInt
					}
				} else if !p.rhs[j].IsEmpty() && insert < math.MaxInt {
					insert += p.rhs[j].InsertCost
				}
			}
			if steps < math.MaxInt && steps+1 < p.steps {
				p.steps = steps + 1
				changed = true
			}
			if insert < p.insert {
				p.insert = insert
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// sortProductions reorders the alternatives of each left hand side into
// nondecreasing (steps, insert) order so the continuation automaton always
// follows the cheapest derivation.
func (g *Grammar) sortProductions() {
	for i := 1; i <= g.nontermCount(); i++ {
		for j := g.lhsIndex[i]; j < len(g.prods) && g.prods[j].lhs.Token == g.termCount()+i; j++ {
			min := j
			for k := j + 1; k < len(g.prods) && g.prods[k].lhs == g.prods[j].lhs; k++ {
				if g.prods[k].steps < g.prods[min].steps {
					min = k
				} else if g.prods[k].steps == g.prods[min].steps && g.prods[k].insert < g.prods[min].insert {
					min = k
				}
			}
			if j != min {
				g.prods[j], g.prods[min] = g.prods[min], g.prods[j]
			}
		}
	}
}
