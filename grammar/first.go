package grammar

import (
	"github.com/rmongiovi/sdtgen/grammar/symbol"
)

type firstSet struct {
	symbols  *symbol.Set
	nullable bool
}

// computeFirst builds the FIRST set of every token. A terminal is its own
// FIRST except for epsilon terminals, which are nullable; nonterminal sets
// grow to their fixed point.
func (g *Grammar) computeFirst() {
	g.first = make([]firstSet, g.termCount()+g.nontermCount()+1)
	for i := range g.first {
		g.first[i].symbols = &symbol.Set{}
	}

	for i := 1; i <= g.termCount(); i++ {
		if g.terms[i].IsEmpty() {
			g.first[i].nullable = true
		} else {
			g.first[i].symbols.Insert(g.terms[i])
		}
	}

	for {
		changed := false
		for i := 1; i <= g.nontermCount(); i++ {
			token := g.termCount() + i
			for j := g.lhsIndex[i]; j < len(g.prods) && g.prods[j].lhs.Token == token; j++ {
				p := &g.prods[j]
				k := 0
				for ; k < p.length; k++ {
					if g.first[token].symbols.UnionWith(g.first[p.rhs[k].Token].symbols) {
						changed = true
					}
					if !g.first[p.rhs[k].Token].nullable {
						break
					}
				}
				if k >= p.length && !g.first[token].nullable {
					g.first[token].nullable = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}
