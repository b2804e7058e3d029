package grammar

import (
	"fmt"

	"github.com/rmongiovi/sdtgen/grammar/symbol"
)

// buildRepair selects the continuation token of every state. Because of the
// repair grammar sort and the depth-first closure, the first item of each
// state heads the cheapest derivation, so the continuation is that item's
// reduce (encoded as the negative production number) or its next terminal;
// when the dot precedes a nonterminal the first reduce-or-terminal closure
// item stands in.
func (g *Grammar) buildRepair() error {
	g.repair = make([]int, len(g.states))
	if g.Options&ErrorRepair == 0 {
		return nil
	}

	for i := 1; i < len(g.states); i++ {
		first := &g.states[i].items[0]
		if first.dot >= g.prods[first.prod].length {
			g.repair[i] = -first.prod
			continue
		}
		if g.prods[first.prod].rhs[first.dot].Kind == symbol.KindTerminal {
			g.repair[i] = g.prods[first.prod].rhs[first.dot].Token
			continue
		}

		found := false
		for j := g.states[i].kernel; j < len(g.states[i].items); j++ {
			it := &g.states[i].items[j]
			if it.dot >= g.prods[it.prod].length {
				g.repair[i] = -it.prod
				found = true
				break
			}
			if g.prods[it.prod].rhs[it.dot].Kind == symbol.KindTerminal {
				g.repair[i] = g.prods[it.prod].rhs[it.dot].Token
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("state %d has no valid error repair value", i)
		}
	}
	return nil
}
