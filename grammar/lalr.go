package grammar

import (
	"github.com/rmongiovi/sdtgen/grammar/symbol"
)

func findUpdate(updates []target, match target) int {
	for i, u := range updates {
		if u == match {
			return i
		}
	}
	return -1
}

// setupLookahead generates every item's spontaneous follow set and discovers
// the lookahead propagation edges. A unique marker symbol seeded into each
// kernel item's follow set identifies, after the in-state fixed point, which
// closure items receive that kernel item's propagated lookahead.
func (g *Grammar) setupLookahead() {
	for i := 1; i < len(g.states); i++ {
		st := &g.states[i]

		markers := make([]*symbol.Symbol, st.kernel)
		for j := 0; j < st.kernel; j++ {
			markers[j] = g.syms.Marker(g.termCount() + 1 + j)
			st.items[j].follow.Insert(markers[j])
		}

		// Propagate spontaneous follow sets throughout this item set.
		for {
			changed := false
			for j := range st.items {
				it := &st.items[j]
				if it.dot >= g.prods[it.prod].length || g.prods[it.prod].rhs[it.dot].Kind != symbol.KindNonTerminal {
					continue
				}

				// FIRST of the RHS remainder, chasing nullability; a
				// fully nullable remainder exposes the item's own
				// follow, markers included.
				follow := &symbol.Set{}
				p := &g.prods[it.prod]
				k := it.dot + 1
				for ; k < p.length; k++ {
					follow.UnionWith(g.first[p.rhs[k].Token].symbols)
					if !g.first[p.rhs[k].Token].nullable {
						break
					}
				}
				if k >= p.length {
					follow.UnionWith(it.follow)
				}

				token := g.prods[it.prod].rhs[it.dot].Token
				for k := st.kernel; k < len(st.items); k++ {
					if g.prods[st.items[k].prod].lhs.Token == token {
						if st.items[k].follow.UnionWith(follow) {
							changed = true
						}
					}
				}
			}
			if !changed {
				break
			}
		}

		// Every closure item holding kernel item j's marker receives its
		// propagated lookahead; so do the descendants of both.
		for j := 0; j < st.kernel; j++ {
			if st.items[j].descendant.state != 0 {
				st.items[j].update = append(st.items[j].update, st.items[j].descendant)
			}

			for k := st.kernel; k < len(st.items); k++ {
				marker := st.items[k].follow.FindToken(g.termCount() + 1 + j)
				if marker == nil {
					continue
				}
				st.items[j].update = append(st.items[j].update, target{state: i, item: k})
				st.items[k].follow.Delete(marker)

				if d := st.items[k].descendant; d.state != 0 && d != (target{state: i, item: j}) &&
					findUpdate(st.items[j].update, d) < 0 {
					st.items[j].update = append(st.items[j].update, d)
				}
			}

			st.items[j].follow.Delete(markers[j])
		}
	}
}

// propagateLookahead initializes every lookahead set from its spontaneous
// follow, seeds the start state with the end-of-input sentinel, and runs the
// update edges to their fixed point. It is rerun in full after states are
// split.
func (g *Grammar) propagateLookahead() {
	for i := 1; i < len(g.states); i++ {
		for j := range g.states[i].items {
			g.states[i].items[j].lookahead.Clear()
		}
	}

	for i := 1; i < len(g.states); i++ {
		for j := range g.states[i].items {
			it := &g.states[i].items[j]
			if it.follow.Len() == 0 {
				continue
			}
			it.lookahead.UnionWith(it.follow)
			if it.descendant.state != 0 {
				d := it.descendant
				g.states[d.state].items[d.item].lookahead.UnionWith(it.follow)
			}
		}
	}

	g.states[1].items[0].lookahead.Insert(g.sentinel)

	for {
		changed := false
		for i := 1; i < len(g.states); i++ {
			for j := 0; j < g.states[i].kernel; j++ {
				for _, u := range g.states[i].items[j].update {
					if g.states[u.state].items[u.item].lookahead.UnionWith(g.states[i].items[j].lookahead) {
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}
}
