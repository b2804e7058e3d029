package grammar

import (
	"github.com/rmongiovi/sdtgen/grammar/symbol"
)

// target addresses an item as a (state index, item index) pair. All edges in
// the collection are targets: item storage reallocates as states grow, so
// nothing may hold a pointer across an append.
type target struct {
	state int
	item  int
}

// item is one LR(0) item plus its lookahead bookkeeping. ancestors and
// update are maintained for kernel items only.
type item struct {
	prod       int
	dot        int
	descendant target
	follow     *symbol.Set
	lookahead  *symbol.Set
	ancestors  []target
	update     []target
}

type gotoEntry struct {
	token int
	state int
}

// state is one configuration of the characteristic finite state machine. The
// first kernel entries of items are the kernel; their order is significant
// when error repair tables are requested.
type state struct {
	items  []item
	kernel int
	gotos  []gotoEntry
}

func (g *Grammar) newItem(prod, dot int) item {
	return item{
		prod:      prod,
		dot:       dot,
		follow:    &symbol.Set{},
		lookahead: &symbol.Set{},
	}
}

// skipEmpties advances a dot position past epsilon terminals.
func (g *Grammar) skipEmpties(prod, dot int) int {
	rhs := g.prods[prod].rhs
	for dot < len(rhs) && rhs[dot].IsEmpty() {
		dot++
	}
	return dot
}

// applyClosure adds the closure items generated by the items at or after
// index. When error repair is requested the closure is depth first: each new
// item is closed before its siblings, which pins down the first item every
// state contributes to the continuation automaton.
func (g *Grammar) applyClosure(st, index int) {
	for i := index; i < len(g.states[st].items); i++ {
		prod := g.states[st].items[i].prod
		dot := g.states[st].items[i].dot
		if dot >= g.prods[prod].length || g.prods[prod].rhs[dot].Kind != symbol.KindNonTerminal {
			continue
		}
		token := g.prods[prod].rhs[dot].Token

		for j := g.lhsIndex[token-g.termCount()]; j < len(g.prods) && g.prods[j].lhs.Token == token; j++ {
			items := g.states[st].items
			k := g.states[st].kernel
			for ; k < len(items) && items[k].prod != j; k++ {
			}
			if k < len(items) {
				continue
			}
			g.states[st].items = append(g.states[st].items, g.newItem(j, g.skipEmpties(j, 0)))
			if g.Options&ErrorRepair != 0 {
				g.applyClosure(st, len(g.states[st].items)-1)
			}
		}
	}
}

// itemsetEqual compares a state's kernel with a candidate kernel. With error
// repair the kernels must match positionally, because kernel order selects
// the continuation; otherwise they are compared as sets.
func (g *Grammar) itemsetEqual(items1 []item, kernel1 int, items2 []item, kernel2 int) bool {
	if kernel1 != kernel2 {
		return false
	}
	if g.Options&ErrorRepair != 0 {
		for i := 0; i < kernel1; i++ {
			if items1[i].prod != items2[i].prod || items1[i].dot != items2[i].dot {
				return false
			}
		}
		return true
	}
	for i := 0; i < kernel1; i++ {
		j := 0
		for ; j < kernel2; j++ {
			if items1[j].prod == items2[i].prod && items1[j].dot == items2[i].dot {
				break
			}
		}
		if j >= kernel2 {
			return false
		}
	}
	return true
}

// lookupGoto finds or creates the goto state reached from st on token, and
// installs the descendant and ancestor edges between the two states.
func (g *Grammar) lookupGoto(st, token int) int {
	var kernel []item
	for i := range g.states[st].items {
		it := &g.states[st].items[i]
		if it.dot < g.prods[it.prod].length && g.prods[it.prod].rhs[it.dot].Token == token {
			kernel = append(kernel, g.newItem(it.prod, g.skipEmpties(it.prod, it.dot+1)))
		}
	}

	found := 2
	for ; found < len(g.states); found++ {
		if g.itemsetEqual(g.states[found].items, g.states[found].kernel, kernel, len(kernel)) {
			break
		}
	}
	if found >= len(g.states) {
		g.states = append(g.states, state{
			items:  kernel,
			kernel: len(kernel),
		})
		g.applyClosure(found, 0)
		tracer().Debugf("state %d created from state %d on %s", found, st, g.symbolOf(token).Name)
	}

	k := 0
	for j := range g.states[st].items {
		it := &g.states[st].items[j]
		if it.dot < g.prods[it.prod].length && g.prods[it.prod].rhs[it.dot].Token == token {
			// An existing state matches as a set, so its kernel may list the
			// items in another order; link to the item with this production
			// and advanced dot.
			d := k
			for m := 0; m < g.states[found].kernel; m++ {
				if g.states[found].items[m].prod == kernel[k].prod && g.states[found].items[m].dot == kernel[k].dot {
					d = m
					break
				}
			}
			it.descendant = target{state: found, item: d}
			g.states[found].items[d].ancestors = append(g.states[found].items[d].ancestors, target{state: st, item: j})
			k++
		}
	}
	return found
}

// buildStates creates the canonical LR(0) collection and the goto graph.
// State 0 is reserved; state 1 holds the augmented goal item.
func (g *Grammar) buildStates() {
	g.states = make([]state, 2)
	g.states[1] = state{
		items:  []item{g.newItem(1, 0)},
		kernel: 1,
	}
	g.applyClosure(1, 0)

	for i := 1; i < len(g.states); i++ {
		for token := 1; token <= g.termCount()+g.nontermCount(); token++ {
			count := 0
			found := 0
			for j := range g.states[i].items {
				it := &g.states[i].items[j]
				if it.dot < g.prods[it.prod].length && g.prods[it.prod].rhs[it.dot].Token == token {
					found = j
					count++
				}
			}
			if count == 0 {
				continue
			}

			// A token which appears once, immediately before the end
			// of its production, can shift-reduce without a state of
			// its own.
			if g.Options&DefaultReduce != 0 && count == 1 &&
				g.states[i].items[found].dot == g.prods[g.states[i].items[found].prod].length-1 {
				continue
			}

			next := g.lookupGoto(i, token)
			g.states[i].gotos = append(g.states[i].gotos, gotoEntry{token: token, state: next})
		}
	}
}
