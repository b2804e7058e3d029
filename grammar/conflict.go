package grammar

import (
	"fmt"

	"github.com/rmongiovi/sdtgen/grammar/symbol"
	"github.com/rmongiovi/sdtgen/intset"
	"github.com/rmongiovi/sdtgen/spec"
)

const (
	shiftReduceError = 1 << iota
	reduceReduceError
)

// laneEntry is one step of a lane: a state and the item indexes within it
// that contribute lookahead to the conflict.
type laneEntry struct {
	state int
	items *intset.Set
}

// laneTrace follows one reduce of a conflict backward from the conflict
// state toward the kernel items that originated its lookahead.
type laneTrace struct {
	complete bool
	lane     []laneEntry
	follow   *symbol.Set
}

// collision groups the reduces of one reduce/reduce conflict, one lane each.
type collision struct {
	lanes   []laneTrace
	success bool
}

// buildTable fills in the encoded action rows and drives conflict
// resolution. Splitting states alters the CFSM, so lookahead is recomputed
// and table generation restarts from scratch until no reduce/reduce conflict
// requires another split.
func (g *Grammar) buildTable() error {
	for {
		cols := g.termCount() + g.nontermCount() + 1
		g.action = make([][]int, len(g.states))
		changed := false
		for i := 1; i < len(g.states); i++ {
			g.action[i] = make([]int, cols)

			if i == 1 {
				g.setAction(1, g.goal.Token, spec.AcceptOffset)
			}

			for j := range g.states[i].items {
				it := &g.states[i].items[j]
				if it.descendant.state != 0 {
					g.setAction(i, g.prods[it.prod].rhs[it.dot].Token, spec.ShiftOffset+it.descendant.state)
				} else if it.dot < g.prods[it.prod].length {
					g.setAction(i, g.prods[it.prod].rhs[it.dot].Token, it.prod)
				}
			}

			result := 0
			for j := range g.states[i].items {
				it := &g.states[i].items[j]
				if it.dot >= g.prods[it.prod].length {
					for k := 0; k < it.lookahead.Len(); k++ {
						result |= g.setAction(i, it.lookahead.At(k).Token, -it.prod)
					}
				}
			}

			if result&reduceReduceError != 0 {
				if err := g.splitStates(i); err != nil {
					return err
				}
				g.propagateLookahead()
				changed = true
				break
			}

			if result&shiftReduceError != 0 {
				if err := g.resolveAmbiguity(i); err != nil {
					return err
				}
			}
		}
		if !changed {
			return nil
		}
	}
}

// setAction stores an encoded action unless the cell already holds a
// different one, in which case the collision is classified instead.
func (g *Grammar) setAction(st, token, action int) int {
	if g.action[st][token] != 0 && g.action[st][token] != action {
		if g.action[st][token] > 0 || action > 0 {
			return shiftReduceError
		}
		return reduceReduceError
	}
	g.action[st][token] = action
	return 0
}

// resolveAmbiguity settles the shift/reduce collisions of one state by
// precedence and associativity. A reduce's precedence comes from the
// rightmost terminal of its production; the shift's from the terminal
// itself. Higher precedence wins; on a tie LEFT picks the reduce, RIGHT the
// shift, and NONE is irreparable.
func (g *Grammar) resolveAmbiguity(st int) error {
	for j := range g.states[st].items {
		it := &g.states[st].items[j]
		if it.dot < g.prods[it.prod].length {
			continue
		}
		matches := &symbol.Set{}
		for k := 0; k < it.lookahead.Len(); k++ {
			if g.action[st][it.lookahead.At(k).Token] > 0 {
				matches.Insert(it.lookahead.At(k))
			}
		}
		if matches.Len() > 0 {
			g.verbosef("Shift-Reduce conflict in state %d on [%v]\n", st, matches)
			g.verbosef("   Reduce by %v\n", g.describeItem(it))
		}
	}

	if g.Options&Ambiguous == 0 {
		return fmt.Errorf("shift-reduce conflict in state %d", st)
	}

	failure := false
	for j := range g.states[st].items {
		it := &g.states[st].items[j]
		if it.dot < g.prods[it.prod].length {
			continue
		}
		collides := false
		for k := 0; k < it.lookahead.Len(); k++ {
			if g.action[st][it.lookahead.At(k).Token] > 0 {
				collides = true
				break
			}
		}
		if !collides {
			continue
		}

		reducePrec := -1
		for _, sym := range g.prods[it.prod].rhs {
			if sym.Kind == symbol.KindTerminal {
				reducePrec = sym.Precedence
			}
		}
		if reducePrec < 0 {
			g.verbosef("The reduce by %v has no precedence\n", g.describeItem(it))
			failure = true
			continue
		}

		for k := 0; k < it.lookahead.Len(); k++ {
			token := it.lookahead.At(k).Token

			shiftPrec := -1
			var assoc symbol.Flags
			shifts := false
			for l := range g.states[st].items {
				sh := &g.states[st].items[l]
				if sh.dot >= g.prods[sh.prod].length || g.prods[sh.prod].rhs[sh.dot].Token != token {
					continue
				}
				shifts = true
				next := g.prods[sh.prod].rhs[sh.dot]
				if shiftPrec >= 0 && next.Precedence != shiftPrec {
					g.verbosef("Warning: shift precedence %d is not equal to the earlier precedence %d\n", next.Precedence, shiftPrec)
				}
				if assoc != 0 && next.Assoc() != assoc {
					g.verbosef("Warning: shift associativity is not equal to the earlier associativity\n")
				}
				if shiftPrec < 0 {
					shiftPrec = next.Precedence
				}
				if assoc == 0 {
					assoc = next.Assoc()
				}
			}
			if !shifts {
				continue
			}
			if shiftPrec < 0 {
				g.verbosef("The shift of %v has no precedence\n", g.symbolOf(token).Name)
				failure = true
				continue
			}
			if reducePrec == shiftPrec && assoc == symbol.None {
				failure = true
			}
			g.setAmbiguity(st, j, token, reducePrec, shiftPrec, assoc)
		}
	}

	if failure {
		return fmt.Errorf("shift-reduce conflict in state %d cannot be resolved", st)
	}
	g.verbosef("Shift-Reduce conflict has been resolved\n")
	return nil
}

// setAmbiguity replaces the shift action by the reduce when precedence or
// left associativity selects the reduce.
func (g *Grammar) setAmbiguity(st, itemIdx, token, reducePrec, shiftPrec int, assoc symbol.Flags) {
	found := -1
	for i := range g.states[st].items {
		it := &g.states[st].items[i]
		if it.dot < g.prods[it.prod].length && g.prods[it.prod].rhs[it.dot].Token == token {
			found = i
			break
		}
	}
	if found < 0 {
		return
	}

	switch {
	case shiftPrec > reducePrec:
		g.verbosef("Shift precedence %d is higher than reduce precedence %d; action will be shift\n", shiftPrec, reducePrec)
	case reducePrec > shiftPrec:
		g.verbosef("Reduce precedence %d is higher than shift precedence %d; action will be reduce\n", reducePrec, shiftPrec)
		g.action[st][token] = -g.states[st].items[itemIdx].prod
	case assoc == symbol.Left:
		g.verbosef("Shift precedence %d equals reduce precedence %d and associativity = LEFT; action will be reduce\n", shiftPrec, reducePrec)
		g.action[st][token] = -g.states[st].items[itemIdx].prod
	case assoc == symbol.Right:
		g.verbosef("Shift precedence %d equals reduce precedence %d and associativity = RIGHT; action will be shift\n", shiftPrec, reducePrec)
	default:
		g.verbosef("Shift precedence %d equals reduce precedence %d and associativity = NONE\n", shiftPrec, reducePrec)
	}
}

func (g *Grammar) describeItem(it *item) string {
	s := g.prods[it.prod].lhs.Name + " ->"
	for i, sym := range g.prods[it.prod].rhs {
		if i == it.dot {
			s += " ."
		}
		s += " " + sym.Name
	}
	if it.dot >= len(g.prods[it.prod].rhs) {
		s += " ."
	}
	return s
}

// findConflict collects the reduces of a state whose lookaheads intersect
// and seeds one lane per reduce with its spontaneous follow.
func (g *Grammar) findConflict(st int) collision {
	matches := &intset.Set{}
	for i := range g.states[st].items {
		it := &g.states[st].items[i]
		if it.dot < g.prods[it.prod].length {
			continue
		}
		for j := i + 1; j < len(g.states[st].items); j++ {
			other := &g.states[st].items[j]
			if other.dot < g.prods[other.prod].length {
				continue
			}
			if inter := symbol.Intersect(it.lookahead, other.lookahead); inter.Len() > 0 {
				g.verbosef("Reduce-Reduce conflict in state %d on [%v]\n", st, inter)
				g.verbosef("   %v, [%v]\n", g.describeItem(it), it.lookahead)
				g.verbosef("   %v, [%v]\n", g.describeItem(other), other.lookahead)
				matches.Insert(i)
				matches.Insert(j)
			}
		}
	}

	c := collision{lanes: make([]laneTrace, matches.Len())}
	for i := 0; i < matches.Len(); i++ {
		c.lanes[i] = laneTrace{
			lane: []laneEntry{{
				state: st,
				items: intset.New(matches.At(i)),
			}},
			follow: g.states[st].items[matches.At(i)].follow.Copy(),
		}
	}
	return c
}

// spontaneousConflict reports whether two lanes' spontaneous follows alone
// already intersect, which no amount of splitting can repair.
func (g *Grammar) spontaneousConflict(c *collision) bool {
	for i := range c.lanes {
		for j := i + 1; j < len(c.lanes); j++ {
			if inter := symbol.Intersect(c.lanes[i].follow, c.lanes[j].follow); inter.Len() > 0 {
				g.verbosef("Spontaneous lookahead conflict on [%v]\n", inter)
				return true
			}
		}
	}
	return false
}

// kernelItems replaces each lane head's closure items by the kernel items
// that propagate lookahead to them. A lane nothing propagates to is
// complete.
func (g *Grammar) kernelItems(c *collision) {
	for i := range c.lanes {
		if c.lanes[i].complete {
			continue
		}
		last := &c.lanes[i].lane[len(c.lanes[i].lane)-1]
		st := last.state

		kernel := &intset.Set{}
		for _, itemIdx := range last.items.Values() {
			if itemIdx < g.states[st].kernel {
				kernel.Insert(itemIdx)
				continue
			}
			for k := 0; k < g.states[st].kernel; k++ {
				if findUpdate(g.states[st].items[k].update, target{state: st, item: itemIdx}) >= 0 {
					kernel.Insert(k)
				}
			}
		}

		if kernel.Len() == 0 {
			c.lanes[i].complete = true
		} else if !kernel.Equal(last.items) {
			c.lanes[i].lane = append(c.lanes[i].lane, laneEntry{state: st, items: kernel})
		}
	}
}

func copyCollision(src *collision) collision {
	dst := collision{
		lanes:   make([]laneTrace, len(src.lanes)),
		success: src.success,
	}
	for i := range src.lanes {
		dst.lanes[i] = laneTrace{
			complete: src.lanes[i].complete,
			lane:     make([]laneEntry, len(src.lanes[i].lane)),
			follow:   src.lanes[i].follow.Copy(),
		}
		for j := range src.lanes[i].lane {
			dst.lanes[i].lane[j] = laneEntry{
				state: src.lanes[i].lane[j].state,
				items: src.lanes[i].lane[j].items.Copy(),
			}
		}
	}
	return dst
}

// previousStates walks every incomplete lane one step backward, duplicating
// the enclosing conflict once per distinct ancestor of the lane head and
// merging each ancestor's spontaneous follow into its copy. A lane that
// revisits a state is complete.
func (g *Grammar) previousStates(conflicts *[]collision) {
	for i := 0; i < len(*conflicts); i++ {
		if (*conflicts)[i].success {
			continue
		}
		src := &(*conflicts)[i]

		// Every kernel item of a state has the same number of ancestors,
		// so the first incomplete lane's head serves for the count.
		count := 0
		for j := range src.lanes {
			if !src.lanes[j].complete {
				last := src.lanes[j].lane[len(src.lanes[j].lane)-1]
				count = len(g.states[last.state].items[last.items.At(0)].ancestors)
				break
			}
		}

		if count == 0 {
			for j := range src.lanes {
				src.lanes[j].complete = true
			}
			continue
		}

		if count > 1 {
			dups := make([]collision, count-1)
			for j := range dups {
				dups[j] = copyCollision(src)
			}
			tail := append(dups, (*conflicts)[i+1:]...)
			*conflicts = append((*conflicts)[:i+1], tail...)
			src = &(*conflicts)[i]
		}

		for j := range src.lanes {
			if src.lanes[j].complete {
				continue
			}
			length := len(src.lanes[j].lane)
			st := src.lanes[j].lane[length-1].state

			for k := 0; k < count; k++ {
				dst := &(*conflicts)[i+k]
				entry := laneEntry{items: &intset.Set{}}
				for _, itemIdx := range src.lanes[j].lane[length-1].items.Values() {
					anc := g.states[st].items[itemIdx].ancestors[k]
					entry.state = anc.state
					entry.items.Insert(anc.item)
					dst.lanes[j].follow.UnionWith(g.states[anc.state].items[anc.item].follow)
				}
				dst.lanes[j].lane = append(dst.lanes[j].lane, entry)

				for l := length - 1; l >= 0; l-- {
					if dst.lanes[j].lane[l].state == entry.state {
						dst.lanes[j].complete = true
						break
					}
				}
			}
		}
		i += count - 1
	}
}

// laneLookahead is a lane's effective lookahead: its accumulated spontaneous
// follow plus, while incomplete, the propagated lookahead of its head items.
func (g *Grammar) laneLookahead(t *laneTrace) *symbol.Set {
	follow := t.follow.Copy()
	if !t.complete {
		last := t.lane[len(t.lane)-1]
		for _, itemIdx := range last.items.Values() {
			follow.UnionWith(g.states[last.state].items[itemIdx].lookahead)
		}
	}
	return follow
}

// checkConflicts marks conflicts whose lane lookaheads are pairwise disjoint
// as resolved and reports whether any remain.
func (g *Grammar) checkConflicts(conflicts []collision) bool {
	for i := range conflicts {
		if conflicts[i].success {
			continue
		}
		failure := false
		for j := 0; !failure && j < len(conflicts[i].lanes); j++ {
			follow1 := g.laneLookahead(&conflicts[i].lanes[j])
			for k := j + 1; k < len(conflicts[i].lanes); k++ {
				follow2 := g.laneLookahead(&conflicts[i].lanes[k])
				if symbol.Intersect(follow1, follow2).Len() > 0 {
					failure = true
					break
				}
			}
		}
		if !failure {
			conflicts[i].success = true
		}
	}

	for i := range conflicts {
		if !conflicts[i].success {
			return true
		}
	}
	return false
}

// groupConflicts greedily merges conflicts whose per-lane lookaheads stay
// pairwise disjoint after merging; each group shares one copy of the split
// interior states. Merging proceeds in index order, so the first-visited
// group keeps the original states and state numbering stays stable.
func (g *Grammar) groupConflicts(conflicts []collision) []*intset.Set {
	groups := make([]*intset.Set, len(conflicts))
	lookahead := make([][]*symbol.Set, len(conflicts))
	count := len(conflicts[0].lanes)
	for i := range conflicts {
		groups[i] = intset.New(i)
		lookahead[i] = make([]*symbol.Set, count)
		for j := range conflicts[i].lanes {
			lookahead[i][j] = g.laneLookahead(&conflicts[i].lanes[j])
		}
	}

	for {
		changed := false
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				combine := make([]*symbol.Set, count)
				for k := 0; k < count; k++ {
					combine[k] = symbol.Union(lookahead[i][k], lookahead[j][k])
				}
				failure := false
				for k := 0; !failure && k < count; k++ {
					for l := k + 1; l < count; l++ {
						if symbol.Intersect(combine[k], combine[l]).Len() > 0 {
							failure = true
							break
						}
					}
				}
				if failure {
					continue
				}

				groups[i].UnionWith(groups[j])
				lookahead[i] = combine
				groups = append(groups[:j], groups[j+1:]...)
				lookahead = append(lookahead[:j], lookahead[j+1:]...)
				j--
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return groups
}

type stateMap struct {
	old int
	new int
}

func mapState(m []stateMap, st int) int {
	for _, entry := range m {
		if entry.old == st {
			return entry.new
		}
	}
	return st
}

// copyStates gives each conflict group its own copy of the shared interior
// states of its lanes, reusing the originals for the first group, then
// retargets descendant, ancestor, update, and goto edges into the copies.
func (g *Grammar) copyStates(conflicts []collision, groups []*intset.Set) {
	used := &intset.Set{}
	maps := make([][]stateMap, len(groups))

	for i, group := range groups {
		list := &intset.Set{}
		for _, ci := range group.Values() {
			for _, lane := range conflicts[ci].lanes {
				for l := len(lane.lane) - 2; l >= 0; l-- {
					list.Insert(lane.lane[l].state)
				}
			}
		}

		for _, st := range list.Values() {
			if !used.Contains(st) {
				used.Insert(st)
				continue
			}

			// Copy every element of each item. Copies begin with no
			// ancestors; edges are installed when a predecessor is
			// retargeted below.
			maps[i] = append(maps[i], stateMap{old: st, new: len(g.states)})
			src := &g.states[st]
			dup := state{
				items:  make([]item, len(src.items)),
				kernel: src.kernel,
				gotos:  append([]gotoEntry{}, src.gotos...),
			}
			for k := range src.items {
				dup.items[k] = item{
					prod:       src.items[k].prod,
					dot:        src.items[k].dot,
					descendant: src.items[k].descendant,
					follow:     src.items[k].follow.Copy(),
					lookahead:  &symbol.Set{},
				}
				if k < src.kernel {
					dup.items[k].update = append([]target{}, src.items[k].update...)
				}
			}
			g.states = append(g.states, dup)
			tracer().Debugf("state %d split into %d", st, len(g.states)-1)
		}
	}

	for i, group := range groups {
		if len(maps[i]) == 0 {
			continue
		}
		for _, ci := range group.Values() {
			for _, lane := range conflicts[ci].lanes {
				length := len(lane.lane)
				st := lane.lane[length-1].state

				// The deepest lane state is not copied; its successors
				// are retargeted into this group's copies, and each
				// retargeted edge moves its ancestor entry with it.
				for l := range g.states[st].items {
					old := g.states[st].items[l].descendant.state
					mapped := mapState(maps[i], old)
					if mapped != old {
						g.states[st].items[l].descendant.state = mapped
						itemIdx := g.states[st].items[l].descendant.item

						g.states[mapped].items[itemIdx].ancestors = append(g.states[mapped].items[itemIdx].ancestors, target{state: st, item: l})

						ancs := g.states[old].items[itemIdx].ancestors
						for m, anc := range ancs {
							if anc.state == st && anc.item == l {
								g.states[old].items[itemIdx].ancestors = append(ancs[:m], ancs[m+1:]...)
								break
							}
						}
					}
					if l < g.states[st].kernel {
						for m := range g.states[st].items[l].update {
							g.states[st].items[l].update[m].state = mapState(maps[i], g.states[st].items[l].update[m].state)
						}
					}
				}
				for l := range g.states[st].gotos {
					g.states[st].gotos[l].state = mapState(maps[i], g.states[st].gotos[l].state)
				}

				for l := length - 2; l >= 0; l-- {
					st := mapState(maps[i], lane.lane[l].state)
					for m := range g.states[st].items {
						old := g.states[st].items[m].descendant.state
						mapped := mapState(maps[i], old)
						if mapped != old {
							g.states[st].items[m].descendant.state = mapped
							itemIdx := g.states[st].items[m].descendant.item
							g.states[mapped].items[itemIdx].ancestors = append(g.states[mapped].items[itemIdx].ancestors, target{state: st, item: m})
						}
						if m < g.states[st].kernel {
							for n := range g.states[st].items[m].update {
								g.states[st].items[m].update[n].state = mapState(maps[i], g.states[st].items[m].update[n].state)
							}
						}
					}
					for m := range g.states[st].gotos {
						g.states[st].gotos[m].state = mapState(maps[i], g.states[st].gotos[m].state)
					}

					if l > 0 && mapState(maps[i], lane.lane[l-1].state) == st {
						l--
					}
				}
			}
		}
	}
}

// splitStates attempts to repair the reduce/reduce conflicts of a state by
// lane tracing and state splitting. The search is bounded: an iteration that
// neither extends a lane nor duplicates a conflict cannot make progress.
func (g *Grammar) splitStates(st int) error {
	if g.Options&SplitStates == 0 {
		return fmt.Errorf("reduce-reduce conflict in state %d", st)
	}

	conflicts := []collision{g.findConflict(st)}
	for {
		for i := range conflicts {
			if !conflicts[i].success && g.spontaneousConflict(&conflicts[i]) {
				return fmt.Errorf("reduce-reduce conflict in state %d cannot be resolved", st)
			}
		}

		before := len(conflicts)
		laneSize := 0
		for i := range conflicts {
			for j := range conflicts[i].lanes {
				laneSize += len(conflicts[i].lanes[j].lane)
			}
			if !conflicts[i].success {
				g.kernelItems(&conflicts[i])
			}
		}

		g.previousStates(&conflicts)

		if !g.checkConflicts(conflicts) {
			break
		}

		after := 0
		for i := range conflicts {
			for j := range conflicts[i].lanes {
				after += len(conflicts[i].lanes[j].lane)
			}
		}
		if len(conflicts) == before && after == laneSize {
			return fmt.Errorf("reduce-reduce conflict in state %d cannot be resolved", st)
		}
	}

	groups := g.groupConflicts(conflicts)
	g.copyStates(conflicts, groups)
	g.verbosef("Reduce-Reduce conflict has been resolved\n")
	return nil
}
