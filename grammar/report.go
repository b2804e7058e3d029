package grammar

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/sets/treeset"
)

// The Describe family writes the listing and debug reports selected by the
// generator's command line flags.

// DescribeProductions lists the standardized grammar.
func (g *Grammar) DescribeProductions(w io.Writer) {
	fmt.Fprintf(w, "%s\t%s\tStandardized Grammar\n", g.Name, g.Title)
	for i := 1; i < len(g.prods); i++ {
		fmt.Fprintf(w, "%4d.  %s ->", i, g.prods[i].lhs.Name)
		for _, sym := range g.prods[i].rhs {
			fmt.Fprintf(w, " %s", sym.Name)
		}
		if g.prods[i].semantic != 0 {
			fmt.Fprintf(w, " #%d", g.prods[i].semantic)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// DescribeFirst lists the nonterminal first sets and their nullability.
func (g *Grammar) DescribeFirst(w io.Writer) {
	fmt.Fprintf(w, "%s\t%s\tNonterminal First Sets\n", g.Name, g.Title)
	for i := 1; i <= g.nontermCount(); i++ {
		token := g.termCount() + i
		null := ' '
		if g.first[token].nullable {
			null = 'N'
		}
		fmt.Fprintf(w, "%4d.  %c  %s [%v]\n", token, null, g.nonterms[i].Name, g.first[token].symbols)
	}
	fmt.Fprintln(w)
}

// DescribeCollection lists the canonical collection of LR items with their
// lookahead sets and goto edges.
func (g *Grammar) DescribeCollection(w io.Writer) {
	fmt.Fprintf(w, "%s\t%s\tCanonical Collection of LR Items\n", g.Name, g.Title)
	for i := 1; i < len(g.states); i++ {
		for j := range g.states[i].items {
			it := &g.states[i].items[j]
			if j == 0 {
				fmt.Fprintf(w, "%5d.  ", i)
			} else {
				fmt.Fprintf(w, "%7s ", " ")
			}
			fmt.Fprintf(w, "%s", g.describeItem(it))
			if it.lookahead.Len() > 0 {
				fmt.Fprintf(w, ", [%v]", it.lookahead)
			}
			fmt.Fprintln(w)
			if j == g.states[i].kernel-1 && len(g.states[i].items) > g.states[i].kernel {
				fmt.Fprintf(w, "%7s ---\n", " ")
			}
		}
		for _, gt := range g.states[i].gotos {
			fmt.Fprintf(w, "%7s Goto state %d on %s\n", " ", gt.state, g.symbolOf(gt.token).Name)
		}
		fmt.Fprintln(w)
	}
}

// DescribeAncestors lists, for every state, the goto symbol that enters it
// and the states it is reachable from.
func (g *Grammar) DescribeAncestors(w io.Writer) {
	ancestors := make([]*treeset.Set, len(g.states))
	token := make([]int, len(g.states))
	for i := 1; i < len(g.states); i++ {
		ancestors[i] = treeset.NewWithIntComparator()
	}
	for i := 1; i < len(g.states); i++ {
		for _, gt := range g.states[i].gotos {
			ancestors[gt.state].Add(i)
			token[gt.state] = gt.token
		}
	}

	fmt.Fprintf(w, "%s\t%s\tAncestor States\n", g.Name, g.Title)
	fmt.Fprintf(w, "%5s.  %-12s Ancestors\n", "State", "Symbol")
	for i := 1; i < len(g.states); i++ {
		name := ""
		if token[i] != 0 {
			name = g.symbolOf(token[i]).Name
		}
		fmt.Fprintf(w, "%5d.  %-12s", i, name)
		for _, v := range ancestors[i].Values() {
			fmt.Fprintf(w, " %d", v)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// DescribeCrossref lists where every token is defined and used.
func (g *Grammar) DescribeCrossref(w io.Writer) {
	lhsref := make([]*treeset.Set, g.termCount()+g.nontermCount()+1)
	rhsref := make([]*treeset.Set, g.termCount()+g.nontermCount()+1)
	for i := 1; i < len(lhsref); i++ {
		lhsref[i] = treeset.NewWithIntComparator()
		rhsref[i] = treeset.NewWithIntComparator()
	}
	for i := 1; i < len(g.prods); i++ {
		lhsref[g.prods[i].lhs.Token].Add(i)
		for _, sym := range g.prods[i].rhs {
			rhsref[sym.Token].Add(i)
		}
	}

	refs := func(set *treeset.Set, kind string, none string) {
		if set.Empty() {
			fmt.Fprintf(w, "  %s", none)
		} else {
			fmt.Fprintf(w, "  %s", kind)
			for _, v := range set.Values() {
				fmt.Fprintf(w, " %d", v)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\t%s\tToken Cross-Reference\n", g.Name, g.Title)
	for i := 1; i <= g.termCount(); i++ {
		fmt.Fprintf(w, "%4d.  %-12s", i, g.terms[i].Name)
		refs(rhsref[i], "RHS", "Unused")
	}
	for i := 1; i <= g.nontermCount(); i++ {
		token := g.termCount() + i
		fmt.Fprintf(w, "%4d.  %-12s", token, g.nonterms[i].Name)
		refs(lhsref[token], "LHS", "Undefined")
		fmt.Fprintf(w, "%4s   %-12s", " ", " ")
		refs(rhsref[token], "RHS", "Unused")
	}
	fmt.Fprintln(w)
}

// DescribeRepair lists the error repair value chosen for each state.
func (g *Grammar) DescribeRepair(w io.Writer) {
	fmt.Fprintf(w, "%s\t%s\tError Repair Values\n", g.Name, g.Title)
	for i := 1; i < len(g.repair); i++ {
		if g.repair[i] < 0 {
			fmt.Fprintf(w, "%5d.  Reduce by production %d\n", i, -g.repair[i])
		} else if g.repair[i] > 0 {
			fmt.Fprintf(w, "%5d.  Shift %s\n", i, g.symbolOf(g.repair[i]).Name)
		} else {
			fmt.Fprintf(w, "%5d.  None\n", i)
		}
	}
	fmt.Fprintln(w)
}

// DescribeTable dumps the nonzero cells of the encoded action table.
func (g *Grammar) DescribeTable(w io.Writer) {
	fmt.Fprintf(w, "%s\t%s\tLR Parsing Tables\n", g.Name, g.Title)
	for i := 1; i < len(g.action); i++ {
		fmt.Fprintf(w, "%5d.", i)
		for token := 1; token < len(g.action[i]); token++ {
			if g.action[i][token] != 0 {
				fmt.Fprintf(w, " %s:%d", g.symbolOf(token).Name, g.action[i][token])
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// StateCount reports the number of parser states, excluding reserved
// state 0.
func (g *Grammar) StateCount() int {
	return len(g.states) - 1
}

// ProductionCount reports the number of productions, excluding reserved
// production 0.
func (g *Grammar) ProductionCount() int {
	return len(g.prods) - 1
}

// Sentinel returns the token number of the synthetic end-of-input terminal.
func (g *Grammar) Sentinel() int {
	return g.sentinel.Token
}
