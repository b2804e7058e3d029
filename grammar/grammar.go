// Package grammar builds LALR(1) parsing tables with automatic locally
// least-cost error repair support: the canonical LR(0) collection, marker
// based lookahead propagation, precedence resolution for shift/reduce
// conflicts, lane-tracing state splitting for reduce/reduce conflicts, and
// per-state continuation tokens.
package grammar

import (
	"fmt"
	"io"
	"math"

	verr "github.com/rmongiovi/sdtgen/error"
	"github.com/rmongiovi/sdtgen/grammar/symbol"
	"github.com/rmongiovi/sdtgen/spec"
)

type Options uint

const (
	// ErrorRepair selects depth-first closure, the repair grammar sort,
	// and continuation token generation.
	ErrorRepair Options = 1 << iota
	// DefaultReduce collapses single-item final shifts into shift-reduce
	// actions, eliminating the goto state.
	DefaultReduce
	// Ambiguous resolves shift/reduce conflicts by precedence and
	// associativity instead of failing.
	Ambiguous
	// SplitStates repairs reduce/reduce conflicts by lane tracing and
	// state splitting.
	SplitStates
)

const goalName = "<Goal>"
const sentinelName = "<eof>"

// Grammar owns every structure of one table generation run.
type Grammar struct {
	Name    string
	Title   string
	Options Options

	// Verbose receives conflict resolution narration when non-nil.
	Verbose io.Writer

	syms     *symbol.Table
	terms    []*symbol.Symbol // 1-based by token number
	nonterms []*symbol.Symbol // 1-based; token = termcount + index
	goal     *symbol.Symbol
	start    *symbol.Symbol
	sentinel *symbol.Symbol
	context  int
	defcost  int
	ntokens  int
	scanner  *spec.ScannerTables

	prods    []production // 1-based; prods[1] is the goal production
	lhsIndex []int        // first production index per nonterminal ordinal

	first  []firstSet
	states []state // 1-based; state 1 is the start state
	action [][]int // encoded rows, built by buildTable
	repair []int   // continuation token per state
}

func (g *Grammar) termCount() int {
	return len(g.terms) - 1
}

func (g *Grammar) nontermCount() int {
	return len(g.nonterms) - 1
}

// symbolOf maps a token number to its base symbol.
func (g *Grammar) symbolOf(token int) *symbol.Symbol {
	if token <= g.termCount() {
		return g.terms[token]
	}
	return g.nonterms[token-g.termCount()]
}

func (g *Grammar) verbosef(format string, args ...interface{}) {
	if g.Verbose != nil {
		fmt.Fprintf(g.Verbose, format, args...)
	}
}

// FromDefinition lowers a front-end grammar definition into a Grammar ready
// for Generate. Recoverable definition problems (an undefined nonterminal on
// a right hand side) substitute a fresh nonterminal and continue; duplicate
// declarations are fatal.
func FromDefinition(def *spec.GrammarDefinition) (*Grammar, error) {
	g := &Grammar{
		Name:     def.Name,
		syms:     symbol.NewTable(),
		terms:    []*symbol.Symbol{nil},
		nonterms: []*symbol.Symbol{nil},
		context:  def.Context,
		defcost:  def.DefCost,
		scanner:  def.Scanner,
	}
	var errs verr.SpecErrors

	for _, name := range def.Options {
		switch name {
		case spec.OptionErrorRepair:
			g.Options |= ErrorRepair
		case spec.OptionDefaultReduce:
			g.Options |= DefaultReduce
		case spec.OptionAmbiguous:
			g.Options |= Ambiguous
		case spec.OptionSplitStates:
			g.Options |= SplitStates
		default:
			errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("unknown option: %v", name)})
		}
	}

	// Terminals first: token numbers follow declaration order. Aliases are
	// resolved in a second pass so forward references work.
	for i, td := range def.Terminals {
		if td.AliasOf != "" {
			continue
		}
		if g.syms.Lookup(td.Name, symbol.KindTerminal) != nil {
			errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("duplicate terminal: %v", td.Name), Row: i + 1})
			continue
		}
		sym := g.syms.Intern(td.Name, symbol.KindTerminal)
		sym.Token = len(g.terms)
		sym.Flags = terminalFlags(td)
		sym.Precedence = td.Precedence
		sym.InsertCost = td.InsertCost
		sym.DeleteCost = td.DeleteCost
		g.terms = append(g.terms, sym)
	}
	for i, td := range def.Terminals {
		if td.AliasOf == "" {
			continue
		}
		base := g.syms.Lookup(td.AliasOf, symbol.KindTerminal)
		switch {
		case base == nil:
			errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("alias of undefined terminal: %v", td.AliasOf), Row: i + 1})
			continue
		case base.Flags&symbol.Aliased != 0:
			errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("alias of an alias: %v", td.Name), Row: i + 1})
			continue
		case g.syms.Lookup(td.Name, symbol.KindTerminal) != nil:
			errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("duplicate terminal: %v", td.Name), Row: i + 1})
			continue
		}
		alias := g.syms.Intern(td.Name, symbol.KindTerminal)
		alias.Token = base.Token
		// Aliases inherit the install, case, and empty behavior of their
		// base token but keep their own precedence and repair costs.
		alias.Flags = symbol.Aliased | terminalFlags(td)&symbol.Associativity |
			base.Flags&(symbol.Install|symbol.Case|symbol.Empty)
		alias.Precedence = td.Precedence
		alias.InsertCost = td.InsertCost
		alias.DeleteCost = td.DeleteCost
		alias.Alias = base
		base.Alias = alias
	}

	// The sentinel is synthesized unless the front end declared one.
	if g.sentinel = g.syms.Lookup(sentinelName, symbol.KindTerminal); g.sentinel == nil {
		g.sentinel = g.syms.Intern(sentinelName, symbol.KindTerminal)
		g.sentinel.Token = len(g.terms)
		g.sentinel.Precedence = -1
		g.sentinel.InsertCost = spec.SentinelInsertCost
		g.sentinel.DeleteCost = spec.SentinelDeleteCost
		g.terms = append(g.terms, g.sentinel)
	}

	g.ntokens = g.termCount()
	if g.scanner != nil {
		g.ntokens = scannerTokenCount(g.scanner, g.termCount())
	}

	// The goal nonterminal comes first so the augmented production is
	// always production 1.
	g.goal = g.syms.Intern(goalName, symbol.KindNonTerminal)
	g.goal.Token = g.termCount() + len(g.nonterms)
	g.nonterms = append(g.nonterms, g.goal)
	for i, name := range def.NonTerminals {
		if g.syms.Lookup(name, symbol.KindNonTerminal) != nil {
			errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("duplicate nonterminal: %v", name), Row: i + 1})
			continue
		}
		sym := g.syms.Intern(name, symbol.KindNonTerminal)
		sym.Token = g.termCount() + len(g.nonterms)
		g.nonterms = append(g.nonterms, sym)
	}

	g.start = g.syms.Lookup(def.Start, symbol.KindNonTerminal)
	if g.start == nil {
		errs = append(errs, &verr.SpecError{Cause: fmt.Errorf("undefined start symbol: %v", def.Start)})
		return nil, errs
	}

	g.buildProductions(def, &errs)

	if len(errs) > 0 {
		return nil, errs
	}
	return g, nil
}

func terminalFlags(td spec.TerminalDef) symbol.Flags {
	var flags symbol.Flags
	if td.Install {
		flags |= symbol.Install
	}
	if td.Case {
		flags |= symbol.Case
	}
	if td.Empty {
		flags |= symbol.Empty
	}
	switch td.Assoc {
	case "left":
		flags |= symbol.Left
	case "right":
		flags |= symbol.Right
	case "none":
		flags |= symbol.None
	}
	return flags
}

func scannerTokenCount(s *spec.ScannerTables, terms int) int {
	count := terms
	for _, token := range s.Final[1:] {
		if token > count {
			count = token
		}
	}
	return count
}

// buildProductions expands the definition into the production list, grouped
// by left hand side in nonterminal token order, goal production first.
func (g *Grammar) buildProductions(def *spec.GrammarDefinition, errs *verr.SpecErrors) {
	g.prods = []production{{}}
	g.prods = append(g.prods, production{
		lhs:    g.goal,
		rhs:    []*symbol.Symbol{g.start, g.sentinel},
		length: 2,
		steps:  math.MaxInt,
		insert: math.MaxInt,
	})

	resolve := func(name string, row int) *symbol.Symbol {
		if sym := g.syms.Lookup(name, symbol.KindTerminal); sym != nil {
			return sym
		}
		if sym := g.syms.Lookup(name, symbol.KindNonTerminal); sym != nil {
			return sym
		}
		// An undefined name becomes a fresh nonterminal with no
		// alternatives; generation continues so every problem in the
		// grammar is reported in one run.
		*errs = append(*errs, &verr.SpecError{Cause: fmt.Errorf("undefined symbol: %v", name), Row: row})
		sym := g.syms.Intern(name, symbol.KindNonTerminal)
		sym.Token = g.termCount() + len(g.nonterms)
		g.nonterms = append(g.nonterms, sym)
		return sym
	}

	g.lhsIndex = make([]int, g.nontermCount()+1)
	g.lhsIndex[1] = 1
	for i := 2; i <= g.nontermCount(); i++ {
		token := g.termCount() + i
		for row, pd := range def.Productions {
			lhs := g.syms.Lookup(pd.LHS, symbol.KindNonTerminal)
			if lhs == nil || lhs.Token != token {
				continue
			}
			if g.lhsIndex[i] == 0 {
				g.lhsIndex[i] = len(g.prods)
			}
			p := production{
				lhs:      lhs,
				semantic: pd.Semantic,
				steps:    math.MaxInt,
				insert:   math.MaxInt,
			}
			for _, name := range pd.RHS {
				sym := resolve(name, row+1)
				p.rhs = append(p.rhs, sym)
				if !sym.IsEmpty() {
					p.length = len(p.rhs)
				}
			}
			g.prods = append(g.prods, p)
		}
	}
	for row, pd := range def.Productions {
		if g.syms.Lookup(pd.LHS, symbol.KindNonTerminal) == nil {
			*errs = append(*errs, &verr.SpecError{Cause: fmt.Errorf("undefined nonterminal on left hand side: %v", pd.LHS), Row: row + 1})
		}
	}
	// Resolving right hand sides may have added fresh nonterminals.
	for len(g.lhsIndex) <= g.nontermCount() {
		g.lhsIndex = append(g.lhsIndex, 0)
	}
	for i := 1; i <= g.nontermCount(); i++ {
		if g.lhsIndex[i] == 0 {
			g.lhsIndex[i] = len(g.prods)
		}
	}
}

// Generate runs table construction: the LR(0) collection and goto graph,
// LALR lookahead, conflict resolution, and the error repair table.
func (g *Grammar) Generate() error {
	if g.Options&ErrorRepair != 0 {
		g.computeSortKeys()
		g.sortProductions()
	}

	g.buildStates()
	g.computeFirst()
	g.setupLookahead()
	g.propagateLookahead()

	if err := g.buildTable(); err != nil {
		return err
	}
	return g.buildRepair()
}
