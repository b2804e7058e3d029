// Package driver is the runtime LR parser: a streaming table interpreter
// with delayed reduces and locally least-cost error repair. A Parser owns
// one parse end to end; distinct parsers may run concurrently but a single
// Parser is not reentrant.
package driver

import (
	"io"
	"os"

	"github.com/rmongiovi/sdtgen/spec"
)

// parseEntry is one entry of the parse stack. Entry 0 holds state 1; a
// shift-reduce pushes state 0 as a placeholder that the following reduce
// chain pops.
type parseEntry struct {
	state  int
	where  location
	token  int
	symbol []byte
}

// reduceEntry is one delayed reduction: the production, the stack pointer
// after its RHS is popped, and the state the LHS goto enters.
type reduceEntry struct {
	number  int
	pointer int
	state   int
}

// insertEntry is one token of the continuation string with the accumulated
// insertion cost of the prefix ending at it.
type insertEntry struct {
	token  int
	symbol []byte
	cost   int
	known  bool
}

// Parser interprets a set of generated tables over one input stream.
type Parser struct {
	tables  *spec.Tables
	src     io.Reader
	action  func(semantic int)
	install func(tok *Token)
	lex     func() error

	// Listing selects line-by-line echo of the input as it is parsed.
	Listing bool
	out     io.Writer

	bufferList *buffer
	bufferEnd  *buffer
	position   location
	newline    bool
	endfile    bool
	lineno     int
	unwritten  location
	msgwritten bool
	beginning  location

	tokenEnd  []location
	followset []int

	msgqueue  []message
	parstack  []parseEntry
	redqueue  []reduceEntry
	tknqueue  []Token
	errstack  []int
	lclstack  []int
	stastack  []int
	scnstack  []Token
	deletion  []Token
	insertion []insertEntry
}

type Option func(*Parser)

// WithAction sets the callback fired once per reduction carrying a nonzero
// semantic number. Reductions are delayed until the next terminal shift
// commits them, so the callback never observes a repair-replaced reduce.
func WithAction(fn func(semantic int)) Option {
	return func(p *Parser) { p.action = fn }
}

// WithInstall sets the callback invoked for every token whose install flag
// is set. The callback receives the token text and may override the token
// number chosen by the scanner.
func WithInstall(fn func(tok *Token)) Option {
	return func(p *Parser) { p.install = fn }
}

// WithOutput redirects the listing and diagnostics, which default to
// standard output.
func WithOutput(w io.Writer) Option {
	return func(p *Parser) { p.out = w }
}

// New prepares a parser over src. Every working structure is owned by the
// returned Parser and released when it becomes unreachable; no state is
// shared between parsers.
func New(tables *spec.Tables, src io.Reader, opts ...Option) *Parser {
	p := &Parser{
		tables: tables,
		src:    src,
		out:    os.Stdout,
	}

	p.bufferList = &buffer{}
	p.bufferEnd = p.bufferList
	p.position = location{buf: p.bufferList}
	p.newline = true
	p.unwritten = p.position
	p.beginning = p.position

	p.tokenEnd = make([]location, tables.NTokens+2)
	p.followset = make([]int, tables.TNumber+1)

	if tables.Scanner != nil {
		p.lex = p.scanToken
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// decodeAction classifies the table entry for a state and terminal.
func decodeAction(t *spec.Tables, state, token int) (int, int) {
	next := t.Action(state, token)
	switch {
	case next == 0:
		return spec.ActionError, 0
	case next < 0:
		return spec.ActionReduce, -next
	case next > spec.ShiftOffset:
		return spec.ActionShift, next - spec.ShiftOffset
	default:
		return spec.ActionShiftReduce, next
	}
}

// decodeGoto classifies the table entry for a state and nonterminal. The
// nonterminal was produced by a reduce, so the entry is a shift, a
// shift-reduce, or the accept action.
func decodeGoto(t *spec.Tables, state, token int) (int, int) {
	next := t.Action(state, token)
	switch {
	case next > spec.ShiftOffset:
		return spec.ActionShift, next - spec.ShiftOffset
	case next > 0:
		return spec.ActionShiftReduce, next
	default:
		return spec.ActionAccept, 0
	}
}

// Parse runs the driver loop to acceptance. Reduce actions are queued, not
// executed: their semantic actions fire when the next terminal shift is
// committed, so no side effect ever precedes an error repair that could
// replace the triggering reduction.
func (p *Parser) Parse() error {
	p.parstack = append(p.parstack[:0], parseEntry{state: 1})

	// Current state and the deepest stack point still unaffected by
	// delayed reduces. Error repair only reshapes the token queue, so all
	// three survive a repair unchanged.
	state := 1
	pointer := 0
	knownptr := 0
	var where location

	for {
		if len(p.tknqueue) == 0 {
			if err := p.inputToken(); err != nil {
				return err
			}
		}

		action, entry := decodeAction(p.tables, state, p.tknqueue[0].Token)

		if action == spec.ActionShift || action == spec.ActionShiftReduce {
			// Shifting a terminal commits all delayed reduces.
			where = p.parstack[len(p.parstack)-1].where
			p.performReduces(where)

			if action == spec.ActionShift {
				state = entry
			} else {
				// The shift half of a shift-reduce pushes a placeholder
				// state; the reduce chain below pops it.
				state = 0
			}
			pointer = len(p.parstack)
			knownptr = pointer

			p.parstack = append(p.parstack, parseEntry{
				state:  state,
				where:  p.tknqueue[0].where,
				token:  p.tknqueue[0].Token,
				symbol: p.tknqueue[0].Symbol,
			})

			// All lines before the current token are complete.
			for p.unwritten.before(p.tknqueue[0].locus) {
				if err := p.writeLine(); err != nil {
					return err
				}
			}

			p.tknqueue = append(p.tknqueue[:0], p.tknqueue[1:]...)
		}

		switch action {
		case spec.ActionShift:
			continue

		case spec.ActionShiftReduce, spec.ActionReduce:
			gact := spec.ActionShiftReduce
			for gact == spec.ActionShiftReduce {
				pointer -= p.tables.RHSLength[entry]
				if pointer < knownptr {
					knownptr = pointer
				}

				if pointer > knownptr {
					// Within the region reshaped by delayed reduces the
					// state comes from the most recent reduce that
					// popped the stack to this depth; absent one this
					// reduction has an empty RHS and the state is
					// unchanged.
					for i := len(p.redqueue) - 1; i >= 0; i-- {
						if p.redqueue[i].pointer > pointer {
							continue
						}
						if p.redqueue[i].pointer == pointer {
							state = p.redqueue[i].state
						}
						break
					}
				} else {
					state = p.parstack[pointer].state
				}

				number := entry
				gact, entry = decodeGoto(p.tables, state, p.tables.LHSymbol[number])
				if gact == spec.ActionShift {
					state = entry
				} else {
					state = 0
				}

				pointer++
				p.redqueue = append(p.redqueue, reduceEntry{
					number:  number,
					pointer: pointer,
					state:   state,
				})
			}

			if gact == spec.ActionAccept {
				p.performReduces(where)
				for len(p.msgqueue) > 0 {
					if err := p.writeLine(); err != nil {
						return err
					}
				}
				return nil
			}

		case spec.ActionError:
			if err := p.repairError(); err != nil {
				return err
			}
		}
	}
}

// performReduces fires every queued reduction: the semantic callback, the
// RHS pop, and the LHS push.
func (p *Parser) performReduces(where location) {
	for _, red := range p.redqueue {
		if p.tables.Semantics[red.number] != 0 && p.action != nil {
			p.action(p.tables.Semantics[red.number])
		}

		p.parstack = p.parstack[:red.pointer]
		p.parstack = append(p.parstack, parseEntry{
			state: red.state,
			where: where,
			token: p.tables.LHSymbol[red.number],
		})
	}
	p.redqueue = p.redqueue[:0]
}
