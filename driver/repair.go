package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmongiovi/sdtgen/spec"
)

// ErrSyntax reports a syntax error in a state with no continuation, where no
// repair is possible.
var ErrSyntax = errors.New("syntax error")

// errorValue returns the next continuation value for the state on top of the
// local error stack: a terminal to shift or the negative of a production to
// reduce. Before handing the value out it classifies which terminals first
// become admissible after the current continuation prefix.
func (p *Parser) errorValue() (int, error) {
	value := p.tables.Repair[p.lclstack[len(p.lclstack)-1]]
	if value == 0 {
		// No continuation exists: the error is fatal. Flush every line
		// through the one holding the offending token.
		p.recordErrorAt(p.tknqueue[0].where, "Syntax error")
		for p.unwritten.atOrBefore(p.tknqueue[0].locus) {
			if err := p.writeLine(); err != nil {
				return 0, err
			}
		}
		return 0, ErrSyntax
	}

	// Reduce actions revisit this continuation prefix, so its follow set is
	// computed once.
	if !p.insertion[len(p.insertion)-1].known {
		for i := 1; i <= p.tables.TNumber; i++ {
			if p.followset[i] >= 0 {
				continue
			}

			action, entry := decodeAction(p.tables, p.lclstack[len(p.lclstack)-1], i)
			if action == spec.ActionShift || action == spec.ActionShiftReduce {
				// The current state shifts the terminal, so it is
				// admissible by inspection.
				p.followset[i] = len(p.insertion) - 1
				continue
			}
			if action != spec.ActionReduce {
				continue
			}

			// Admissible only if some chain of reduces from here ends in
			// a state which shifts the terminal or accepts.
			p.stastack = append(p.stastack[:0], p.lclstack...)
			for action == spec.ActionReduce {
				gact := spec.ActionShiftReduce
				for gact == spec.ActionShiftReduce {
					p.stastack = p.stastack[:len(p.stastack)-p.tables.RHSLength[entry]]
					gact, entry = decodeGoto(p.tables, p.stastack[len(p.stastack)-1], p.tables.LHSymbol[entry])
					p.stastack = append(p.stastack, entry)
				}
				if gact == spec.ActionAccept {
					action = spec.ActionAccept
					break
				}
				action, entry = decodeAction(p.tables, p.stastack[len(p.stastack)-1], i)
			}
			if action == spec.ActionShift || action == spec.ActionShiftReduce || action == spec.ActionAccept {
				p.followset[i] = len(p.insertion) - 1
			}
		}
		p.insertion[len(p.insertion)-1].known = true
	}

	if value > 0 {
		// The value is a terminal and extends the continuation string.
		p.insertion = append(p.insertion, insertEntry{
			token: value,
			cost:  p.insertion[len(p.insertion)-1].cost + p.tables.InsCost[value],
		})
	}
	return value, nil
}

// buildContinuation parses to acceptance from the error state using the
// per-state continuation values, collecting the insertion string and the
// admissibility point of every terminal along the way.
func (p *Parser) buildContinuation() error {
	p.lclstack = append(p.lclstack[:0], p.errstack...)

	p.insertion = append(p.insertion[:0], insertEntry{})
	for i := range p.followset {
		p.followset[i] = -1
	}

	for {
		value, err := p.errorValue()
		if err != nil {
			return err
		}

		var action, entry int
		if value < 0 {
			entry = -value
			action = spec.ActionReduce
		} else {
			action, entry = decodeAction(p.tables, p.lclstack[len(p.lclstack)-1], value)
		}

		switch action {
		case spec.ActionShift:
			p.lclstack = append(p.lclstack, entry)

		case spec.ActionShiftReduce, spec.ActionReduce:
			if action == spec.ActionShiftReduce {
				p.lclstack = append(p.lclstack, entry)
			}
			gact := spec.ActionShiftReduce
			for gact == spec.ActionShiftReduce {
				p.lclstack = p.lclstack[:len(p.lclstack)-p.tables.RHSLength[entry]]
				gact, entry = decodeGoto(p.tables, p.lclstack[len(p.lclstack)-1], p.tables.LHSymbol[entry])
				p.lclstack = append(p.lclstack, entry)
			}
			if gact == spec.ActionAccept {
				return nil
			}

		case spec.ActionAccept:
			return nil

		default:
			return fmt.Errorf("internal error: state %d does not accept its continuation value %d", p.lclstack[len(p.lclstack)-1], value)
		}
	}
}

// lookAhead parses forward from a copy of the error-time stack with a
// synthetic token stream: the single terminal token when positive, otherwise
// count tokens of the continuation string, followed by number input tokens.
// It returns how many of those tokens remained unconsumed when the parse hit
// an error, or 0 if all were consumed cleanly.
func (p *Parser) lookAhead(token, count, number int) (int, error) {
	p.stastack = append(p.stastack[:0], p.errstack...)

	chk := make([]int, 0, count+number+1)
	if token > 0 {
		chk = append(chk, token)
	}
	for i := 1; i <= count; i++ {
		chk = append(chk, p.insertion[i].token)
	}
	for len(p.tknqueue) < number {
		if err := p.inputToken(); err != nil {
			return 0, err
		}
	}
	for i := 0; i < number; i++ {
		chk = append(chk, p.tknqueue[i].Token)
	}

	i := 0
	for {
		action, entry := decodeAction(p.tables, p.stastack[len(p.stastack)-1], chk[i])
		switch action {
		case spec.ActionError:
			return len(chk) - i, nil

		case spec.ActionShift, spec.ActionShiftReduce:
			p.stastack = append(p.stastack, entry)
			i++
			if i >= len(chk) {
				return 0, nil
			}
			if action == spec.ActionShift {
				continue
			}
			fallthrough

		case spec.ActionReduce:
			gact := spec.ActionShiftReduce
			for gact == spec.ActionShiftReduce {
				p.stastack = p.stastack[:len(p.stastack)-p.tables.RHSLength[entry]]
				gact, entry = decodeGoto(p.tables, p.stastack[len(p.stastack)-1], p.tables.LHSymbol[entry])
				p.stastack = append(p.stastack, entry)
			}
			if gact == spec.ActionAccept {
				return 0, nil
			}
		}
	}
}

// errorRepair is one candidate repair: a direct token insertion or a
// continuation prefix insertion.
type errorRepair struct {
	token  int
	prefix int
	cost   int
}

// repairError finds and applies the locally least-cost repair for a syntax
// error: some number of deleted input tokens followed by either a single
// admissible token insertion or a prefix of the continuation string.
func (p *Parser) repairError() error {
	// Snapshot the state column of the parse stack. Shift-reduce
	// placeholders are not real states; apply queued reduces symbolically
	// until the top of the snapshot is one.
	p.errstack = p.errstack[:0]
	for i := range p.parstack {
		p.errstack = append(p.errstack, p.parstack[i].state)
	}
	for i := 0; p.errstack[len(p.errstack)-1] == 0; i++ {
		p.errstack = p.errstack[:p.redqueue[i].pointer]
		p.errstack = append(p.errstack, p.redqueue[i].state)
	}

	if err := p.buildContinuation(); err != nil {
		return err
	}

	choice := errorRepair{token: -1, prefix: -1, cost: spec.MaxCost}
	deleted := 0

	p.scnstack = p.scnstack[:0]
	p.deletion = p.deletion[:0]

	for {
		// The cheapest admissible terminal whose insertion makes the next
		// input token admissible within one further step.
		insert := errorRepair{token: -1, prefix: -1, cost: spec.MaxCost}
		for token := 1; token <= p.tables.TNumber; token++ {
			if p.followset[token] != 0 || token == p.insertion[1].token {
				continue
			}
			remaining, err := p.lookAhead(token, 0, 1)
			if err != nil {
				return err
			}
			if remaining != 0 {
				continue
			}

			// The repair cost carries a share of the default repair cost
			// discounted by how many context tokens parse cleanly beyond
			// the candidate.
			cost := deleted + p.tables.InsCost[token]
			if p.tables.Context > 1 {
				ahead, err := p.lookAhead(token, 0, p.tables.Context)
				if err != nil {
					return err
				}
				cost += (ahead * p.tables.DefCost) / p.tables.Context
			}
			if cost < insert.cost {
				insert.token = token
				insert.cost = cost
			}
		}

		if len(p.tknqueue) == 0 {
			if err := p.inputToken(); err != nil {
				return err
			}
		}

		token := p.tknqueue[0].Token
		prefix := errorRepair{token: -1}
		if p.followset[token] >= 0 {
			cost := deleted + p.insertion[p.followset[token]].cost
			if p.tables.Context > 0 {
				ahead, err := p.lookAhead(0, p.followset[token], p.tables.Context)
				if err != nil {
					return err
				}
				cost += (ahead * p.tables.DefCost) / p.tables.Context
			}
			prefix.prefix = p.followset[token]
			prefix.cost = cost
		} else {
			prefix.prefix = 0
			prefix.cost = spec.MaxCost
		}

		if insert.cost < choice.cost || prefix.cost < choice.cost {
			if insert.cost <= prefix.cost {
				choice = insert
			} else {
				choice = prefix
			}

			// A new least-cost repair commits everything scanned past as
			// deleted.
			p.deletion = append(p.deletion, p.scnstack...)
			p.scnstack = p.scnstack[:0]
		}

		// Keep scanning while deleting through the next token could still
		// lead to a cheaper repair.
		if deleted+p.tables.DelCost[token] < choice.cost {
			p.scnstack = append(p.scnstack, p.tknqueue[0])
			p.tknqueue = append(p.tknqueue[:0], p.tknqueue[1:]...)
			deleted += p.tables.DelCost[token]
		} else {
			break
		}
	}

	// Scanned but undeleted tokens return to the head of the input.
	if len(p.scnstack) > 0 {
		restored := make([]Token, 0, len(p.scnstack)+len(p.tknqueue))
		restored = append(restored, p.scnstack...)
		restored = append(restored, p.tknqueue...)
		p.tknqueue = restored
		p.scnstack = p.scnstack[:0]
	}

	// A plain token insertion is applied as a one-token continuation prefix
	// so both repairs display and replay the same way.
	token := p.tknqueue[0].Token
	if choice.token > 0 {
		choice.prefix = 1
		p.insertion[1].token = choice.token
		p.insertion[1].symbol = nil
		p.followset[token] = 1
	}

	p.recordRepair(p.followset[token])

	p.deletion = p.deletion[:0]

	// Inserted tokens join the front of the input stream carrying the
	// position of the token they precede.
	if count := p.followset[token]; count > 0 {
		inserted := make([]Token, 0, count+len(p.tknqueue))
		for i := 1; i <= count; i++ {
			inserted = append(inserted, Token{
				Token:  p.insertion[i].token,
				Symbol: p.insertion[i].symbol,
				locus:  p.tknqueue[0].locus,
				where:  p.tknqueue[0].where,
			})
		}
		inserted = append(inserted, p.tknqueue...)
		p.tknqueue = inserted
	}
	p.insertion = p.insertion[:0]
	return nil
}

// recordRepair reports the chosen repair as deletion, insertion, or
// replacement diagnostics. Deletions spanning several lines are reported
// line by line; when an inserted token matches a deleted one the deleted
// token's text transfers to the insertion so the message reads as a
// replacement.
func (p *Parser) recordRepair(insert int) {
	var b strings.Builder
	var where location

	i := 0
	for i < len(p.deletion) {
		where = p.deletion[i].where

		j := i + 1
		for ; j < len(p.deletion); j++ {
			if p.deletion[j].locus != p.deletion[j-1].locus {
				break
			}
		}

		b.Reset()
		if j < len(p.deletion) || insert == 0 {
			b.WriteString("Deleted:")
		} else {
			b.WriteString("Replaced:")
		}

		for i < j {
			tok := p.deletion[i]
			i++
			if tok.Symbol == nil {
				fmt.Fprintf(&b, " %s", p.tables.TokenName(tok.Token))
			} else {
				fmt.Fprintf(&b, " %s", tok.Symbol)
			}
		}

		if i < len(p.deletion) || insert == 0 {
			p.recordErrorAt(where, "%s", b.String())
		}
	}

	if insert == 0 {
		return
	}

	if len(p.deletion) == 0 {
		where = p.tknqueue[0].where
		b.Reset()
		b.WriteString("Inserted:")
	} else {
		b.WriteString("  with ")

		for i := 1; i <= insert; i++ {
			for j := range p.deletion {
				if p.deletion[j].Token == p.insertion[i].token && p.deletion[j].Symbol != nil {
					p.insertion[i].symbol = p.deletion[j].Symbol
					p.deletion[j].Symbol = nil
					break
				}
			}
		}
	}

	for i := 1; i <= insert; i++ {
		if p.insertion[i].symbol == nil {
			fmt.Fprintf(&b, " %s", p.tables.TokenName(p.insertion[i].token))
		} else {
			fmt.Fprintf(&b, " %s", p.insertion[i].symbol)
		}
	}

	p.recordErrorAt(where, "%s", b.String())
}
