package driver

import (
	"errors"
)

// Token is one lexed token queued for the parser. Symbol holds the token
// text when the token's install flag is set; the install callback may change
// Token to reclassify it.
type Token struct {
	Token  int
	Symbol []byte
	locus  location // start of the containing line
	where  location // token start
}

// scanToken interprets the compressed scanner tables over the input and
// appends the next significant token to the token queue. Lexical errors emit
// a diagnostic, skip one byte, and rescan; ignored tokens are consumed
// silently.
func (p *Parser) scanToken() error {
	s := p.tables.Scanner
	var tok Token
	final := 0

	for {
		ch, where, err := p.inputChar()
		if err != nil {
			return err
		}
		tok.locus = p.beginning
		tok.where = where

		final = 0
		state := 1
		for state != 0 {
			for i := s.TokenIndex[state]; i < s.TokenIndex[state+1]; i++ {
				p.tokenEnd[s.TokenTable[i]] = where
			}
			if s.Final[state] != 0 {
				final = state
			}

			i := 0
			for {
				i = s.Base[state] + ch
				if i >= 0 && i < len(s.Check) && s.Check[i] == state {
					break
				}
				state = s.Default[state]
				if state == 0 {
					break
				}
			}
			if state != 0 {
				if state = s.Next[i]; state != 0 {
					ch, where, err = p.inputChar()
					if err != nil {
						return err
					}
				}
			}
		}

		if final == 0 {
			// No final state was reached: report the byte and rescan
			// just past it.
			p.enqueueError(tok.where, "", true)
			p.position = tok.where
			p.position.offset++
			continue
		}

		// Rewind to the end of the recognized token.
		p.position = p.tokenEnd[s.Final[final]]
		if s.Final[final] <= p.tables.TNumber {
			break
		}
	}

	tok.Token = p.tables.Scanner.Final[final]

	if s.Install[final] != 0 {
		tok.Symbol = p.tokenText(tok.where, p.position)
		if p.install != nil {
			p.install(&tok)
		}
	}

	p.tknqueue = append(p.tknqueue, tok)
	return nil
}

// tokenText copies the bytes between two locations out of the buffer chain.
func (p *Parser) tokenText(from, to location) []byte {
	var text []byte
	where := from
	for where != to {
		if where.offset >= where.buf.count {
			where.buf = where.buf.next
			where.offset = 0
			continue
		}
		text = append(text, where.buf.data[where.offset])
		where.offset++
	}
	return text
}

// inputToken fetches the next token from the configured lexer.
func (p *Parser) inputToken() error {
	if p.lex == nil {
		return errNoLexer
	}
	return p.lex()
}

var errNoLexer = errors.New("tables carry no scanner and no token source was configured")
