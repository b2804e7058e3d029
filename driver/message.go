package driver

import (
	"fmt"
)

// message is one queued diagnostic. A scanner error has no text; the run of
// ignored bytes from point through last is displayed when its line flushes.
type message struct {
	point   location
	last    location
	text    string
	scanner bool
}

// enqueueError inserts a diagnostic at its source position. Byte-adjacent
// scanner errors merge into the most recent entry by extending its run.
func (p *Parser) enqueueError(point location, text string, scanner bool) {
	if len(p.msgqueue) == 0 {
		p.msgqueue = append(p.msgqueue, message{point: point, last: point, text: text, scanner: scanner})
		return
	}

	if scanner && p.msgqueue[len(p.msgqueue)-1].scanner {
		where := p.msgqueue[len(p.msgqueue)-1].last
		where.offset++
		if where.offset >= where.buf.count && where.buf.next != nil {
			where.buf = where.buf.next
			where.offset = 0
		}
		if point == where {
			p.msgqueue[len(p.msgqueue)-1].last = point
			return
		}
	}

	i := len(p.msgqueue)
	p.msgqueue = append(p.msgqueue, message{})
	for ; i > 0; i-- {
		if point.before(p.msgqueue[i-1].point) {
			p.msgqueue[i] = p.msgqueue[i-1]
		} else {
			break
		}
	}
	p.msgqueue[i] = message{point: point, last: point, text: text, scanner: scanner}
}

// recordErrorAt formats and queues a syntax or semantic diagnostic.
func (p *Parser) recordErrorAt(point location, format string, args ...interface{}) {
	p.enqueueError(point, fmt.Sprintf(format, args...), false)
}

// RecordError queues a diagnostic at the position of the current input
// token. Applications use it from semantic actions; parsing continues.
func (p *Parser) RecordError(format string, args ...interface{}) {
	point := p.position
	if len(p.tknqueue) > 0 {
		point = p.tknqueue[0].where
	}
	p.recordErrorAt(point, format, args...)
}

// charWidth is the display width of a byte at a column, honoring tab stops.
func charWidth(ch byte, column int) int {
	if ch == '\t' {
		return 8 - column%8
	}
	return 1
}

// writeLine skips or writes the line beginning at p.unwritten, followed by a
// caret and message for every diagnostic the line contains.
func (p *Parser) writeLine() error {
	// If unwritten is already at EOF, pretend the start of the next line is
	// one past it so every remaining diagnostic flushes.
	nextline := p.unwritten
	if nextline.offset >= nextline.buf.count {
		nextline.offset = nextline.buf.count + 1
	} else {
		for {
			if nextline.offset >= nextline.buf.count {
				more, err := p.readBuffer(&nextline)
				if err != nil {
					return err
				}
				if !more {
					break
				}
			}
			ch := nextline.buf.data[nextline.offset]
			nextline.offset++
			if ch == '\n' {
				if nextline.offset >= nextline.buf.count {
					if _, err := p.readBuffer(&nextline); err != nil {
						return err
					}
				}
				break
			}
		}
	}

	p.lineno++

	if p.Listing || len(p.msgqueue) > 0 && p.msgqueue[0].point.before(nextline) {
		// A blank line separates a line trailed by messages from the next.
		if p.msgwritten {
			fmt.Fprintln(p.out)
			p.msgwritten = false
		}

		where := p.unwritten
		if where.offset < where.buf.count {
			fmt.Fprintf(p.out, "%6d: ", p.lineno)
			for where.before(nextline) {
				ch := where.buf.data[where.offset]
				where.offset++
				if where.offset >= where.buf.count && where.buf.next != nil {
					where.buf = where.buf.next
					where.offset = 0
				}
				if ch == '\n' {
					break
				}
				p.out.Write([]byte{ch})
			}
		} else {
			// A pseudo-line for insertions reported at end of file.
			fmt.Fprint(p.out, " <EOF>:")
			nextline.offset++
		}
		fmt.Fprintln(p.out)

		where = p.unwritten
		column := 0
		for len(p.msgqueue) > 0 && p.msgqueue[0].point.before(nextline) {
			for where.before(p.msgqueue[0].point) {
				column += charWidth(where.buf.data[where.offset], column)
				where.offset++
				if where.offset >= where.buf.count && where.buf.next != nil {
					where.buf = where.buf.next
					where.offset = 0
				}
			}

			// A caret pointing at the error location.
			fmt.Fprint(p.out, "\t")
			i := column
			for ; i >= 8; i -= 8 {
				fmt.Fprint(p.out, "\t")
			}
			fmt.Fprintf(p.out, "%*c\n", i+1, '^')

			if p.msgqueue[0].scanner {
				fmt.Fprint(p.out, " *****\tDeleted: ")
				for {
					ch := where.buf.data[where.offset]
					p.out.Write([]byte{ch})
					column += charWidth(ch, column)
					where.offset++
					if where.offset >= where.buf.count && where.buf.next != nil {
						where.buf = where.buf.next
						where.offset = 0
					}
					if where.offset > p.msgqueue[0].last.offset || where.buf.order > p.msgqueue[0].last.buf.order {
						break
					}
				}
				fmt.Fprintln(p.out)
			} else {
				fmt.Fprintf(p.out, " *****\t%s\n", p.msgqueue[0].text)
			}
			p.msgwritten = true

			p.msgqueue = append(p.msgqueue[:0], p.msgqueue[1:]...)
		}
	}

	p.unwritten = nextline

	// Buffers preceding the first unwritten line are no longer needed.
	for p.bufferList != p.unwritten.buf {
		p.bufferList = p.bufferList.next
	}
	return nil
}
