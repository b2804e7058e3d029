package driver

import (
	"io"

	"github.com/rmongiovi/sdtgen/spec"
)

// maxBuffer is the amount of data read from the input in one read.
const maxBuffer = 8192

// buffer is one block of input data. Buffers form a list ordered by a
// monotone sequence number; blocks before the first unwritten line are
// released as lines are flushed.
type buffer struct {
	next  *buffer
	order int
	count int
	data  [maxBuffer]byte
}

// location addresses a byte as a (buffer, offset) pair, totally ordered by
// (buffer.order, offset).
type location struct {
	buf    *buffer
	offset int
}

func (l location) before(o location) bool {
	return l.buf.order < o.buf.order || l.buf == o.buf && l.offset < o.offset
}

func (l location) atOrBefore(o location) bool {
	return l.buf.order < o.buf.order || l.buf == o.buf && l.offset <= o.offset
}

// readBuffer advances where into the next buffer, reading more input when
// the chain is exhausted. It reports whether a byte is available at where.
func (p *Parser) readBuffer(where *location) (bool, error) {
	if where.buf.next != nil {
		where.buf = where.buf.next
		where.offset = 0
	} else if !p.endfile {
		if where.buf.count >= maxBuffer {
			fresh := &buffer{order: p.bufferEnd.order + 1}
			p.bufferEnd.next = fresh
			p.bufferEnd = fresh
			where.buf = fresh
			where.offset = 0
		}

		count, err := p.src.Read(p.bufferEnd.data[p.bufferEnd.count:])
		if count > 0 {
			p.bufferEnd.count += count
		} else if err == io.EOF || err == nil {
			p.endfile = true
		} else {
			return false, err
		}
	}
	return where.offset < where.buf.count, nil
}

// inputChar returns the next input byte and its location, or EndFile.
func (p *Parser) inputChar() (int, location, error) {
	if p.position.offset >= p.position.buf.count {
		more, err := p.readBuffer(&p.position)
		if err != nil {
			return 0, location{}, err
		}
		if !more {
			// End of file is hypothetically the start of the next line.
			p.beginning = p.position
			return spec.EndFile, p.position, nil
		}
	}

	where := p.position
	if p.newline {
		p.beginning = p.position
		p.newline = false
	}

	ch := p.position.buf.data[p.position.offset]
	p.position.offset++
	if ch == '\n' {
		p.newline = true
	}
	return int(ch), where, nil
}
