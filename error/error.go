package error

import (
	"fmt"
	"strings"
)

// SpecError is an error tied to a position in a grammar definition.
type SpecError struct {
	Cause error
	Row   int
}

func (e *SpecError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("error: %v", e.Cause)
	}
	return fmt.Sprintf("%v: error: %v", e.Row, e.Cause)
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

// SpecErrors aggregates every definition error found in one pass so a broken
// grammar is reported completely instead of one complaint at a time.
type SpecErrors []*SpecError

func (e SpecErrors) Error() string {
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}
