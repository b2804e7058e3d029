package spec

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Tables is the in-memory form of a generated table file. All state, token,
// and production indexes are 1-based; index 0 is reserved and never appears
// in a table.
type Tables struct {
	Type     int // 0 uncompressed parser, 1 compressed
	TNumber  int // terminals
	NTokens  int // tokens including ignored
	SNumber  int // scanner states
	NTNumber int // nonterminals
	GNumber  int // productions
	PNumber  int // parser states
	Context  int
	DefCost  int
	Name     string

	Scanner *ScannerTables

	InsCost   []int // len TNumber+1
	DelCost   []int // len TNumber+1
	LHSymbol  []int // len GNumber+1, LHS token per production
	RHSLength []int // len GNumber+1, non-empty RHS positions per production
	Semantics []int // len GNumber+1
	Repair    []int // len PNumber+1, continuation token or -production

	StringIndex []int // len TNumber+NTNumber+1, start offsets into StringTable
	StringTable string

	// Type 0: full action rows, cols 1..TNumber+NTNumber.
	Actions [][]int
	// Type 1: packed rows; Next[PBase[s]+t] is valid iff Check[PBase[s]+t] == s.
	PBase  []int
	PCheck []int
	PNext  []int
}

// Action returns the encoded action cell for a state and token, or 0.
func (t *Tables) Action(state, token int) int {
	if t.Type == 0 {
		return t.Actions[state][token]
	}
	i := t.PBase[state] + token
	if i < 0 || i >= len(t.PCheck) || t.PCheck[i] != state {
		return 0
	}
	return t.PNext[i]
}

// TokenName returns the name of a terminal or nonterminal token.
func (t *Tables) TokenName(token int) string {
	return t.StringTable[t.StringIndex[token-1]:t.StringIndex[token]]
}

func digitCount(n int) int {
	count := 1
	for n >= 10 {
		n /= 10
		count++
	}
	return count
}

// tableWidth sizes a column so negative values get room for their sign.
func tableWidth(vals []int) int {
	width := 0
	for _, v := range vals {
		if v < 0 {
			if -v*10 > width {
				width = -v * 10
			}
		} else if v > width {
			width = v
		}
	}
	return digitCount(width)
}

// writeInts emits values in fixed-width columns wrapped at MaxLine.
func writeInts(w io.Writer, vals []int) error {
	width := tableWidth(vals)
	length := 0
	full := false
	for i, v := range vals {
		if length+width > MaxLine || full {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			full = false
			length = 0
		}
		if _, err := fmt.Fprintf(w, "%*d", width, v); err != nil {
			return err
		}
		length += width
		if i < len(vals)-1 && length+1+width <= MaxLine {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
			length++
		} else {
			full = true
		}
	}
	if length > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// writePairs emits (index, value) pairs for the nonzero cells of one action
// row, preceded by their count.
func writePairs(w io.Writer, row []int, width int) error {
	count := 0
	for _, v := range row[1:] {
		if v != 0 {
			count++
		}
	}
	if _, err := fmt.Fprintf(w, "%d\n", count); err != nil {
		return err
	}
	length := 0
	full := false
	written := 0
	for j := 1; j < len(row); j++ {
		if row[j] == 0 {
			continue
		}
		if length+width+1+width > MaxLine || full {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
			full = false
			length = 0
		}
		if _, err := fmt.Fprintf(w, "%*d %*d", width, j, width, row[j]); err != nil {
			return err
		}
		length += width + 1 + width
		written++
		if written < count && length+1+width+1+width <= MaxLine {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
			length++
		} else {
			full = true
		}
	}
	if length > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Write emits the table file in its text format: a header line followed by
// one section per table, wrapped at MaxLine columns.
func (t *Tables) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%d %d %d %d %d %d %d %d %d %s\n",
		t.Type, t.TNumber, t.NTokens, t.SNumber, t.NTNumber,
		t.GNumber, t.PNumber, t.Context, t.DefCost, t.Name)

	if t.SNumber > 0 {
		s := t.Scanner
		if err := writeInts(bw, s.TokenIndex[1:]); err != nil {
			return err
		}
		if err := writeInts(bw, s.TokenTable); err != nil {
			return err
		}
		if err := writeInts(bw, s.Final[1:]); err != nil {
			return err
		}
		if err := writeInts(bw, s.Install[1:]); err != nil {
			return err
		}
		if err := writeInts(bw, s.Default[1:]); err != nil {
			return err
		}
		if err := writeInts(bw, s.Base[1:]); err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d\n", len(s.Check))
		if err := writeInts(bw, s.Check); err != nil {
			return err
		}
		if err := writeInts(bw, s.Next); err != nil {
			return err
		}
	}

	if err := writeInts(bw, t.InsCost[1:]); err != nil {
		return err
	}
	if err := writeInts(bw, t.DelCost[1:]); err != nil {
		return err
	}
	if err := writeInts(bw, t.LHSymbol[1:]); err != nil {
		return err
	}
	if err := writeInts(bw, t.RHSLength[1:]); err != nil {
		return err
	}
	if err := writeInts(bw, t.Semantics[1:]); err != nil {
		return err
	}
	if err := writeInts(bw, t.Repair[1:]); err != nil {
		return err
	}
	if err := writeInts(bw, t.StringIndex); err != nil {
		return err
	}

	fmt.Fprintf(bw, "%d\n", MaxLine)
	for i := 0; i < len(t.StringTable); i += MaxLine {
		end := i + MaxLine
		if end > len(t.StringTable) {
			end = len(t.StringTable)
		}
		fmt.Fprintln(bw, t.StringTable[i:end])
	}

	if t.Type == 0 {
		width := 0
		for i := 1; i <= t.PNumber; i++ {
			for j := 1; j <= t.TNumber+t.NTNumber; j++ {
				if width < j {
					width = j
				}
				if v := t.Actions[i][j]; v < 0 {
					if -v*10 > width {
						width = -v * 10
					}
				} else if v > width {
					width = v
				}
			}
		}
		width = digitCount(width)
		for i := 1; i <= t.PNumber; i++ {
			if err := writePairs(bw, t.Actions[i], width); err != nil {
				return err
			}
		}
	} else {
		if len(t.PCheck) != len(t.PNext) {
			return fmt.Errorf("internal error: check and next table lengths differ: %d != %d", len(t.PCheck), len(t.PNext))
		}
		if err := writeInts(bw, t.PBase[1:]); err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d\n", len(t.PCheck))
		if err := writeInts(bw, t.PCheck); err != nil {
			return err
		}
		if err := writeInts(bw, t.PNext); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type tableReader struct {
	r   *bufio.Reader
	err error
}

func (tr *tableReader) Int() int {
	if tr.err != nil {
		return 0
	}
	var v int
	if _, err := fmt.Fscan(tr.r, &v); err != nil {
		tr.err = fmt.Errorf("truncated table file: %w", err)
		return 0
	}
	return v
}

// ints reads n values into a 1-based table of length n+1.
func (tr *tableReader) ints(n int) []int {
	vals := make([]int, n+1)
	for i := 1; i <= n; i++ {
		vals[i] = tr.Int()
	}
	return vals
}

// flat reads n values into a 0-based slice.
func (tr *tableReader) flat(n int) []int {
	vals := make([]int, n)
	for i := range vals {
		vals[i] = tr.Int()
	}
	return vals
}

func (tr *tableReader) line() string {
	if tr.err != nil {
		return ""
	}
	s, err := tr.r.ReadString('\n')
	if err != nil {
		tr.err = err
		return ""
	}
	return strings.TrimRight(s, "\n")
}

// Read parses a table file written by Write.
func Read(r io.Reader) (*Tables, error) {
	tr := &tableReader{r: bufio.NewReader(r)}
	t := &Tables{}

	t.Type = tr.Int()
	t.TNumber = tr.Int()
	t.NTokens = tr.Int()
	t.SNumber = tr.Int()
	t.NTNumber = tr.Int()
	t.GNumber = tr.Int()
	t.PNumber = tr.Int()
	t.Context = tr.Int()
	t.DefCost = tr.Int()
	t.Name = strings.TrimSpace(tr.line())
	if tr.err != nil {
		return nil, tr.err
	}

	if t.SNumber > 0 {
		s := &ScannerTables{States: t.SNumber}
		s.TokenIndex = tr.ints(t.SNumber + 1)
		s.TokenTable = tr.flat(s.TokenIndex[t.SNumber+1])
		s.Final = tr.ints(t.SNumber)
		s.Install = tr.ints(t.SNumber)
		s.Default = tr.ints(t.SNumber)
		s.Base = tr.ints(t.SNumber)
		count := tr.Int()
		s.Check = tr.flat(count)
		s.Next = tr.flat(count)
		t.Scanner = s
	}

	t.InsCost = tr.ints(t.TNumber)
	t.DelCost = tr.ints(t.TNumber)
	t.LHSymbol = tr.ints(t.GNumber)
	t.RHSLength = tr.ints(t.GNumber)
	t.Semantics = tr.ints(t.GNumber)
	t.Repair = tr.ints(t.PNumber)
	t.StringIndex = tr.flat(t.TNumber + t.NTNumber + 1)

	wrap := tr.Int()
	tr.line() // consume the rest of the wrap-width line
	size := t.StringIndex[t.TNumber+t.NTNumber]
	var blob strings.Builder
	for blob.Len() < size {
		line := tr.line()
		if tr.err != nil {
			return nil, tr.err
		}
		blob.WriteString(line)
	}
	if blob.Len() != size || wrap <= 0 {
		return nil, fmt.Errorf("malformed string table: have %d bytes, want %d", blob.Len(), size)
	}
	t.StringTable = blob.String()

	if t.Type == 0 {
		t.Actions = make([][]int, t.PNumber+1)
		for i := 1; i <= t.PNumber; i++ {
			row := make([]int, t.TNumber+t.NTNumber+1)
			count := tr.Int()
			for j := 0; j < count; j++ {
				token := tr.Int()
				action := tr.Int()
				if tr.err == nil && (token < 1 || token >= len(row)) {
					return nil, fmt.Errorf("action token %d out of range in state %d", token, i)
				}
				if tr.err == nil {
					row[token] = action
				}
			}
			t.Actions[i] = row
		}
	} else {
		t.PBase = tr.ints(t.PNumber)
		count := tr.Int()
		t.PCheck = tr.flat(count)
		t.PNext = tr.flat(count)
	}
	if tr.err != nil {
		return nil, tr.err
	}
	return t, nil
}
