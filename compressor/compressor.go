// Package compressor packs the sparse parser action matrix into the
// base/check/next triple decoded by the runtime driver.
package compressor

import (
	"fmt"
)

// ActionMatrix is the uncompressed action table: rows are parser states
// 1..Rows, columns are token numbers 1..Cols. Row 0 and column 0 are unused.
type ActionMatrix struct {
	entries [][]int
	rows    int
	cols    int
}

func NewActionMatrix(entries [][]int, cols int) (*ActionMatrix, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("action matrix is empty")
	}
	if cols <= 0 {
		return nil, fmt.Errorf("column count must be >=1")
	}
	for i := 1; i < len(entries); i++ {
		if len(entries[i]) != cols+1 {
			return nil, fmt.Errorf("state %v row length is %v, want %v", i, len(entries[i]), cols+1)
		}
	}
	return &ActionMatrix{
		entries: entries,
		rows:    len(entries) - 1,
		cols:    cols,
	}, nil
}

// RowDisplacementTable holds rows overlapped into a single vector. An entry
// belongs to a state iff the check value at its displaced index names that
// state; 0 marks an empty slot, so action value 0 (error) needs no storage.
type RowDisplacementTable struct {
	Base  []int // len Rows+1
	Check []int
	Next  []int
	Rows  int
	Cols  int
}

func NewRowDisplacementTable() *RowDisplacementTable {
	return &RowDisplacementTable{}
}

// Lookup returns the action for a state and token, or 0.
func (tab *RowDisplacementTable) Lookup(state, token int) (int, error) {
	if state < 1 || state > tab.Rows || token < 1 || token > tab.Cols {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", state, token)
	}
	i := tab.Base[state] + token
	if i < 0 || i >= len(tab.Check) || tab.Check[i] != state {
		return 0, nil
	}
	return tab.Next[i], nil
}

// Compress inserts the rows densest-first, fitting each row's nonzero
// entries over the holes left by earlier rows.
func (tab *RowDisplacementTable) Compress(orig *ActionMatrix) error {
	base := make([]int, orig.rows+1)
	check := make([]int, orig.cols+1)
	next := make([]int, orig.cols+1)
	used := 0

	// Densest rows first keeps the early displacement search cheap and the
	// final table short.
	order := make([]int, 0, orig.rows)
	counts := make([]int, orig.rows+1)
	for s := 1; s <= orig.rows; s++ {
		for t := 1; t <= orig.cols; t++ {
			if orig.entries[s][t] != 0 {
				counts[s]++
			}
		}
		order = append(order, s)
	}
	for i := 1; i < len(order); i++ {
		save := order[i]
		j := i - 1
		for ; j >= 0 && counts[order[j]] < counts[save]; j-- {
			order[j+1] = order[j]
		}
		order[j+1] = save
	}

	for _, s := range order {
		// Guarantee room for a full row beyond the current end.
		for used+orig.cols+1 > len(check) {
			grown := make([]int, len(check)*2)
			copy(grown, check)
			check = grown
			grown = make([]int, len(next)*2)
			copy(grown, next)
			next = grown
		}

		disp := 0
		for ; disp < used; disp++ {
			fits := true
			for t := 1; t <= orig.cols; t++ {
				if orig.entries[s][t] != 0 && check[disp+t] != 0 {
					fits = false
					break
				}
			}
			if fits {
				break
			}
		}
		base[s] = disp

		for t := 1; t <= orig.cols; t++ {
			if orig.entries[s][t] != 0 {
				check[disp+t] = s
				next[disp+t] = orig.entries[s][t]
			}
		}
		if used < disp+orig.cols+1 {
			used = disp + orig.cols + 1
		}
	}

	if len(check) != len(next) {
		return fmt.Errorf("internal error: check and next table lengths differ: %d != %d", len(check), len(next))
	}

	tab.Base = base
	tab.Check = check[:used]
	tab.Next = next[:used]
	tab.Rows = orig.rows
	tab.Cols = orig.cols
	return nil
}
