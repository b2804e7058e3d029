package compressor

import (
	"fmt"
	"testing"
)

func TestRowDisplacementTable(t *testing.T) {
	x := 0 // an empty value

	tests := []struct {
		entries [][]int
		cols    int
	}{
		{
			entries: [][]int{
				nil,
				{x, 1, 1, 1, 1, 1},
				{x, 1, 1, 1, 1, 1},
				{x, 1, 1, 1, 1, 1},
			},
			cols: 5,
		},
		{
			entries: [][]int{
				nil,
				{x, x, x, x, x, x},
				{x, x, x, x, x, x},
			},
			cols: 5,
		},
		{
			entries: [][]int{
				nil,
				{x, 1, x, x, x, 2},
				{x, x, 3, x, x, x},
				{x, x, x, x, 4, x},
			},
			cols: 5,
		},
		{
			entries: [][]int{
				nil,
				{x, 10001, -2, x, 3, -10000},
				{x, x, -2, 10003, x, x},
			},
			cols: 5,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			// Row 0 and column 0 are reserved; row 0 gets a zero
			// placeholder, since only rows from 1 are validated and packed.
			tt.entries[0] = make([]int, tt.cols+1)

			orig, err := NewActionMatrix(tt.entries, tt.cols)
			if err != nil {
				t.Fatal(err)
			}
			tab := NewRowDisplacementTable()
			if err := tab.Compress(orig); err != nil {
				t.Fatal(err)
			}
			for s := 1; s < len(tt.entries); s++ {
				for c := 1; c <= tt.cols; c++ {
					v, err := tab.Lookup(s, c)
					if err != nil {
						t.Fatal(err)
					}
					if v != tt.entries[s][c] {
						t.Errorf("entry (%v, %v) is %v, want %v", s, c, v, tt.entries[s][c])
					}
				}
			}
		})
	}
}

func TestRowDisplacementTableRanges(t *testing.T) {
	entries := [][]int{
		nil,
		{0, 1, 0},
	}
	entries[0] = make([]int, 3)
	orig, err := NewActionMatrix(entries, 2)
	if err != nil {
		t.Fatal(err)
	}
	tab := NewRowDisplacementTable()
	if err := tab.Compress(orig); err != nil {
		t.Fatal(err)
	}
	for _, probe := range [][2]int{{0, 1}, {2, 1}, {1, 0}, {1, 3}} {
		if _, err := tab.Lookup(probe[0], probe[1]); err == nil {
			t.Errorf("lookup (%v, %v) out of range must fail", probe[0], probe[1])
		}
	}
}
