package spec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables(typ int) *Tables {
	t := &Tables{
		Type:     typ,
		TNumber:  2,
		NTokens:  2,
		NTNumber: 2,
		GNumber:  2,
		PNumber:  3,
		Context:  3,
		DefCost:  5,
		Name:     "list",

		InsCost:   []int{0, 1, 49999},
		DelCost:   []int{0, 1, 99999},
		LHSymbol:  []int{0, 3, 4},
		RHSLength: []int{0, 2, 1},
		Semantics: []int{0, 0, 1},
		Repair:    []int{0, 1, -2, 1},

		StringIndex: []int{0, 1, 6, 12, 13},
		StringTable: "x<eof><Goal>L",
	}
	if typ == 0 {
		t.Actions = [][]int{
			nil,
			{0, 10002, 0, -10000, 10003},
			{0, 0, -2, 0, 0},
			{0, 10002, -1, 0, 0},
		}
	} else {
		t.PBase = []int{0, 0, 4, 8}
		t.PCheck = []int{0, 1, 0, 1, 1, 0, 2, 0, 0, 3, 3}
		t.PNext = []int{0, 10002, 0, -10000, 10003, 0, -2, 0, 0, 10002, -1}
	}
	return t
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, typ := range []int{0, 1} {
		var buf bytes.Buffer
		orig := testTables(typ)
		require.NoError(t, orig.Write(&buf))

		got, err := Read(&buf)
		require.NoError(t, err)

		assert.Equal(t, orig.Type, got.Type)
		assert.Equal(t, orig.TNumber, got.TNumber)
		assert.Equal(t, orig.NTNumber, got.NTNumber)
		assert.Equal(t, orig.GNumber, got.GNumber)
		assert.Equal(t, orig.PNumber, got.PNumber)
		assert.Equal(t, orig.Context, got.Context)
		assert.Equal(t, orig.DefCost, got.DefCost)
		assert.Equal(t, orig.Name, got.Name)
		assert.Equal(t, orig.InsCost, got.InsCost)
		assert.Equal(t, orig.DelCost, got.DelCost)
		assert.Equal(t, orig.LHSymbol, got.LHSymbol)
		assert.Equal(t, orig.RHSLength, got.RHSLength)
		assert.Equal(t, orig.Semantics, got.Semantics)
		assert.Equal(t, orig.Repair, got.Repair)
		assert.Equal(t, orig.StringIndex, got.StringIndex)
		assert.Equal(t, orig.StringTable, got.StringTable)

		// Every action cell survives the round trip.
		for state := 1; state <= orig.PNumber; state++ {
			for token := 1; token <= orig.TNumber+orig.NTNumber; token++ {
				assert.Equal(t, orig.Action(state, token), got.Action(state, token),
					"state %v token %v", state, token)
			}
		}
	}
}

func TestWriteDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, testTables(1).Write(&first))
	require.NoError(t, testTables(1).Write(&second))
	assert.Equal(t, first.String(), second.String())
}

func TestWrapColumn(t *testing.T) {
	wide := testTables(0)
	wide.TNumber = 60
	wide.NTokens = 60
	wide.InsCost = make([]int, 61)
	wide.DelCost = make([]int, 61)
	for i := 1; i <= 60; i++ {
		wide.InsCost[i] = 100 + i
		wide.DelCost[i] = 100 + i
	}
	// Keep the rest of the tables consistent with two extra nonterminals.
	wide.StringIndex = make([]int, 63)
	var blob strings.Builder
	for i := 0; i < 62; i++ {
		wide.StringIndex[i] = blob.Len()
		blob.WriteString("t")
	}
	wide.StringIndex[62] = blob.Len()
	wide.StringTable = blob.String()
	wide.Actions = [][]int{nil, make([]int, 63), make([]int, 63), make([]int, 63)}

	var buf bytes.Buffer
	require.NoError(t, wide.Write(&buf))
	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len(line), MaxLine, "line %q overflows the wrap column", line)
	}

	got, err := Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, wide.InsCost, got.InsCost)
}

func TestTokenName(t *testing.T) {
	tab := testTables(0)
	assert.Equal(t, "x", tab.TokenName(1))
	assert.Equal(t, "<eof>", tab.TokenName(2))
	assert.Equal(t, "<Goal>", tab.TokenName(3))
	assert.Equal(t, "L", tab.TokenName(4))
}
