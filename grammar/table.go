package grammar

import (
	"strings"

	"github.com/rmongiovi/sdtgen/compressor"
	"github.com/rmongiovi/sdtgen/spec"
)

// Tables encodes the generated parser into its serialized form. With
// compress set the action matrix is packed into the base/check/next triple.
func (g *Grammar) Tables(compress bool) (*spec.Tables, error) {
	t := &spec.Tables{
		TNumber:  g.termCount(),
		NTokens:  g.ntokens,
		NTNumber: g.nontermCount(),
		GNumber:  len(g.prods) - 1,
		PNumber:  len(g.states) - 1,
		Context:  g.context,
		DefCost:  g.defcost,
		Name:     g.Name,
		Scanner:  g.scanner,
	}
	if g.scanner != nil {
		t.SNumber = g.scanner.States
	}

	t.InsCost = make([]int, t.TNumber+1)
	t.DelCost = make([]int, t.TNumber+1)
	for i := 1; i <= t.TNumber; i++ {
		t.InsCost[i] = g.terms[i].InsertCost
		t.DelCost[i] = g.terms[i].DeleteCost
	}

	t.LHSymbol = make([]int, t.GNumber+1)
	t.RHSLength = make([]int, t.GNumber+1)
	t.Semantics = make([]int, t.GNumber+1)
	for i := 1; i <= t.GNumber; i++ {
		t.LHSymbol[i] = g.prods[i].lhs.Token
		t.RHSLength[i] = g.prods[i].effectiveLength()
		t.Semantics[i] = g.prods[i].semantic
	}

	t.Repair = make([]int, t.PNumber+1)
	copy(t.Repair[1:], g.repair[1:])

	var blob strings.Builder
	t.StringIndex = make([]int, t.TNumber+t.NTNumber+1)
	for i := 1; i <= t.TNumber; i++ {
		t.StringIndex[i-1] = blob.Len()
		blob.WriteString(g.terms[i].Name)
	}
	for i := 1; i <= t.NTNumber; i++ {
		t.StringIndex[t.TNumber+i-1] = blob.Len()
		blob.WriteString(g.nonterms[i].Name)
	}
	t.StringIndex[t.TNumber+t.NTNumber] = blob.Len()
	t.StringTable = blob.String()

	if !compress {
		t.Actions = make([][]int, t.PNumber+1)
		for i := 1; i <= t.PNumber; i++ {
			t.Actions[i] = append([]int{}, g.action[i]...)
		}
		return t, nil
	}

	t.Type = 1
	matrix, err := compressor.NewActionMatrix(g.action, t.TNumber+t.NTNumber)
	if err != nil {
		return nil, err
	}
	packed := compressor.NewRowDisplacementTable()
	if err := packed.Compress(matrix); err != nil {
		return nil, err
	}
	t.PBase = packed.Base
	t.PCheck = packed.Check
	t.PNext = packed.Next
	return t, nil
}
