package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmongiovi/sdtgen/spec"
)

// assignDef is the repair scenario grammar: A -> id "=" id, with a cheap
// "=" so insertion and deletion repairs both cost 1.
func assignDef() *spec.GrammarDefinition {
	return &spec.GrammarDefinition{
		Name:    "assign",
		Options: []string{"errorrepair"},
		Context: 3,
		DefCost: 5,
		Terminals: []spec.TerminalDef{
			term("id", 2, 3),
			term("=", 1, 1),
		},
		NonTerminals: []string{"A"},
		Productions: []spec.ProductionDef{
			prod("A", 1, "id", "=", "id"),
		},
		Start: "A",
	}
}

func TestLeastCostInsertion(t *testing.T) {
	// a b is repaired by inserting "=" between the identifiers at cost 1;
	// the parse then completes normally.
	tables := buildTables(t, assignDef(), false)
	semantics, out, err := runParser(t, tables, "a b\n")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, semantics)
	assert.Contains(t, out, "Inserted: =")
	assert.NotContains(t, out, "Deleted:")
}

func TestLeastCostDeletion(t *testing.T) {
	// a = = b is repaired by deleting the second "=".
	tables := buildTables(t, assignDef(), false)
	semantics, out, err := runParser(t, tables, "a = = b\n")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, semantics)
	assert.Contains(t, out, "Deleted: =")
	assert.NotContains(t, out, "Inserted:")
	assert.NotContains(t, out, "Replaced:")
}

func TestTrailingTokenDeleted(t *testing.T) {
	tables := buildTables(t, assignDef(), false)
	semantics, out, err := runParser(t, tables, "a = b =\n")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, semantics)
	assert.Contains(t, out, "Deleted: =")
}

func TestContinuationPrefixInsertion(t *testing.T) {
	// After "b =" end of file first becomes admissible behind the one-token
	// continuation prefix id, so exactly that prefix is inserted before it.
	tables := buildTables(t, assignDef(), false)
	semantics, out, err := runParser(t, tables, "b =\n")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, semantics)
	assert.Contains(t, out, "Inserted: id\n")
}

func TestRepairIdempotentOnValidInput(t *testing.T) {
	// A valid sentence must produce the same reduce sequence with and
	// without repair tables, and no diagnostics.
	plain := buildTables(t, listDef(), false)
	repairing := buildTables(t, listDef("errorrepair"), false)

	s1, out1, err := runParser(t, plain, "x x x\n")
	require.NoError(t, err)
	s2, out2, err := runParser(t, repairing, "x x x\n")
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Empty(t, out1)
	assert.Empty(t, out2)
}

func TestFatalWithoutContinuation(t *testing.T) {
	// Tables generated without error repair have no continuations: the
	// first syntax error is fatal, flushes the line, and surfaces as
	// ErrSyntax for the caller's nonzero exit.
	tables := buildTables(t, listDef(), false)
	_, out, err := runParser(t, tables, "")
	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, out, "Syntax error")
	assert.Contains(t, out, "<EOF>:")
}

func TestDiagnosticOrdering(t *testing.T) {
	// A diagnostic flushes beneath its line: the caret marking the error
	// position is written before the message text.
	tables := buildTables(t, assignDef(), false)

	// "a b" is repaired by one insertion in front of b.
	semantics, out, err := runParser(t, tables, "a b\n")
	require.NoError(t, err)
	require.Equal(t, []int{1}, semantics)
	insertedAt := strings.Index(out, "Inserted")
	caretAt := strings.Index(out, "^")
	require.GreaterOrEqual(t, insertedAt, 0)
	require.GreaterOrEqual(t, caretAt, 0)
	assert.Less(t, caretAt, insertedAt, "the caret precedes its message")
}

func TestSemanticErrorRecording(t *testing.T) {
	tables := buildTables(t, listDef(), false)

	var out strings.Builder
	p := New(tables, strings.NewReader("x x\n"), WithOutput(&out),
		WithAction(func(sem int) {}))
	p.lex = wordLexer(p, tables)
	p.action = func(sem int) {
		if sem == 2 {
			p.RecordError("list ends here")
		}
	}
	require.NoError(t, p.Parse())
	assert.Contains(t, out.String(), "list ends here")
}
