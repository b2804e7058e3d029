package spec

import (
	"encoding/json"
	"fmt"
	"io"
)

// GrammarDefinition is the output contract of the grammar front end: the
// lowered symbol table and production list, ready for table generation. The
// generate command loads it as JSON.
type GrammarDefinition struct {
	Name    string   `json:"name"`
	Options []string `json:"options,omitempty"`
	Context int      `json:"context"`
	DefCost int      `json:"default_cost"`

	Terminals    []TerminalDef   `json:"terminals"`
	NonTerminals []string        `json:"non_terminals"`
	Productions  []ProductionDef `json:"productions"`
	Start        string          `json:"start"`

	Scanner *ScannerTables `json:"scanner,omitempty"`
}

// Grammar option names accepted in GrammarDefinition.Options.
const (
	OptionErrorRepair   = "errorrepair"
	OptionDefaultReduce = "defaultreduce"
	OptionAmbiguous     = "ambiguous"
	OptionSplitStates   = "splitstates"
)

// TerminalDef declares one terminal symbol. Terminals are numbered 1..n in
// declaration order.
type TerminalDef struct {
	Name       string `json:"name"`
	Install    bool   `json:"install,omitempty"`
	Case       bool   `json:"case,omitempty"`
	Empty      bool   `json:"empty,omitempty"`
	Assoc      string `json:"assoc,omitempty"` // "left", "right", or "none"
	Precedence int    `json:"precedence"`      // -1 when undeclared
	InsertCost int    `json:"insert_cost"`
	DeleteCost int    `json:"delete_cost"`
	AliasOf    string `json:"alias_of,omitempty"`
}

// ProductionDef is one alternative of a nonterminal. RHS names refer to
// terminals or nonterminals; a name present in both namespaces resolves to
// the terminal.
type ProductionDef struct {
	LHS      string   `json:"lhs"`
	RHS      []string `json:"rhs"`
	Semantic int      `json:"semantic,omitempty"`
}

// ScannerTables is the scanner generator's output contract: final states,
// end-of-token bookkeeping, and the compressed transition tables. From state
// s on input class b the next state is Next[Base[s]+b] iff Check[Base[s]+b]
// equals s, otherwise the Default chain is followed. All state indexes are
// 1-based; index 0 means "no state".
type ScannerTables struct {
	States     int   `json:"states"`
	TokenIndex []int `json:"token_index"` // len States+2, 1-based
	TokenTable []int `json:"token_table"`
	Final      []int `json:"final"`   // len States+1, token number or 0
	Install    []int `json:"install"` // len States+1
	Default    []int `json:"default"` // len States+1
	Base       []int `json:"base"`    // len States+1
	Check      []int `json:"check"`
	Next       []int `json:"next"`
}

// ReadGrammarDefinition decodes a JSON grammar definition.
func ReadGrammarDefinition(r io.Reader) (*GrammarDefinition, error) {
	d := json.NewDecoder(r)
	d.DisallowUnknownFields()
	def := &GrammarDefinition{}
	if err := d.Decode(def); err != nil {
		return nil, fmt.Errorf("malformed grammar definition: %w", err)
	}
	if len(def.Terminals) == 0 {
		return nil, fmt.Errorf("grammar definition declares no terminals")
	}
	if def.Start == "" {
		return nil, fmt.Errorf("grammar definition declares no start symbol")
	}
	return def, nil
}

// WriteGrammarDefinition encodes a grammar definition as indented JSON.
func WriteGrammarDefinition(w io.Writer, def *GrammarDefinition) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(def)
}
