// Package spec defines the two data contracts at the edges of the generator:
// the grammar definition produced by the front end, and the serialized table
// file consumed by the runtime driver.
package spec

const (
	// MaxLine is the wrap column of the generated table file.
	MaxLine = 80

	// Shift actions are encoded as ShiftOffset plus the target state, and
	// shift-reduce actions directly as the production number, which must
	// therefore stay at or below ShiftOffset. Reduce actions are the
	// negative production number and must stay above AcceptOffset, which
	// encodes the accept action itself. Error entries are 0.
	ShiftOffset  = 10000
	AcceptOffset = -10000

	// MaxCost bounds every error repair cost computation.
	MaxCost = 99999

	// EndFile is the input class the scanner sees at end of file.
	EndFile = 256

	// MapCount is the number of scanner input classes: bytes plus EndFile.
	MapCount = 257
)

// SentinelInsertCost and SentinelDeleteCost are the repair weights of the
// synthetic end-of-input terminal. Deleting end of input is effectively
// impossible; inserting it is possible but close to a last resort.
const (
	SentinelInsertCost = (MaxCost+1)/2 - 1
	SentinelDeleteCost = MaxCost
)

// Parsing actions decoded from table entries.
const (
	ActionError = iota
	ActionShift
	ActionShiftReduce
	ActionReduce
	ActionAccept
)
