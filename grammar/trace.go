package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'sdtgen.lalr'.
func tracer() tracing.Trace {
	return tracing.Select("sdtgen.lalr")
}
