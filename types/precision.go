package types

import "regexp"

// Precision selects the floating point width used for generated code and
// argument marshalling. The zero value is Double. A Precision value must
// stay fixed for the duration of a generate-then-compile pass and for the
// lifetime of any type info derived from it; artifacts compiled under one
// precision keep it even if later passes use another.
type Precision int

const (
	// Double keeps 64-bit floating point everywhere.
	Double Precision = iota
	// Single rewrites every 64-bit float type to its 32-bit equivalent.
	Single
)

func (p Precision) String() string {
	if p == Single {
		return "single"
	}
	return "double"
}

// Word-boundary match only: "double3", "double_buf" and identifiers that
// merely contain the word must not be rewritten.
var doubleWord = regexp.MustCompile(`\bdouble\b`)

// RewriteSource replaces every standalone "double" keyword with "float"
// when single precision is selected, and returns the text unchanged
// otherwise.
func (p Precision) RewriteSource(code string) string {
	if p == Double {
		return code
	}
	return doubleWord.ReplaceAllString(code, "float")
}

// Adjust returns kt with its declared and base types rewritten for the
// selected precision.
func (p Precision) Adjust(kt KnownType) KnownType {
	if p == Double {
		return kt
	}
	kt.CType = p.RewriteSource(kt.CType)
	kt.Base = p.RewriteSource(kt.Base)
	return kt
}
