package builder

import "strings"

// builtins are the call names excluded from the dependency closure: the
// standard math library plus the small set of control and annotation
// helpers. All of them are provided by the backend preamble or the native
// compiler, never generated.
var builtins = map[string]bool{
	// math
	"acos": true, "acosh": true, "asin": true, "asinh": true,
	"atan": true, "atan2": true, "atanh": true, "cbrt": true,
	"ceil": true, "cos": true, "cosh": true, "erf": true, "erfc": true,
	"exp": true, "exp2": true, "expm1": true, "fabs": true, "floor": true,
	"fma": true, "fmax": true, "fmin": true, "fmod": true, "hypot": true,
	"log": true, "log10": true, "log1p": true, "log2": true, "pow": true,
	"round": true, "rsqrt": true, "sin": true, "sinh": true, "sqrt": true,
	"tan": true, "tanh": true, "trunc": true,
	"abs": true, "max": true, "min": true,
	// control and annotation helpers
	"declare": true, "local_barrier": true, "annotate": true,
	"printf": true,
}

// cKeywords appear in call position syntactically but are not calls.
var cKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"return": true, "sizeof": true, "do": true,
}

func isBuiltin(name string) bool { return builtins[name] }

// callSites scans body text for identifiers in call position and returns
// them in order of first appearance, deduplicated. Comments and string
// literals are ignored. This is a lexical pass, not a parse: it only needs
// to see "ident(" outside comments and strings, which the backend C
// dialect guarantees for every call.
func callSites(body string) []string {
	src := stripCommentsAndStrings(body)
	var (
		found []string
		seen  = map[string]bool{}
	)
	i := 0
	for i < len(src) {
		if !isIdentStart(src[i]) {
			i++
			continue
		}
		start := i
		for i < len(src) && isIdentPart(src[i]) {
			i++
		}
		name := src[start:i]
		// skip whitespace between identifier and a possible open paren
		j := i
		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if j < len(src) && src[j] == '(' && !cKeywords[name] && !seen[name] {
			seen[name] = true
			found = append(found, name)
		}
	}
	return found
}

// stripCommentsAndStrings blanks out //, /* */ comments and string or
// character literals, preserving length so scanning stays simple.
func stripCommentsAndStrings(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				sb.WriteByte(' ')
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
				sb.WriteByte(' ')
				i++
			}
			if i < len(src) {
				sb.WriteString("  ")
				i += 2
			}
		case c == '"' || c == '\'':
			quote := c
			sb.WriteByte(' ')
			i++
			for i < len(src) && src[i] != quote {
				if src[i] == '\\' && i+1 < len(src) {
					sb.WriteString("  ")
					i += 2
					continue
				}
				sb.WriteByte(' ')
				i++
			}
			if i < len(src) {
				sb.WriteByte(' ')
				i++
			}
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
