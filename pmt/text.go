package pmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders the textual form described in spec §6: "null",
// "true"/"false", decimal integers, decimal reals with a literal '.',
// Go-quoted strings, and "[ ... ]" vectors. Variants with no textual form (Ok,
// InvalidValue, Finished, Blob, MapStrPmt, Any) format to their
// bracketed variant name so that Format is still total and useful for
// logging, even though only the scalar/vector grammar round-trips
// through Parse.
func Format(p Pmt) string {
	switch p.kind {
	case KindNull:
		return "null"
	case KindBool:
		if p.b {
			return "true"
		}
		return "false"
	case KindU32, KindU64, KindUsize:
		return strconv.FormatUint(p.n, 10)
	case KindF32, KindF64:
		return formatReal(p.f, 64)
	case KindString:
		return strconv.Quote(p.s)
	case KindVecF32:
		parts := make([]string, len(p.vf32))
		for i, v := range p.vf32 {
			parts[i] = formatReal(float64(v), 32)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindVecU64:
		parts := make([]string, len(p.vu64))
		for i, v := range p.vu64 {
			parts[i] = strconv.FormatUint(v, 10)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindVecPmt:
		parts := make([]string, len(p.vpmt))
		for i, v := range p.vpmt {
			parts[i] = Format(v)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<" + p.kind.String() + ">"
	}
}

// formatReal renders f in plain decimal, appending ".0" to a whole
// value so that Parse reads it back as a real rather than an integer.
func formatReal(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

// Parse implements the grammar named in spec §6. Decimal integers are
// auto-typed to the smallest matching unsigned variant (U32 if it
// fits, else U64); decimal reals containing '.' parse as F64; a
// double-quoted, Go-escaped string parses as String; "[ ...
// ]" parses a vector, producing VecU64/VecF32 when every element fits
// that uniform numeric kind, else VecPmt.
func Parse(s string) (Pmt, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "null":
		return Null(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	if strings.HasPrefix(s, "[") {
		return parseVec(s)
	}
	if strings.HasPrefix(s, "\"") {
		u, err := strconv.Unquote(s)
		if err != nil {
			return Pmt{}, fmt.Errorf("pmt: cannot parse %q: %w", s, err)
		}
		return String(u), nil
	}
	if v, ok := parseScalarNumber(s); ok {
		return v, nil
	}
	return Pmt{}, fmt.Errorf("pmt: cannot parse %q", s)
}

func parseScalarNumber(s string) (Pmt, bool) {
	if s == "" {
		return Pmt{}, false
	}
	if strings.ContainsAny(s, ".eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return F64(f), true
		}
		return Pmt{}, false
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		if u <= 0xFFFFFFFF {
			return U32(uint32(u)), true
		}
		return U64(u), true
	}
	return Pmt{}, false
}

func parseVec(s string) (Pmt, error) {
	if !strings.HasSuffix(s, "]") {
		return Pmt{}, fmt.Errorf("pmt: unterminated vector %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return VecPmt(nil), nil
	}
	elems := splitTop(inner)
	vals := make([]Pmt, 0, len(elems))
	for _, e := range elems {
		v, err := Parse(strings.TrimSpace(e))
		if err != nil {
			return Pmt{}, err
		}
		vals = append(vals, v)
	}
	allU64, allF32 := true, true
	for _, v := range vals {
		if v.kind != KindU32 && v.kind != KindU64 {
			allU64 = false
		}
		if v.kind != KindF32 && v.kind != KindF64 {
			allF32 = false
		}
	}
	switch {
	case allU64:
		out := make([]uint64, len(vals))
		for i, v := range vals {
			out[i], _ = v.AsU64()
		}
		return VecU64(out), nil
	case allF32:
		out := make([]float32, len(vals))
		for i, v := range vals {
			out[i], _ = v.AsF32()
		}
		return VecF32(out), nil
	default:
		return VecPmt(vals), nil
	}
}

// splitTop splits a comma-separated list at top level, ignoring commas
// nested inside brackets.
func splitTop(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
