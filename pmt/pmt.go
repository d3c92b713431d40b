// Package pmt implements the polymorphic message term (Pmt), the sole
// currency of the message plane (spec §3). Pmt is a closed sum type;
// this implementation represents it as a single struct tagged by Kind
// rather than an interface, so that Equal and the JSON/text codecs can
// be written as plain switches, the way the teacher represents its own
// small closed unions (e.g. cmn/cos error kinds) as concrete types
// rather than reaching for interface-based polymorphism where a fixed
// variant set is known up front.
package pmt

import "reflect"

type Kind uint8

const (
	KindNull Kind = iota
	KindOk
	KindInvalidValue
	KindFinished
	KindBool
	KindU32
	KindU64
	KindUsize
	KindF32
	KindF64
	KindString
	KindBlob
	KindVecF32
	KindVecU64
	KindVecPmt
	KindMapStrPmt
	KindAny
)

var kindNames = [...]string{
	KindNull: "Null", KindOk: "Ok", KindInvalidValue: "InvalidValue",
	KindFinished: "Finished", KindBool: "Bool", KindU32: "U32", KindU64: "U64",
	KindUsize: "Usize", KindF32: "F32", KindF64: "F64", KindString: "String",
	KindBlob: "Blob", KindVecF32: "VecF32", KindVecU64: "VecU64",
	KindVecPmt: "VecPmt", KindMapStrPmt: "MapStrPmt", KindAny: "Any",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Pmt is an immutable-by-convention value; callers must not mutate the
// slices/map returned by its accessors.
type Pmt struct {
	kind Kind
	b    bool
	n    uint64  // backing bits for U32/U64/Usize and Blob/vec lengths are irrelevant here
	f    float64 // backing bits for F32/F64 (F32 stored widened, see coerce.go for rounding)
	s    string
	blob []byte
	vf32 []float32
	vu64 []uint64
	vpmt []Pmt
	m    *OrderedMap
	any  anyBox
}

type anyBox struct {
	typ reflect.Type
	val any
}

func (p Pmt) Kind() Kind { return p.kind }

func Null() Pmt          { return Pmt{kind: KindNull} }
func Ok() Pmt             { return Pmt{kind: KindOk} }
func InvalidValue() Pmt   { return Pmt{kind: KindInvalidValue} }
func Finished() Pmt       { return Pmt{kind: KindFinished} }
func Bool(v bool) Pmt     { return Pmt{kind: KindBool, b: v} }
func U32(v uint32) Pmt    { return Pmt{kind: KindU32, n: uint64(v)} }
func U64(v uint64) Pmt    { return Pmt{kind: KindU64, n: v} }
func Usize(v uint64) Pmt  { return Pmt{kind: KindUsize, n: v} }
func F32(v float32) Pmt   { return Pmt{kind: KindF32, f: float64(v)} }
func F64(v float64) Pmt   { return Pmt{kind: KindF64, f: v} }
func String(v string) Pmt { return Pmt{kind: KindString, s: v} }

func Blob(v []byte) Pmt {
	cp := make([]byte, len(v))
	copy(cp, v)
	return Pmt{kind: KindBlob, blob: cp}
}

func VecF32(v []float32) Pmt {
	cp := make([]float32, len(v))
	copy(cp, v)
	return Pmt{kind: KindVecF32, vf32: cp}
}

func VecU64(v []uint64) Pmt {
	cp := make([]uint64, len(v))
	copy(cp, v)
	return Pmt{kind: KindVecU64, vu64: cp}
}

func VecPmt(v []Pmt) Pmt {
	cp := make([]Pmt, len(v))
	copy(cp, v)
	return Pmt{kind: KindVecPmt, vpmt: cp}
}

func MapStrPmt(m *OrderedMap) Pmt {
	if m == nil {
		m = NewOrderedMap()
	}
	return Pmt{kind: KindMapStrPmt, m: m}
}

// Any boxes an opaque value, tagged by its runtime type for equality
// and introspection. Any never round-trips through JSON or text (spec
// §3: "opaque boxed value identified by a runtime type tag").
func Any(v any) Pmt {
	return Pmt{kind: KindAny, any: anyBox{typ: reflect.TypeOf(v), val: v}}
}

func (p Pmt) AsBool() (bool, bool)       { return p.b, p.kind == KindBool }
func (p Pmt) AsString() (string, bool)   { return p.s, p.kind == KindString }
func (p Pmt) AsBlob() ([]byte, bool)     { return p.blob, p.kind == KindBlob }
func (p Pmt) AsVecF32() ([]float32, bool) { return p.vf32, p.kind == KindVecF32 }
func (p Pmt) AsVecU64() ([]uint64, bool)  { return p.vu64, p.kind == KindVecU64 }
func (p Pmt) AsVecPmt() ([]Pmt, bool)     { return p.vpmt, p.kind == KindVecPmt }
func (p Pmt) AsMap() (*OrderedMap, bool)  { return p.m, p.kind == KindMapStrPmt }
func (p Pmt) AsAny() (any, bool)          { return p.any.val, p.kind == KindAny }

// Equal implements total equality where defined by spec §3. Any
// compares by runtime type tag plus reflect.DeepEqual of the boxed
// value; two Any holding incomparable values are never equal.
func (p Pmt) Equal(o Pmt) bool {
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case KindNull, KindOk, KindInvalidValue, KindFinished:
		return true
	case KindBool:
		return p.b == o.b
	case KindU32, KindU64, KindUsize:
		return p.n == o.n
	case KindF32, KindF64:
		return p.f == o.f
	case KindString:
		return p.s == o.s
	case KindBlob:
		return bytesEqual(p.blob, o.blob)
	case KindVecF32:
		return vecF32Equal(p.vf32, o.vf32)
	case KindVecU64:
		return vecU64Equal(p.vu64, o.vu64)
	case KindVecPmt:
		if len(p.vpmt) != len(o.vpmt) {
			return false
		}
		for i := range p.vpmt {
			if !p.vpmt[i].Equal(o.vpmt[i]) {
				return false
			}
		}
		return true
	case KindMapStrPmt:
		return p.m.Equal(o.m)
	case KindAny:
		return p.any.typ == o.any.typ && reflect.DeepEqual(p.any.val, o.any.val)
	}
	return false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func vecF32Equal(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func vecU64Equal(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
