package pmt

import "math"

// AsU32 returns the value of a U32/U64/Usize Pmt as uint32, coercing
// U64/Usize down when the value fits losslessly, per spec §3's
// "U32↔U64↔Usize↔F32↔F64 where lossless or explicitly allowed".
func (p Pmt) AsU32() (uint32, bool) {
	switch p.kind {
	case KindU32:
		return uint32(p.n), true
	case KindU64, KindUsize:
		if p.n <= math.MaxUint32 {
			return uint32(p.n), true
		}
	}
	return 0, false
}

func (p Pmt) AsU64() (uint64, bool) {
	switch p.kind {
	case KindU32, KindU64, KindUsize:
		return p.n, true
	}
	return 0, false
}

func (p Pmt) AsUsize() (uint64, bool) {
	switch p.kind {
	case KindU32, KindU64, KindUsize:
		return p.n, true
	}
	return 0, false
}

// AsF32 coerces U32/U64/Usize/F64 to float32. Integer coercion is
// allowed whenever the value round-trips exactly through float32;
// F64→F32 is allowed with standard narrowing (explicitly allowed
// per spec §3, not "lossless").
func (p Pmt) AsF32() (float32, bool) {
	switch p.kind {
	case KindF32:
		return float32(p.f), true
	case KindF64:
		return float32(p.f), true
	case KindU32, KindU64, KindUsize:
		f := float32(p.n)
		if uint64(f) == p.n {
			return f, true
		}
	}
	return 0, false
}

func (p Pmt) AsF64() (float64, bool) {
	switch p.kind {
	case KindF32, KindF64:
		return p.f, true
	case KindU32, KindU64, KindUsize:
		f := float64(p.n)
		if uint64(f) == p.n {
			return f, true
		}
	}
	return 0, false
}

// Coerce attempts to reinterpret p as the requested Kind using the
// accessor table above; ok is false when the conversion is not
// defined or not lossless. An F32/F64 coerces to U32/U64/Usize when it
// holds a non-negative whole number that fits the target kind.
func Coerce(p Pmt, to Kind) (Pmt, bool) {
	if (p.kind == KindF32 || p.kind == KindF64) && (to == KindU32 || to == KindU64 || to == KindUsize) {
		if p.f < 0 || p.f != math.Trunc(p.f) || p.f >= 1<<64 {
			return Pmt{}, false
		}
		p = U64(uint64(p.f))
	}
	switch to {
	case KindU32:
		if v, ok := p.AsU32(); ok {
			return U32(v), true
		}
	case KindU64:
		if v, ok := p.AsU64(); ok {
			return U64(v), true
		}
	case KindUsize:
		if v, ok := p.AsUsize(); ok {
			return Usize(v), true
		}
	case KindF32:
		if v, ok := p.AsF32(); ok {
			return F32(v), true
		}
	case KindF64:
		if v, ok := p.AsF64(); ok {
			return F64(v), true
		}
	}
	return Pmt{}, false
}
