//go:build !debug

// Package rdebug provides invariant assertions compiled out of
// production builds, adapted from the teacher's cmn/debug package: the
// same //go:build debug / !debug split, scoped to this runtime's own
// invariants (bound ports at Init, slab produce/consume counts).
package rdebug

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func Assertf(_ bool, _ string, _ ...any) {}
func AssertNoErr(_ error)                {}
func AssertFunc(_ func() bool, _ ...any) {}
