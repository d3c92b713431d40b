package pmt_test

import (
	"testing"

	"github.com/nats-radio/flowcore/pmt"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	require.True(t, pmt.U32(7).Equal(pmt.U32(7)))
	require.False(t, pmt.U32(7).Equal(pmt.U32(8)))
	require.False(t, pmt.U32(7).Equal(pmt.U64(7)))
	require.True(t, pmt.String("x").Equal(pmt.String("x")))
	require.True(t, pmt.Blob([]byte{1, 2, 3}).Equal(pmt.Blob([]byte{1, 2, 3})))
	require.False(t, pmt.Blob([]byte{1, 2, 3}).Equal(pmt.Blob([]byte{1, 2})))
	require.True(t, pmt.VecPmt([]pmt.Pmt{pmt.U32(1), pmt.String("a")}).
		Equal(pmt.VecPmt([]pmt.Pmt{pmt.U32(1), pmt.String("a")})))
}

func TestMapEqual(t *testing.T) {
	m1 := pmt.NewOrderedMap()
	m1.Set("min", pmt.F64(1.0))
	m1.Set("max", pmt.F64(2.0))

	m2 := pmt.NewOrderedMap()
	m2.Set("max", pmt.F64(2.0))
	m2.Set("min", pmt.F64(1.0))

	require.True(t, pmt.MapStrPmt(m1).Equal(pmt.MapStrPmt(m2)))
}

func TestJSONRoundTrip(t *testing.T) {
	cases := []pmt.Pmt{
		pmt.Null(),
		pmt.Ok(),
		pmt.Bool(true),
		pmt.U32(42),
		pmt.F64(3.5),
		pmt.String("hello"),
		pmt.Blob([]byte{0xde, 0xad, 0xbe, 0xef}),
		pmt.VecF32([]float32{1, 2, 3}),
		pmt.VecU64([]uint64{1, 2, 3}),
		pmt.VecPmt([]pmt.Pmt{pmt.U32(1), pmt.String("a")}),
	}
	for _, p := range cases {
		b, err := pmt.ToJSON(p)
		require.NoError(t, err)
		got, err := pmt.FromJSON(b)
		require.NoError(t, err)
		require.True(t, p.Equal(got), "round-trip mismatch for %v: got %v", p, got)
	}
}

// TestMapJSONRoundTrip is spec §8's S7: a MapStrPmt round-trips through
// to_json/from_json to an equal Pmt.
func TestMapJSONRoundTrip(t *testing.T) {
	m := pmt.NewOrderedMap()
	m.Set("min", pmt.F64(1.0))
	m.Set("max", pmt.F64(2.0))
	m.Set("step", pmt.F64(0.5))
	want := pmt.MapStrPmt(m)

	b, err := pmt.ToJSON(want)
	require.NoError(t, err)
	got, err := pmt.FromJSON(b)
	require.NoError(t, err)
	require.True(t, want.Equal(got))
}

func TestTextRoundTrip(t *testing.T) {
	cases := []pmt.Pmt{
		pmt.U32(42),
		pmt.F64(3.5),
		pmt.String("hello world"),
		pmt.VecU64([]uint64{1, 2, 3}),
	}
	for _, p := range cases {
		s := pmt.Format(p)
		got, err := pmt.Parse(s)
		require.NoError(t, err)
		require.True(t, p.Equal(got), "text round-trip mismatch for %q: got %v", s, got)
	}
}

func TestCoerce(t *testing.T) {
	u, ok := pmt.Coerce(pmt.F64(5.0), pmt.KindU32)
	require.True(t, ok)
	v, ok := u.AsU32()
	require.True(t, ok)
	require.Equal(t, uint32(5), v)

	_, ok = pmt.Coerce(pmt.String("x"), pmt.KindU32)
	require.False(t, ok)
}
