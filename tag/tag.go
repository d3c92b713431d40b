// Package tag implements the item tag of spec §3: a pair of
// (index, payload) that rides alongside stream items and shifts with
// them across consume/produce commits and buffer boundaries.
package tag

import (
	"sort"

	"github.com/nats-radio/flowcore/pmt"
)

type PayloadKind uint8

const (
	KindID PayloadKind = iota
	KindNamedUsize
	KindNamedF32
	KindNamedAny
)

// Payload is the closed variant set named in spec §3:
// Id(u64) | NamedUsize(name, value) | NamedF32(name, value) | NamedAny(name, Pmt).
type Payload struct {
	Kind  PayloadKind
	ID    uint64
	Name  string
	Usize uint64
	F32   float32
	Any   pmt.Pmt
}

func ID(id uint64) Payload { return Payload{Kind: KindID, ID: id} }

func NamedUsize(name string, v uint64) Payload {
	return Payload{Kind: KindNamedUsize, Name: name, Usize: v}
}

func NamedF32(name string, v float32) Payload {
	return Payload{Kind: KindNamedF32, Name: name, F32: v}
}

func NamedAny(name string, v pmt.Pmt) Payload {
	return Payload{Kind: KindNamedAny, Name: name, Any: v}
}

// Tag is a payload anchored at an item index counted relative to the
// current window (spec §3: "index: non-negative integer counted in
// items relative to the current window").
type Tag struct {
	Index   int64
	Payload Payload
}

// List is a sorted-by-index list of tags attached to a buffer's
// currently valid item window. It is not safe for concurrent use;
// callers serialize access (the ring keeps one list shared by its
// writer and readers and guards it with the ring's mutex).
type List struct {
	tags []Tag
}

func NewList() *List { return &List{} }

// Add inserts a tag, keeping the list sorted by Index (tags are
// typically added in increasing index order during a single produce
// call, so this is usually an append; sort.Search + insert handles
// the general case without requiring callers to pre-sort).
func (l *List) Add(t Tag) {
	i := sort.Search(len(l.tags), func(i int) bool { return l.tags[i].Index >= t.Index })
	l.tags = append(l.tags, Tag{})
	copy(l.tags[i+1:], l.tags[i:])
	l.tags[i] = t
}

// InWindow returns the tags whose Index lies in [0, n).
func (l *List) InWindow(n int64) []Tag {
	end := sort.Search(len(l.tags), func(i int) bool { return l.tags[i].Index >= n })
	out := make([]Tag, end)
	copy(out, l.tags[:end])
	return out
}

// Window returns the tags with absolute Index in [lo, hi), rebased so
// the returned Tag.Index is relative to lo. Used by buffers (like the
// ring) that keep one tag list indexed by absolute stream position
// rather than resetting indices to 0 on every commit.
func (l *List) Window(lo, hi int64) []Tag {
	i := sort.Search(len(l.tags), func(i int) bool { return l.tags[i].Index >= lo })
	j := sort.Search(len(l.tags), func(i int) bool { return l.tags[i].Index >= hi })
	out := make([]Tag, 0, j-i)
	for _, t := range l.tags[i:j] {
		out = append(out, Tag{Index: t.Index - lo, Payload: t.Payload})
	}
	return out
}

// PruneBefore drops tags with absolute Index < n in place, without
// rebasing the remainder. Safe to call once no future reader cursor
// can still observe the dropped range.
func (l *List) PruneBefore(n int64) {
	i := sort.Search(len(l.tags), func(i int) bool { return l.tags[i].Index >= n })
	l.tags = l.tags[i:]
}

// AddAbsolute adds a tag at an already-absolute index; unlike Add it
// assumes the caller has already offset Index into the buffer's
// global stream position.
func (l *List) AddAbsolute(index int64, p Payload) { l.Add(Tag{Index: index, Payload: p}) }

// ShiftConsume drops tags at index < n and shifts the remainder left
// by n, modelling a reader's consume(n) commit: "when samples are
// consumed ... tag indices shift accordingly" (spec §3).
func (l *List) ShiftConsume(n int64) {
	i := sort.Search(len(l.tags), func(i int) bool { return l.tags[i].Index >= n })
	rest := l.tags[i:]
	shifted := make([]Tag, len(rest))
	for j, t := range rest {
		shifted[j] = Tag{Index: t.Index - n, Payload: t.Payload}
	}
	l.tags = shifted
}

// ShiftProduce offsets newly attached tags by the writer's current
// produced-so-far count before merging them into the list, so indices
// stay relative to the buffer's absolute item stream.
func (l *List) ShiftProduce(base int64, fresh []Tag) {
	for _, t := range fresh {
		l.Add(Tag{Index: t.Index + base, Payload: t.Payload})
	}
}

func (l *List) Len() int { return len(l.tags) }

func (l *List) All() []Tag {
	out := make([]Tag, len(l.tags))
	copy(out, l.tags)
	return out
}

// Clone returns an independent copy of the list. The ring does not
// clone per reader; its readers share one list through Window.
func (l *List) Clone() *List {
	c := &List{tags: make([]Tag, len(l.tags))}
	copy(c.tags, l.tags)
	return c
}
