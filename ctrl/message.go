// Package ctrl implements the control plane of spec §4.5: the
// per-block actor loop and the flowgraph actor that multiplexes calls
// to it, plus a small housekeeping ticker.
package ctrl

import "github.com/nats-radio/flowcore/pmt"

// Kind enumerates the control message kinds of spec §4.5's block
// inbox.
type Kind int

const (
	Call Kind = iota
	Callback
	Describe
	Terminate
	StreamInputDone
	StreamOutputDone
)

// Reply carries the result of a Call/Callback/Describe back to the
// caller; Value is a pmt.Pmt for Call/Callback and an
// introspect.BlockDescription for Describe, left as `any` here so this
// package doesn't need to import introspect for one field's type.
type Reply struct {
	Value any
	Err   error
}

// Message is one entry on a block's inbox channel.
type Message struct {
	Kind  Kind
	Port  string
	Pmt   pmt.Pmt
	Reply chan Reply
}
