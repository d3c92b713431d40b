package block

import (
	"context"

	"github.com/nats-radio/flowcore/pmt"
)

// Kernel is the user-supplied behavior of spec §3: the three lifecycle
// hooks plus per-message-port handlers. A block never calls these
// directly on another block; only its own Runtime does.
type Kernel interface {
	// Init runs once before the first Work call, after every stream
	// port has been bound.
	Init(ctx context.Context) error
	// Work performs one bounded unit of processing over the ports
	// passed in through the Runtime, reporting its disposition via io.
	Work(ctx context.Context, io *IO) error
	// Deinit runs once after the block is finished, win or lose.
	Deinit(ctx context.Context) error
	// HandleMessage dispatches one inbound Pmt received on the named
	// message port, returning the value a Call/Callback reply carries
	// back to the caller (spec §4.5: "reply with Pmt::Ok (or handler's
	// return)").
	HandleMessage(ctx context.Context, port string, msg pmt.Pmt) (pmt.Pmt, error)
}

// Base embeds into a concrete kernel to supply no-op defaults for the
// hooks a block doesn't care about, the way an embedded struct field
// supplies defaults for an interface with more methods than a simple
// kernel needs.
type Base struct{}

func (Base) Init(context.Context) error   { return nil }
func (Base) Deinit(context.Context) error { return nil }
func (Base) HandleMessage(context.Context, string, pmt.Pmt) (pmt.Pmt, error) {
	return pmt.Ok(), nil
}
