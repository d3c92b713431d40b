package port

import (
	"context"

	"github.com/nats-radio/flowcore/pmt"
)

// MessageIn is a named, bounded, strictly-FIFO channel of Pmt (spec
// §3's message port). A block's Runtime reads it and dispatches to
// the matching kernel handler.
type MessageIn struct {
	name   string
	ch     chan pmt.Pmt
	notify func()
}

func NewMessageIn(name string, capacity int) *MessageIn {
	if capacity < 1 {
		capacity = 1
	}
	return &MessageIn{name: name, ch: make(chan pmt.Pmt, capacity)}
}

func (p *MessageIn) Descriptor() Descriptor { return Descriptor{Name: p.name, Kind: KindMessageIn} }

// SetNotify arranges for fn to be called after every successful Send,
// the message-port equivalent of a stream port's RegisterWakeup: it
// lets the owning block's actor wake from its readiness select when a
// connected message edge (not just a stream edge) delivers work.
func (p *MessageIn) SetNotify(fn func()) { p.notify = fn }

func (p *MessageIn) Send(ctx context.Context, v pmt.Pmt) error {
	select {
	case p.ch <- v:
		if p.notify != nil {
			p.notify()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MessageIn) Chan() <-chan pmt.Pmt { return p.ch }

// MessageOut fans a sent Pmt out to every connected MessageIn,
// preserving per-port FIFO order on each connected input independently
// (spec §3: "messages preserve per-port FIFO order").
type MessageOut struct {
	name string
	subs []*MessageIn
}

func NewMessageOut(name string) *MessageOut { return &MessageOut{name: name} }

func (p *MessageOut) Descriptor() Descriptor { return Descriptor{Name: p.name, Kind: KindMessageOut} }

func (p *MessageOut) Connect(in *MessageIn) { p.subs = append(p.subs, in) }

func (p *MessageOut) Send(ctx context.Context, v pmt.Pmt) error {
	for _, s := range p.subs {
		if err := s.Send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
