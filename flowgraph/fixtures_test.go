package flowgraph_test

import (
	"context"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/tag"
)

// burstSource emits N items, attaching one NamedUsize tag at a fixed
// absolute index partway through the run — the producer side of spec
// §8's S6 ("Producer writes 1024 items and a tag ... at item 40").
type burstSource struct {
	block.Base
	Out     *port.StreamOut[uint32]
	N       int
	TagAt   int64
	TagName string
	TagVal  uint64

	pos    int
	tagged bool
}

func (s *burstSource) Work(_ context.Context, io *block.IO) error {
	if s.pos >= s.N {
		s.Out.FlushFinished()
		io.Finished = true
		return nil
	}
	slice, _ := s.Out.Slice()
	if len(slice) == 0 {
		return nil
	}
	n := len(slice)
	if s.pos+n > s.N {
		n = s.N - s.pos
	}
	var tags []tag.Tag
	if !s.tagged && s.TagAt >= int64(s.pos) && s.TagAt < int64(s.pos+n) {
		tags = []tag.Tag{{Index: s.TagAt - int64(s.pos), Payload: tag.NamedUsize(s.TagName, s.TagVal)}}
		s.tagged = true
	}
	for i := 0; i < n; i++ {
		slice[i] = uint32(s.pos + i)
	}
	s.Out.Produce(n, tags)
	s.pos += n
	if s.pos < s.N {
		io.CallAgain = true
	}
	return nil
}

// taggingSink collects every item along with the absolute index, in
// its own output stream, of every tag it observes — used to verify
// spec §8's "tag locality" property across an intervening Delay.
type taggingSink struct {
	block.Base
	In        *port.StreamIn[uint32]
	Collected []uint32
	Tags      []tag.Tag
}

func (s *taggingSink) Work(_ context.Context, io *block.IO) error {
	slice, tags := s.In.Slice()
	if len(slice) == 0 {
		if s.In.Finished() {
			io.Finished = true
		}
		return nil
	}
	base := int64(len(s.Collected))
	for _, t := range tags {
		s.Tags = append(s.Tags, tag.Tag{Index: base + t.Index, Payload: t.Payload})
	}
	s.Collected = append(s.Collected, slice...)
	s.In.Consume(len(slice))
	io.CallAgain = true
	return nil
}
