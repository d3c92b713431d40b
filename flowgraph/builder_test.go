package flowgraph_test

import (
	"errors"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/flowgraph"
	"github.com/nats-radio/flowcore/internal/testblocks"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/rerr"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder validation", func() {
	newCopyBlock := func(name string) (*block.Block, *testblocks.Copy[uint32]) {
		log, reg := newEnv()
		cp := &testblocks.Copy[uint32]{In: port.NewStreamIn[uint32]("in"), Out: port.NewStreamOut[uint32]("out")}
		blk := block.NewSimple(0, "Copy", name, log, reg, false, cp)
		Expect(blk.AddStreamPort(cp.In)).To(Succeed())
		Expect(blk.AddStreamPort(cp.Out)).To(Succeed())
		return blk, cp
	}

	It("assigns dense BlockIds in insertion order", func() {
		b := flowgraph.NewBuilder(testConfig())
		b0, _ := newCopyBlock("a")
		b1, _ := newCopyBlock("b")
		Expect(b.AddBlock(b0)).To(Equal(block.Id(0)))
		Expect(b.AddBlock(b1)).To(Equal(block.Id(1)))
	})

	It("rejects an element-type mismatch at connect time", func() {
		log, reg := newEnv()
		b := flowgraph.NewBuilder(testConfig())

		src := &testblocks.NullSource[float32]{Out: port.NewStreamOut[float32]("out")}
		srcBlk := block.NewSimple(0, "NullSource", "src", log, reg, false, src)
		Expect(srcBlk.AddStreamPort(src.Out)).To(Succeed())
		srcID := b.AddBlock(srcBlk)

		cpBlk, _ := newCopyBlock("cp")
		cpID := b.AddBlock(cpBlk)

		err := flowgraph.ConnectStream[float32](b, srcID, "out", cpID, "in", flowgraph.BufferHint{})
		Expect(err).To(MatchError(rerr.ErrStreamTypeMismatch))
	})

	It("rejects an unknown port name", func() {
		b := flowgraph.NewBuilder(testConfig())
		b0, _ := newCopyBlock("a")
		b1, _ := newCopyBlock("b")
		from := b.AddBlock(b0)
		to := b.AddBlock(b1)

		err := flowgraph.ConnectStream[uint32](b, from, "nope", to, "in", flowgraph.BufferHint{})
		Expect(err).To(HaveOccurred())
		var ce *rerr.ConstructionError
		Expect(errors.As(err, &ce)).To(BeTrue())
	})

	It("rejects a second producer on the same consumer port", func() {
		b := flowgraph.NewBuilder(testConfig())
		b0, _ := newCopyBlock("a")
		b1, _ := newCopyBlock("b")
		b2, _ := newCopyBlock("c")
		id0 := b.AddBlock(b0)
		id1 := b.AddBlock(b1)
		id2 := b.AddBlock(b2)

		Expect(flowgraph.ConnectStream[uint32](b, id0, "out", id2, "in", flowgraph.BufferHint{})).To(Succeed())
		err := flowgraph.ConnectStream[uint32](b, id1, "out", id2, "in", flowgraph.BufferHint{})
		Expect(err).To(MatchError(rerr.ErrFanInConflict))
	})

	It("rejects a stream cycle with no circular-marked edge", func() {
		b := flowgraph.NewBuilder(testConfig())
		b0, _ := newCopyBlock("a")
		b1, _ := newCopyBlock("b")
		id0 := b.AddBlock(b0)
		id1 := b.AddBlock(b1)

		Expect(flowgraph.ConnectStream[uint32](b, id0, "out", id1, "in", flowgraph.BufferHint{})).To(Succeed())
		Expect(flowgraph.ConnectStream[uint32](b, id1, "out", id0, "in", flowgraph.BufferHint{})).To(Succeed())

		_, err := b.Build()
		Expect(err).To(MatchError(rerr.ErrCycleNoCircular))
	})

	It("accepts a cycle once one edge carries the circular marker", func() {
		b := flowgraph.NewBuilder(testConfig())
		b0, _ := newCopyBlock("a")
		b1, _ := newCopyBlock("b")
		id0 := b.AddBlock(b0)
		id1 := b.AddBlock(b1)

		Expect(flowgraph.ConnectStream[uint32](b, id0, "out", id1, "in", flowgraph.BufferHint{})).To(Succeed())
		Expect(flowgraph.ConnectStream[uint32](b, id1, "out", id0, "in", flowgraph.Circular())).To(Succeed())

		_, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
	})

	It("renames a block instance and rejects unknown ids", func() {
		b := flowgraph.NewBuilder(testConfig())
		b0, _ := newCopyBlock("a")
		id := b.AddBlock(b0)

		Expect(b.SetInstanceName(id, "copy-primary")).To(Succeed())
		Expect(b0.Meta.InstanceName).To(Equal("copy-primary"))
		Expect(b.SetInstanceName(block.Id(99), "x")).To(MatchError(rerr.ErrUnknownBlock))
	})
})
