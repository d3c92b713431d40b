package flowgraph_test

import (
	"context"
	"errors"
	"time"

	"github.com/nats-radio/flowcore/block"
	"github.com/nats-radio/flowcore/flowgraph"
	"github.com/nats-radio/flowcore/internal/testblocks"
	"github.com/nats-radio/flowcore/pmt"
	"github.com/nats-radio/flowcore/port"
	"github.com/nats-radio/flowcore/scheduler"
	"github.com/nats-radio/flowcore/tag"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Flowgraph scenarios", func() {
	var ctx context.Context
	var cancel context.CancelFunc

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	})
	AfterEach(func() {
		cancel()
	})

	// S1: VectorSource -> Copy -> VectorSink, conservation of items.
	It("passes every item through a Copy block unchanged", func() {
		log, reg := newEnv()
		src := &testblocks.VectorSource[uint32]{Data: []uint32{1, 2, 3, 4, 5}, Out: port.NewStreamOut[uint32]("out")}
		cp := &testblocks.Copy[uint32]{In: port.NewStreamIn[uint32]("in"), Out: port.NewStreamOut[uint32]("out")}
		sink := &testblocks.VectorSink[uint32]{In: port.NewStreamIn[uint32]("in")}

		srcBlk := block.NewSimple(0, "VectorSource", "src", log, reg, false, src)
		Expect(srcBlk.AddStreamPort(src.Out)).To(Succeed())
		cpBlk := block.NewSimple(0, "Copy", "cp", log, reg, false, cp)
		Expect(cpBlk.AddStreamPort(cp.In)).To(Succeed())
		Expect(cpBlk.AddStreamPort(cp.Out)).To(Succeed())
		sinkBlk := block.NewSimple(0, "VectorSink", "sink", log, reg, false, sink)
		Expect(sinkBlk.AddStreamPort(sink.In)).To(Succeed())

		b := flowgraph.NewBuilder(testConfig())
		srcID := b.AddBlock(srcBlk)
		cpID := b.AddBlock(cpBlk)
		sinkID := b.AddBlock(sinkBlk)
		Expect(flowgraph.ConnectStream[uint32](b, srcID, "out", cpID, "in", flowgraph.BufferHint{})).To(Succeed())
		Expect(flowgraph.ConnectStream[uint32](b, cpID, "out", sinkID, "in", flowgraph.BufferHint{})).To(Succeed())

		fg, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		h := fg.Start(ctx, scheduler.NewSingleThreaded())
		Expect(h.Wait(ctx)).To(Succeed())
		Expect(sink.Collected).To(Equal([]uint32{1, 2, 3, 4, 5}))
	})

	// S2: NullSource -> Head(N) -> VectorSink, head termination.
	It("terminates a NullSource after Head's budget is exhausted", func() {
		const n = 100_000
		log, reg := newEnv()
		src := &testblocks.NullSource[float32]{Out: port.NewStreamOut[float32]("out")}
		head := &testblocks.Head[float32]{N: n, In: port.NewStreamIn[float32]("in"), Out: port.NewStreamOut[float32]("out")}
		sink := &testblocks.VectorSink[float32]{In: port.NewStreamIn[float32]("in")}

		srcBlk := block.NewSimple(0, "NullSource", "src", log, reg, false, src)
		Expect(srcBlk.AddStreamPort(src.Out)).To(Succeed())
		headBlk := block.NewSimple(0, "Head", "head", log, reg, false, head)
		Expect(headBlk.AddStreamPort(head.In)).To(Succeed())
		Expect(headBlk.AddStreamPort(head.Out)).To(Succeed())
		sinkBlk := block.NewSimple(0, "VectorSink", "sink", log, reg, false, sink)
		Expect(sinkBlk.AddStreamPort(sink.In)).To(Succeed())

		b := flowgraph.NewBuilder(testConfig())
		srcID := b.AddBlock(srcBlk)
		headID := b.AddBlock(headBlk)
		sinkID := b.AddBlock(sinkBlk)
		Expect(flowgraph.ConnectStream[float32](b, srcID, "out", headID, "in", flowgraph.BufferHint{})).To(Succeed())
		Expect(flowgraph.ConnectStream[float32](b, headID, "out", sinkID, "in", flowgraph.BufferHint{})).To(Succeed())

		fg, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		h := fg.Start(ctx, scheduler.NewWorkStealing(ctx, 2, 1))
		Expect(h.Wait(ctx)).To(Succeed())
		Expect(sink.Collected).To(HaveLen(n))
		for _, v := range sink.Collected {
			Expect(v).To(Equal(float32(0)))
		}
	})

	// S3: VectorSource -> Copy -> {Sink1..Sink10}, fan-out.
	It("fans a Copy block's output out to every reader verbatim", func() {
		const readers = 10
		v := []float32{1.5, 2.5, 3.5}
		log, reg := newEnv()

		src := &testblocks.VectorSource[float32]{Data: v, Out: port.NewStreamOut[float32]("out")}
		cp := &testblocks.Copy[float32]{In: port.NewStreamIn[float32]("in"), Out: port.NewStreamOut[float32]("out")}
		srcBlk := block.NewSimple(0, "VectorSource", "src", log, reg, false, src)
		Expect(srcBlk.AddStreamPort(src.Out)).To(Succeed())
		cpBlk := block.NewSimple(0, "Copy", "cp", log, reg, false, cp)
		Expect(cpBlk.AddStreamPort(cp.In)).To(Succeed())
		Expect(cpBlk.AddStreamPort(cp.Out)).To(Succeed())

		b := flowgraph.NewBuilder(testConfig())
		srcID := b.AddBlock(srcBlk)
		cpID := b.AddBlock(cpBlk)
		Expect(flowgraph.ConnectStream[float32](b, srcID, "out", cpID, "in", flowgraph.BufferHint{})).To(Succeed())

		sinks := make([]*testblocks.VectorSink[float32], readers)
		for i := 0; i < readers; i++ {
			s := &testblocks.VectorSink[float32]{In: port.NewStreamIn[float32]("in")}
			sinks[i] = s
			blk := block.NewSimple(0, "VectorSink", "sink", log, reg, false, s)
			Expect(blk.AddStreamPort(s.In)).To(Succeed())
			id := b.AddBlock(blk)
			Expect(flowgraph.ConnectStream[float32](b, cpID, "out", id, "in", flowgraph.BufferHint{})).To(Succeed())
		}

		fg, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		h := fg.Start(ctx, scheduler.NewSingleThreaded())
		Expect(h.Wait(ctx)).To(Succeed())
		for _, s := range sinks {
			Expect(s.Collected).To(Equal(v))
		}
	})

	// S4: a block storing the last Pmt sent via Call, observed through
	// a Callback reply.
	It("delivers a Call's Pmt and returns it unchanged from a Callback", func() {
		log, reg := newEnv()
		fault := errors.New("handler rejected the value")
		fs := &testblocks.FreqStore{Fault: fault}
		blk := block.NewSimple(0, "FreqStore", "fs", log, reg, false, fs)

		b := flowgraph.NewBuilder(testConfig())
		id := b.AddBlock(blk)
		fg, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		h := fg.Start(ctx, scheduler.NewSingleThreaded())

		_, err = h.Call(ctx, id, "freq", pmt.F64(102e6))
		Expect(err).NotTo(HaveOccurred())
		got, err := h.Callback(ctx, id, "freq?", pmt.Null())
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(pmt.F64(102e6))).To(BeTrue())

		// A handler error is dropped by Call (the caller sees an
		// InvalidValue reply) but returned to the caller by Callback.
		got, err = h.Call(ctx, id, "fault", pmt.Null())
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(pmt.InvalidValue())).To(BeTrue())
		_, err = h.Callback(ctx, id, "fault", pmt.Null())
		Expect(err).To(MatchError(fault))

		Expect(h.Terminate(ctx)).To(Succeed())
		Expect(h.Wait(ctx)).To(Succeed())
	})

	// S5: a block whose Work fails after two calls terminates the whole
	// flowgraph, and every sibling reaches Deinit.
	It("propagates a block's Work failure and drains its siblings", func() {
		log, reg := newEnv()
		boom := errors.New("boom")
		failer := &testblocks.FailAfter{N: 2, Err: boom}
		sink := &testblocks.VectorSink[uint32]{In: port.NewStreamIn[uint32]("in")}
		src := &testblocks.NullSource[uint32]{Out: port.NewStreamOut[uint32]("out")}

		failerBlk := block.NewSimple(0, "FailAfter", "failer", log, reg, false, failer)
		srcBlk := block.NewSimple(0, "NullSource", "src", log, reg, false, src)
		Expect(srcBlk.AddStreamPort(src.Out)).To(Succeed())
		sinkBlk := block.NewSimple(0, "VectorSink", "sink", log, reg, false, sink)
		Expect(sinkBlk.AddStreamPort(sink.In)).To(Succeed())

		b := flowgraph.NewBuilder(testConfig())
		b.AddBlock(failerBlk)
		srcID := b.AddBlock(srcBlk)
		sinkID := b.AddBlock(sinkBlk)
		Expect(flowgraph.ConnectStream[uint32](b, srcID, "out", sinkID, "in", flowgraph.BufferHint{})).To(Succeed())

		fg, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		h := fg.Start(ctx, scheduler.NewSingleThreaded())
		err = h.Wait(ctx)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	// S6: a tag written at item 40 crosses a Copy and a Delay(16)
	// unchanged, observed at item 56 downstream.
	It("carries a tag across a Copy and a Delay at its shifted index", func() {
		log, reg := newEnv()
		src := &burstSource{N: 1024, TagAt: 40, TagName: "burst_start", TagVal: 40, Out: port.NewStreamOut[uint32]("out")}
		cp := &testblocks.Copy[uint32]{In: port.NewStreamIn[uint32]("in"), Out: port.NewStreamOut[uint32]("out")}
		delay := &testblocks.Delay[uint32]{N: 16, In: port.NewStreamIn[uint32]("in"), Out: port.NewStreamOut[uint32]("out")}
		sink := &taggingSink{In: port.NewStreamIn[uint32]("in")}

		srcBlk := block.NewSimple(0, "burstSource", "src", log, reg, false, src)
		Expect(srcBlk.AddStreamPort(src.Out)).To(Succeed())
		cpBlk := block.NewSimple(0, "Copy", "cp", log, reg, false, cp)
		Expect(cpBlk.AddStreamPort(cp.In)).To(Succeed())
		Expect(cpBlk.AddStreamPort(cp.Out)).To(Succeed())
		delayBlk := block.NewSimple(0, "Delay", "delay", log, reg, false, delay)
		Expect(delayBlk.AddStreamPort(delay.In)).To(Succeed())
		Expect(delayBlk.AddStreamPort(delay.Out)).To(Succeed())
		sinkBlk := block.NewSimple(0, "taggingSink", "sink", log, reg, false, sink)
		Expect(sinkBlk.AddStreamPort(sink.In)).To(Succeed())

		b := flowgraph.NewBuilder(testConfig())
		srcID := b.AddBlock(srcBlk)
		cpID := b.AddBlock(cpBlk)
		delayID := b.AddBlock(delayBlk)
		sinkID := b.AddBlock(sinkBlk)
		Expect(flowgraph.ConnectStream[uint32](b, srcID, "out", cpID, "in", flowgraph.BufferHint{})).To(Succeed())
		Expect(flowgraph.ConnectStream[uint32](b, cpID, "out", delayID, "in", flowgraph.BufferHint{})).To(Succeed())
		Expect(flowgraph.ConnectStream[uint32](b, delayID, "out", sinkID, "in", flowgraph.BufferHint{})).To(Succeed())

		fg, err := b.Build()
		Expect(err).NotTo(HaveOccurred())
		h := fg.Start(ctx, scheduler.NewSingleThreaded())
		Expect(h.Wait(ctx)).To(Succeed())

		Expect(sink.Collected).To(HaveLen(1024 + 16))
		Expect(sink.Tags).To(HaveLen(1))
		got := sink.Tags[0]
		Expect(got.Index).To(Equal(int64(56)))
		Expect(got.Payload.Kind).To(Equal(tag.KindNamedUsize))
		Expect(got.Payload.Name).To(Equal("burst_start"))
		Expect(got.Payload.Usize).To(Equal(uint64(40)))
	})
})
