package blocks

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/linalg"
	"github.com/sarchlab/streamsim/program"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/tracing"
	"github.com/sarchlab/streamsim/utility"
)

// quitter takes the receiving end of a channel and returns without reading.
type quitter struct {
	*sim.ContextBase
}

func newQuitter(name string, r *channel.Receiver[float64]) *quitter {
	q := &quitter{ContextBase: sim.NewContextBase(name)}
	r.Attach(q)
	return q
}

func (q *quitter) Run() error {
	return nil
}

// timedSource sends elements at the times they carry.
type timedSource struct {
	*sim.ContextBase
	out   *channel.Sender[float64]
	elems []channel.Element[float64]
}

func newTimedSource(
	name string,
	out *channel.Sender[float64],
	elems ...channel.Element[float64],
) *timedSource {
	s := &timedSource{ContextBase: sim.NewContextBase(name), out: out, elems: elems}
	out.Attach(s)
	return s
}

func (s *timedSource) Run() error {
	t := s.Clock()
	for _, e := range s.elems {
		t.AdvanceTo(e.Time)

		if err := s.out.Enqueue(t, e); err != nil {
			return err
		}
	}

	return nil
}

// delayRecorder keeps the delay events it sees.
type delayRecorder struct {
	delays []tracing.DelayEvent
}

func (r *delayRecorder) DelayTask(d tracing.DelayEvent) {
	r.delays = append(r.delays, d)
}

func (r *delayRecorder) StartTask(tracing.Task) {}
func (r *delayRecorder) StepTask(tracing.Task)  {}
func (r *delayRecorder) EndTask(tracing.Task)   {}

func constMatrix(rows, cols int, v float64) *linalg.Matrix[float64] {
	return linalg.FromElem(rows, cols, v)
}

var _ = Describe("GEMV", func() {
	var (
		b      *program.Builder
		inS    *channel.Sender[float64]
		inR    *channel.Receiver[float64]
		outS   *channel.Sender[float64]
		outR   *channel.Receiver[float64]
		gemvB  GEMVBuilder[float64]
		values []float64
	)

	BeforeEach(func() {
		b = program.NewBuilder()
		inS, inR = program.Bounded[float64](b, 16)
		outS, outR = program.Bounded[float64](b, 16)
		values = []float64{1, 2, 3, 4}

		gemvB = MakeGEMVBuilder[float64]().
			WithWeights(constMatrix(2, 4, 0.5)).
			WithBiases(linalg.Vector[float64]{-2, -1}).
			WithInput(inR).
			WithOutput(outS)
	})

	run := func(gemv *GEMV[float64]) (*utility.Collector[float64], error) {
		b.AddContext(utility.MakeGeneratorBuilder[float64]().
			WithValues(values).
			WithOutput(inS).
			Build("Gen"))
		b.AddContext(gemv)
		col := utility.MakeCollectorBuilder[float64]().
			WithInput(outR).
			Build("Col")
		b.AddContext(col)

		p, err := b.Initialize()
		Expect(err).NotTo(HaveOccurred())

		_, err = p.Run()

		return col, err
	}

	It("should compute one vector", func() {
		gemv := gemvB.Build("GEMV")

		col, err := run(gemv)

		Expect(err).NotTo(HaveOccurred())
		Expect(col.Elements()).To(Equal([]channel.Element[float64]{
			{Time: 5, Data: 3},
			{Time: 6, Data: 4},
		}))
		Expect(gemv.State()).To(Equal(Closed))
		Expect(gemv.Invocations()).To(Equal(uint64(1)))
		Expect(gemv.CurrentTime()).To(Equal(sim.VTimeInCycle(5)))
	})

	It("should stop cleanly without input", func() {
		values = nil
		gemv := gemvB.Build("GEMV")

		col, err := run(gemv)

		Expect(err).NotTo(HaveOccurred())
		Expect(col.Len()).To(Equal(0))
		Expect(gemv.State()).To(Equal(Closed))
		Expect(gemv.Invocations()).To(BeZero())
	})

	It("should report a partial vector", func() {
		values = []float64{1, 2, 3}
		gemv := gemvB.Build("GEMV")

		col, err := run(gemv)

		Expect(err).To(MatchError(ErrProtocolViolation))

		var violation *ProtocolViolationError
		Expect(errors.As(err, &violation)).To(BeTrue())
		Expect(*violation).To(Equal(ProtocolViolationError{
			Block:      "GEMV",
			Invocation: 0,
			Received:   3,
			Expected:   4,
		}))
		Expect(col.Len()).To(Equal(0))
		Expect(gemv.State()).To(Equal(Failed))
	})

	It("should report a partial second vector", func() {
		values = []float64{1, 2, 3, 4, 5}
		gemv := gemvB.Build("GEMV")

		col, err := run(gemv)

		var violation *ProtocolViolationError
		Expect(errors.As(err, &violation)).To(BeTrue())
		Expect(violation.Invocation).To(Equal(uint64(1)))
		Expect(violation.Received).To(Equal(1))
		Expect(col.Len()).To(Equal(2))
	})

	It("should keep invocations apart by the initiation interval", func() {
		values = []float64{1, 2, 3, 4, 5, 6, 7, 8}
		gemv := gemvB.WithInitiationInterval(10).Build("GEMV")

		col, err := run(gemv)

		Expect(err).NotTo(HaveOccurred())
		elems := col.Elements()
		Expect(elems).To(HaveLen(4))
		Expect(elems[0].Time).To(Equal(sim.VTimeInCycle(5)))
		Expect(elems[2].Time).To(Equal(sim.VTimeInCycle(19)))
		Expect(elems[2].Time - elems[0].Time).To(
			BeNumerically(">=", 10+4))
		Expect(elems[2].Data).To(Equal(0.5*26 - 2))
	})

	It("should throttle from the invocation start", func() {
		values = []float64{1, 2, 3, 4, 5, 6, 7, 8}
		gemv := gemvB.
			WithInitiationInterval(10).
			WithThrottlePolicy(ThrottleFromStart).
			Build("GEMV")

		col, err := run(gemv)

		Expect(err).NotTo(HaveOccurred())
		elems := col.Elements()
		Expect(elems[0].Time).To(Equal(sim.VTimeInCycle(5)))
		Expect(elems[2].Time).To(Equal(sim.VTimeInCycle(15)))
	})

	Context("when the first element arrives late", func() {
		var (
			lateB   GEMVBuilder[float64]
			runLate func(gemv *GEMV[float64]) []channel.Element[float64]
		)

		BeforeEach(func() {
			lateB = MakeGEMVBuilder[float64]().
				WithWeights(constMatrix(1, 1, 1)).
				WithBiases(linalg.Vector[float64]{0}).
				WithInitiationInterval(10).
				WithInput(inR).
				WithOutput(outS)

			runLate = func(gemv *GEMV[float64]) []channel.Element[float64] {
				b.AddContext(newTimedSource("Src", inS,
					channel.Element[float64]{Time: 5, Data: 1},
					channel.Element[float64]{Time: 6, Data: 2}))
				b.AddContext(gemv)
				col := utility.MakeCollectorBuilder[float64]().
					WithInput(outR).
					Build("Col")
				b.AddContext(col)

				p, err := b.Initialize()
				Expect(err).NotTo(HaveOccurred())

				_, err = p.Run()
				Expect(err).NotTo(HaveOccurred())

				return col.Elements()
			}
		})

		It("should throttle from the arrival of the first element", func() {
			gemv := lateB.WithThrottlePolicy(ThrottleFromStart).Build("GEMV")

			Expect(runLate(gemv)).To(Equal([]channel.Element[float64]{
				{Time: 7, Data: 1},
				{Time: 17, Data: 2},
			}))
		})

		It("should throttle after the flush", func() {
			gemv := lateB.Build("GEMV")

			Expect(runLate(gemv)).To(Equal([]channel.Element[float64]{
				{Time: 7, Data: 1},
				{Time: 18, Data: 2},
			}))
		})
	})

	It("should preserve the order of the outputs", func() {
		weights, err := linalg.FromRows([][]float64{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
		})
		Expect(err).NotTo(HaveOccurred())
		values = []float64{1, 2, 3, 4, 5, 6, 7, 8}
		gemv := gemvB.
			WithWeights(weights).
			WithBiases(linalg.Vector[float64]{0, 0, 0}).
			Build("GEMV")

		col, err := run(gemv)

		Expect(err).NotTo(HaveOccurred())
		Expect(col.Values()).To(Equal([]float64{1, 2, 3, 5, 6, 7}))
		elems := col.Elements()
		for i := 1; i < len(elems); i++ {
			Expect(elems[i].Time).To(BeNumerically(">", elems[i-1].Time))
		}
	})

	It("should fail when the receiver is gone", func() {
		b = program.NewBuilder()
		inS, inR = program.Bounded[float64](b, 16)
		outS, outR = program.Bounded[float64](b, 1)
		gemv := gemvB.WithInput(inR).WithOutput(outS).Build("GEMV")

		b.AddContext(utility.MakeGeneratorBuilder[float64]().
			WithValues(values).
			WithOutput(inS).
			Build("Gen"))
		b.AddContext(gemv)
		b.AddContext(newQuitter("Quitter", outR))

		p, err := b.Initialize()
		Expect(err).NotTo(HaveOccurred())

		_, err = p.Run()

		Expect(err).To(MatchError(channel.ErrReceiverGone))
		Expect(err.Error()).To(ContainSubstring("GEMV: invocation 0"))
		Expect(gemv.State()).To(Equal(Failed))
	})

	It("should trace one task per invocation", func() {
		values = []float64{1, 2, 3, 4, 5, 6, 7, 8}
		gemv := gemvB.Build("GEMV")
		steps := tracing.NewStepCountTracer(
			tracing.FilterByKind(TaskKindInvocation))
		latency := tracing.NewAverageTimeTracer(nil)
		tracing.CollectTrace(gemv, steps)
		tracing.CollectTrace(gemv, latency)

		_, err := run(gemv)

		Expect(err).NotTo(HaveOccurred())
		Expect(latency.TotalCount()).To(Equal(uint64(2)))
		Expect(steps.GetStepNames()).To(Equal([]string{
			StepAccumulated, StepComputed, StepFlushed,
		}))
		Expect(steps.GetTaskCount(StepFlushed)).To(Equal(uint64(2)))
	})

	It("should trace backpressure", func() {
		b = program.NewBuilder()
		inS, inR = program.Bounded[float64](b, 16)
		outS, outR = program.Bounded[float64](b, 1)
		gemv := gemvB.WithInput(inR).WithOutput(outS).Build("GEMV")
		midS, midR := program.Bounded[float64](b, 16)
		act := MakeActivationBuilder[float64]().
			WithFunc(func(v float64) float64 { return v }).
			WithInitiationInterval(10).
			WithInput(outR).
			WithOutput(midS).
			Build("Act")
		recorder := &delayRecorder{}
		tracing.CollectTrace(gemv, recorder)

		b.AddContext(utility.MakeGeneratorBuilder[float64]().
			WithValues(values).
			WithOutput(inS).
			Build("Gen"))
		b.AddContext(gemv)
		b.AddContext(act)
		b.AddContext(utility.MakeCollectorBuilder[float64]().
			WithInput(midR).
			Build("Col"))

		p, err := b.Initialize()
		Expect(err).NotTo(HaveOccurred())
		_, err = p.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(recorder.delays).To(ContainElement(tracing.DelayEvent{
			TaskID: recorder.delays[0].TaskID,
			Kind:   DelayBackpressure,
			What:   "Chan[1]",
			Source: "GEMV",
			Time:   5,
			Cycles: 1,
		}))
	})

	It("should panic on shape mismatches", func() {
		Expect(func() {
			gemvB.WithBiases(linalg.Vector[float64]{1}).Build("GEMV")
		}).To(Panic())
		Expect(func() {
			gemvB.WithWeights(linalg.NewMatrix[float64](0, 4)).Build("GEMV")
		}).To(Panic())
		Expect(func() {
			MakeGEMVBuilder[float64]().Build("GEMV")
		}).To(Panic())
	})

	It("should panic on a second attachment", func() {
		gemvB.Build("GEMV")

		Expect(func() { gemvB.Build("GEMV2") }).To(Panic())
	})
})
