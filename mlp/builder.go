package mlp

import (
	"fmt"
	"log"

	"github.com/sarchlab/streamsim/blocks"
	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/linalg"
	"github.com/sarchlab/streamsim/program"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/utility"
)

// Sink selects what consumes the output of a pipeline.
type Sink int

// The available sinks.
const (
	// SinkCheck compares the output with the reference.
	SinkCheck Sink = iota

	// SinkCollect keeps the output for later inspection.
	SinkCollect

	// SinkPrint logs the output.
	SinkPrint
)

// A Block is a compute block of a pipeline.
type Block interface {
	sim.Context
	InvokeHook(sim.HookCtx)
	State() blocks.State
	Invocations() uint64
}

// Pipeline is a built pipeline, ready to run.
type Pipeline[T linalg.Float] struct {
	Program    *program.Program
	Workload   Workload[T]
	Generator  *utility.Generator[T]
	Linear     Block
	Activation *blocks.Activation[T]

	// Only the consumer that matches the sink is set.
	Checker   *utility.Checker[T]
	Collector *utility.Collector[T]
	Printer   *utility.Printer[T]

	reference []T
}

// Blocks returns the compute blocks, upstream first.
func (p *Pipeline[T]) Blocks() []Block {
	return []Block{p.Linear, p.Activation}
}

// Reference returns the output the pipeline is expected to produce.
func (p *Pipeline[T]) Reference() []T {
	return append([]T(nil), p.reference...)
}

// Run runs the program of the pipeline.
func (p *Pipeline[T]) Run() (*program.Executed, error) {
	return p.Program.Run()
}

// Builder can build MLP pipelines.
type Builder[T linalg.Float] struct {
	workload  Workload[T]
	capacity  int
	linearII  uint64
	actII     uint64
	transform func(T) T
	matMul    bool
	batch     int
	throttle  blocks.ThrottlePolicy
	sink      Sink
	logger    *log.Logger
	tolerance T
}

// MakeBuilder returns a builder with channels of 1024 elements, initiation
// intervals of 1 cycle, a GEMV block, a ReLU activation, and a checking sink.
func MakeBuilder[T linalg.Float]() Builder[T] {
	return Builder[T]{
		capacity:  1024,
		linearII:  1,
		actII:     1,
		transform: blocks.ReLU[T](),
		batch:     1,
		throttle:  blocks.ThrottleAfterFlush,
		sink:      SinkCheck,
		logger:    log.Default(),
	}
}

// WithWorkload sets the data to feed through the pipeline.
func (b Builder[T]) WithWorkload(w Workload[T]) Builder[T] {
	b.workload = w
	return b
}

// WithCapacity sets the capacity of every channel.
func (b Builder[T]) WithCapacity(n int) Builder[T] {
	b.capacity = n
	return b
}

// WithLinearInitiationInterval sets the initiation interval of the linear
// block.
func (b Builder[T]) WithLinearInitiationInterval(ii uint64) Builder[T] {
	b.linearII = ii
	return b
}

// WithActivationInitiationInterval sets the initiation interval of the
// activation block.
func (b Builder[T]) WithActivationInitiationInterval(ii uint64) Builder[T] {
	b.actII = ii
	return b
}

// WithActivation sets the activation function.
func (b Builder[T]) WithActivation(f blocks.Transform[T]) Builder[T] {
	b.transform = f.Apply
	return b
}

// WithMatMul uses a MatMul block with the given batch size instead of a GEMV
// block.
func (b Builder[T]) WithMatMul(batch int) Builder[T] {
	b.matMul = true
	b.batch = batch
	return b
}

// WithThrottlePolicy sets how the linear block applies its initiation
// interval.
func (b Builder[T]) WithThrottlePolicy(p blocks.ThrottlePolicy) Builder[T] {
	b.throttle = p
	return b
}

// WithSink selects the consumer of the output.
func (b Builder[T]) WithSink(s Sink) Builder[T] {
	b.sink = s
	return b
}

// WithLogger sets the logger of the printing sink.
func (b Builder[T]) WithLogger(l *log.Logger) Builder[T] {
	b.logger = l
	return b
}

// WithTolerance lets the checking sink accept values within tol of the
// reference.
func (b Builder[T]) WithTolerance(tol T) Builder[T] {
	b.tolerance = tol
	return b
}

// Build assembles the pipeline. The contexts are named after the pipeline,
// as in "MLP.GEMV".
func (b Builder[T]) Build(name string) (*Pipeline[T], error) {
	if b.workload.Inputs == nil {
		return nil, fmt.Errorf("%s: workload must be set", name)
	}

	if b.workload.NumFeatures() != b.workload.Weights.Cols() {
		return nil, fmt.Errorf("%s: %d features but %d weight columns",
			name, b.workload.NumFeatures(), b.workload.Weights.Cols())
	}

	if b.matMul && b.workload.NumInputs()%b.batch != 0 {
		return nil, fmt.Errorf("%s: %d inputs do not fill batches of %d",
			name, b.workload.NumInputs(), b.batch)
	}

	pb := program.NewBuilder().WithName(name)
	p := &Pipeline[T]{
		Workload:  b.workload,
		reference: Reference(b.workload, b.transform),
	}

	inS, inR := program.Bounded[T](pb, b.capacity)
	p.Generator = utility.MakeGeneratorBuilder[T]().
		WithValues(b.workload.Inputs.Data()).
		WithOutput(inS).
		Build(sim.BuildName(name, "Gen"))
	pb.AddContext(p.Generator)

	midS, midR := program.Bounded[T](pb, b.capacity)
	p.Linear = b.buildLinear(name, inR, midS)
	pb.AddContext(p.Linear)

	outS, outR := program.Bounded[T](pb, b.capacity)
	p.Activation = blocks.MakeActivationBuilder[T]().
		WithFunc(b.transform).
		WithInitiationInterval(b.actII).
		WithInput(midR).
		WithOutput(outS).
		Build(sim.BuildName(name, "Act"))
	pb.AddContext(p.Activation)

	b.buildSink(name, pb, p, outR)

	prog, err := pb.Initialize()
	if err != nil {
		return nil, err
	}

	p.Program = prog

	return p, nil
}

func (b Builder[T]) buildLinear(
	name string,
	in *channel.Receiver[T],
	out *channel.Sender[T],
) Block {
	if b.matMul {
		return blocks.MakeMatMulBuilder[T]().
			WithWeights(b.workload.Weights).
			WithBiases(b.workload.Biases).
			WithBatchSize(b.batch).
			WithInitiationInterval(b.linearII).
			WithThrottlePolicy(b.throttle).
			WithInput(in).
			WithOutput(out).
			Build(sim.BuildName(name, "MatMul"))
	}

	return blocks.MakeGEMVBuilder[T]().
		WithWeights(b.workload.Weights).
		WithBiases(b.workload.Biases).
		WithInitiationInterval(b.linearII).
		WithThrottlePolicy(b.throttle).
		WithInput(in).
		WithOutput(out).
		Build(sim.BuildName(name, "GEMV"))
}

func (b Builder[T]) buildSink(
	name string,
	pb *program.Builder,
	p *Pipeline[T],
	in *channel.Receiver[T],
) {
	switch b.sink {
	case SinkCollect:
		p.Collector = utility.MakeCollectorBuilder[T]().
			WithInput(in).
			Build(sim.BuildName(name, "Collector"))
		pb.AddContext(p.Collector)
	case SinkPrint:
		p.Printer = utility.MakePrinterBuilder[T]().
			WithLogger(b.logger).
			WithInput(in).
			Build(sim.BuildName(name, "Printer"))
		pb.AddContext(p.Printer)
	default:
		cb := utility.MakeCheckerBuilder[T]().
			WithExpected(p.reference).
			WithInput(in)
		if b.tolerance > 0 {
			cb = cb.WithEqual(utility.ApproxEqual(b.tolerance))
		}

		p.Checker = cb.Build(sim.BuildName(name, "Checker"))
		pb.AddContext(p.Checker)
	}
}
