package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sarchlab/streamsim/blocks"
	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/mlp"
	"github.com/sarchlab/streamsim/monitoring"
	"github.com/sarchlab/streamsim/program"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/tracing"
	"github.com/spf13/cobra"
)

// runConfig holds the options of a run.
type runConfig struct {
	inputs, features, outputs int
	capacity                  int
	gemvII, actII             uint64
	activation                string
	block                     string
	batch                     int
	throttle                  string
	traceDB                   string
	monitor                   bool
	monitorPort               int
	openBrowser               bool
	verbose                   bool
	print                     bool
	freqGHz                   float64
}

var cfg runConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the MLP pipeline and report the elapsed cycles.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSimulation(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&cfg.inputs, "inputs", 32, "Number of input vectors")
	f.IntVar(&cfg.features, "features", 1024, "Length of each input vector")
	f.IntVar(&cfg.outputs, "outputs", 24, "Number of outputs per input vector")
	f.IntVar(&cfg.capacity, "capacity", 1024, "Capacity of every channel")
	f.Uint64Var(&cfg.gemvII, "gemv-ii", 1,
		"Initiation interval of the linear block, in cycles")
	f.Uint64Var(&cfg.actII, "act-ii", 1,
		"Initiation interval of the activation block, in cycles")
	f.StringVar(&cfg.activation, "activation", "relu",
		fmt.Sprintf("Activation function, one of %v", blocks.ActivationNames))
	f.StringVar(&cfg.block, "block", "gemv", "Linear block, gemv or matmul")
	f.IntVar(&cfg.batch, "batch", 1, "Batch size of the matmul block")
	f.StringVar(&cfg.throttle, "throttle", "after-flush",
		"When the initiation interval starts, after-flush or from-start")
	f.StringVar(&cfg.traceDB, "trace-db", "",
		"Write block traces to this SQLite database, without suffix")
	f.BoolVar(&cfg.monitor, "monitor", false, "Serve the monitoring web page")
	f.IntVar(&cfg.monitorPort, "monitor-port", 0,
		"Port of the monitoring server, random if below 1000")
	f.BoolVar(&cfg.openBrowser, "open-browser", false,
		"Open the monitoring page in a browser")
	f.BoolVar(&cfg.verbose, "verbose", false,
		"Log context and channel traffic to stderr")
	f.BoolVar(&cfg.print, "print", false,
		"Print the output instead of checking it")
	f.Float64Var(&cfg.freqGHz, "freq", 1, "Clock frequency in GHz")

	rootCmd.AddCommand(runCmd)
}

// blockTracers measures one block.
type blockTracers struct {
	block   mlp.Block
	busy    *tracing.BusyTimeTracer
	latency *tracing.AverageTimeTracer
}

func runSimulation(c runConfig, out, errOut io.Writer) error {
	pipeline, err := buildPipeline(c, out)
	if err != nil {
		return err
	}

	if c.verbose {
		attachLoggers(pipeline.Program, log.New(errOut, "", 0))
	}

	if c.traceDB != "" {
		attachDBTracer(pipeline, c.traceDB)
	}

	tracers := attachBlockTracers(pipeline)

	if c.monitor {
		bar := startMonitor(c, pipeline)
		defer bar.done()
	}

	executed, err := pipeline.Run()
	if err != nil {
		return err
	}

	report(out, executed, tracers, sim.Freq(c.freqGHz)*sim.GHz)

	return nil
}

func buildPipeline(c runConfig, out io.Writer) (*mlp.Pipeline[float64], error) {
	transform, err := blocks.TransformByName[float64](c.activation)
	if err != nil {
		return nil, err
	}

	throttle, err := blocks.ParseThrottlePolicy(c.throttle)
	if err != nil {
		return nil, err
	}

	b := mlp.MakeBuilder[float64]().
		WithWorkload(mlp.MakeWorkload[float64](c.inputs, c.features, c.outputs)).
		WithCapacity(c.capacity).
		WithLinearInitiationInterval(c.gemvII).
		WithActivationInitiationInterval(c.actII).
		WithActivation(transform).
		WithThrottlePolicy(throttle).
		WithTolerance(1e-9)

	switch c.block {
	case "gemv":
	case "matmul":
		b = b.WithMatMul(c.batch)
	default:
		return nil, fmt.Errorf("unknown block %q, want gemv or matmul", c.block)
	}

	if c.print {
		b = b.WithSink(mlp.SinkPrint).WithLogger(log.New(out, "", 0))
	}

	return b.Build("MLP")
}

func attachLoggers(p *program.Program, logger *log.Logger) {
	p.AcceptHook(sim.NewContextLogger(logger))

	traffic := channel.NewTrafficLogger(logger)
	for _, ch := range p.Simulation().Channels() {
		if h, ok := ch.(sim.Hookable); ok {
			h.AcceptHook(traffic)
		}
	}
}

func attachDBTracer(p *mlp.Pipeline[float64], path string) {
	writer := tracing.NewSQLiteTraceWriter(path)
	writer.Init()

	tracer := tracing.NewDBTracer(writer)
	for _, b := range p.Blocks() {
		tracing.CollectTrace(b, tracer)
	}

	fmt.Fprintf(os.Stderr, "Tracing blocks into %s\n", writer.FileName())
}

func attachBlockTracers(p *mlp.Pipeline[float64]) []blockTracers {
	filter := tracing.FilterByKind(blocks.TaskKindInvocation)

	var tracers []blockTracers
	for _, b := range p.Blocks() {
		t := blockTracers{
			block:   b,
			busy:    tracing.NewBusyTimeTracer(filter),
			latency: tracing.NewAverageTimeTracer(filter),
		}
		tracing.CollectTrace(b, t.busy)
		tracing.CollectTrace(b, t.latency)

		tracers = append(tracers, t)
	}

	return tracers
}

// outputProgress is the progress bar of the pipeline's output channel.
type outputProgress struct {
	monitor *monitoring.Monitor
	bar     *monitoring.ProgressBar
}

func (p outputProgress) done() {
	p.monitor.CompleteProgressBar(p.bar)
}

func startMonitor(c runConfig, p *mlp.Pipeline[float64]) outputProgress {
	m := monitoring.NewMonitor().
		WithPortNumber(c.monitorPort).
		WithBrowser(c.openBrowser)
	m.RegisterProgram(p.Program)

	bar := m.CreateProgressBar("Outputs", uint64(c.inputs*c.outputs))

	channels := p.Program.Simulation().Channels()
	if last, ok := channels[len(channels)-1].(sim.Hookable); ok {
		last.AcceptHook(monitoring.NewChannelProgress(bar))
	}

	m.StartServer()

	return outputProgress{monitor: m, bar: bar}
}

func report(
	out io.Writer,
	executed *program.Executed,
	tracers []blockTracers,
	freq sim.Freq,
) {
	elapsed := executed.ElapsedCycles()

	fmt.Fprintf(out, "Took %d cycles\n", elapsed)

	for _, ct := range executed.ContextTimes() {
		fmt.Fprintf(out, "  %s finished at cycle %d\n", ct.Name, ct.Time)
	}

	for _, t := range tracers {
		fmt.Fprintf(out,
			"  %s: %d invocations, busy %d cycles, %.2f cycles per invocation\n",
			t.block.Name(), t.block.Invocations(),
			t.busy.BusyTime(), t.latency.AverageTime())
	}

	fmt.Fprintf(out, "Simulated time at %.2f GHz: %v\n",
		float64(freq)/float64(sim.GHz), freq.Duration(elapsed))
	fmt.Fprintf(out, "Wall time: %v\n", executed.WallTime().Round(time.Millisecond))
}
