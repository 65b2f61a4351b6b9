package main

import (
	"bytes"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/tracing"
	"github.com/spf13/pflag"
)

func smallConfig() runConfig {
	return runConfig{
		inputs:     2,
		features:   4,
		outputs:    3,
		capacity:   8,
		gemvII:     1,
		actII:      1,
		activation: "relu",
		block:      "gemv",
		batch:      1,
		throttle:   "after-flush",
		freqGHz:    1,
	}
}

var _ = Describe("Run", func() {
	var out, errOut *bytes.Buffer

	BeforeEach(func() {
		out = new(bytes.Buffer)
		errOut = new(bytes.Buffer)
	})

	It("should check the output and report the cycles", func() {
		Expect(runSimulation(smallConfig(), out, errOut)).To(Succeed())

		Expect(out.String()).To(MatchRegexp(`Took \d+ cycles`))
		Expect(out.String()).To(ContainSubstring("MLP.Checker finished at cycle"))
		Expect(out.String()).To(ContainSubstring("MLP.GEMV: 2 invocations"))
		Expect(out.String()).To(ContainSubstring("MLP.Act: 6 invocations"))
		Expect(out.String()).To(ContainSubstring("Simulated time at 1.00 GHz"))
		Expect(errOut.String()).To(BeEmpty())
	})

	It("should run a matmul block", func() {
		c := smallConfig()
		c.block = "matmul"
		c.batch = 2
		c.activation = "sigmoid"

		Expect(runSimulation(c, out, errOut)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("MLP.MatMul: 1 invocations"))
	})

	It("should print instead of check", func() {
		c := smallConfig()
		c.print = true

		Expect(runSimulation(c, out, errOut)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("MLP.Printer"))
		Expect(out.String()).NotTo(ContainSubstring("MLP.Checker"))
	})

	It("should log traffic when verbose", func() {
		c := smallConfig()
		c.verbose = true

		Expect(runSimulation(c, out, errOut)).To(Succeed())
		Expect(errOut.String()).To(ContainSubstring("MLP.Gen started"))
		Expect(errOut.String()).To(ContainSubstring("MLP.Chan[0]"))
	})

	It("should write block traces to a database", func() {
		c := smallConfig()
		c.traceDB = filepath.Join(GinkgoT().TempDir(), "trace")

		Expect(runSimulation(c, out, errOut)).To(Succeed())

		// The tracer flushes at exit; nothing is readable before that.
		Expect(c.traceDB + ".sqlite3").To(BeAnExistingFile())

		reader := tracing.NewSQLiteTraceReader(c.traceDB + ".sqlite3")
		reader.Init()
		Expect(reader.ListLocations()).To(BeEmpty())
	})

	DescribeTable("invalid options",
		func(mutate func(*runConfig), msg string) {
			c := smallConfig()
			mutate(&c)

			err := runSimulation(c, out, errOut)
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("activation", func(c *runConfig) { c.activation = "gelu" }, "gelu"),
		Entry("block", func(c *runConfig) { c.block = "conv" }, "conv"),
		Entry("throttle", func(c *runConfig) { c.throttle = "never" }, "never"),
		Entry("batch", func(c *runConfig) {
			c.block = "matmul"
			c.batch = 3
		}, "batches of 3"),
	)
})

var _ = Describe("Environment defaults", func() {
	var flags *pflag.FlagSet

	BeforeEach(func() {
		flags = pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("inputs", 32, "")
		flags.String("gemv-ii", "1", "")
	})

	It("should fill flags from MLPSIM_ variables", func() {
		GinkgoT().Setenv("MLPSIM_INPUTS", "8")
		GinkgoT().Setenv("MLPSIM_GEMV_II", "4")

		Expect(applyEnv(flags)).To(Succeed())

		Expect(flags.GetInt("inputs")).To(Equal(8))
		Expect(flags.GetString("gemv-ii")).To(Equal("4"))
	})

	It("should not override flags given on the command line", func() {
		GinkgoT().Setenv("MLPSIM_INPUTS", "8")
		Expect(flags.Parse([]string{"--inputs", "2"})).To(Succeed())

		Expect(applyEnv(flags)).To(Succeed())

		Expect(flags.GetInt("inputs")).To(Equal(2))
	})

	It("should report malformed values", func() {
		GinkgoT().Setenv("MLPSIM_INPUTS", "many")

		Expect(applyEnv(flags)).To(MatchError(ContainSubstring("MLPSIM_INPUTS")))
	})
})
