package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// envPrefix prefixes the environment variables that override flag defaults,
// as in MLPSIM_INPUTS for --inputs.
const envPrefix = "MLPSIM_"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mlpsim",
	Short: "mlpsim simulates a streaming MLP layer on dataflow hardware.",
	Long: `mlpsim simulates a streaming MLP layer, a GEMV or MatMul block ` +
		`followed by an activation block, and reports the cycles it takes. ` +
		`Flag defaults can be overridden with MLPSIM_* environment ` +
		`variables, also read from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return applyEnv(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Cannot load .env: %v\n", err)
	}

	err = rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// applyEnv sets the flags that are not given on the command line from the
// environment.
func applyEnv(flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		name := envPrefix +
			strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}

		if setErr := f.Value.Set(value); setErr != nil {
			err = fmt.Errorf("%s: %w", name, setErr)
		}
	})

	return err
}
