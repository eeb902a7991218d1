package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tracemh-demo",
	Short: "Run the lightweight trace-based Metropolis-Hastings sampler against a built-in model",
	Long: `tracemh-demo exercises the tracemh inference core end to end: it loads a
model and sampler configuration, runs rejection sampling or Metropolis-Hastings
(plain or parallel-tempered), and reports the resulting samples and acceptance
statistics.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
