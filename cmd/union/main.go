// Command union inspects and serves page documents with widget placeholders.
//
//	union scan index.html         # list and validate placeholders
//	union watch index.html -w counter -w search
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	useYAML bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "union",
	Short: "Inspect and serve union page documents",
	Long: `union scans HTML page documents for data-union-widget placeholders.

scan validates placeholders and prints their descriptors. watch mounts a
catalogue of recording widgets into a store and keeps it in line with the
document as it changes on disk.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&useYAML, "yaml", false, "decode placeholder data as YAML instead of JSON")

	watchCmd.Flags().StringSliceVarP(&widgets, "widget", "w", nil, "widget names to catalogue (repeatable)")
	watchCmd.Flags().DurationVar(&debounce, "debounce", 0, "debounce for document changes (default 100ms)")

	rootCmd.AddCommand(scanCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
