package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zoobzio/union"
	"go.uber.org/zap"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file...]",
	Short: "Validate widget placeholders in page documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func codec() union.Codec {
	if useYAML {
		return union.YAML
	}
	return union.JSON
}

func runScan(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			matches = []string{pattern}
		}
		for _, file := range matches {
			descriptors, err := scanFile(file)
			if err != nil {
				logger.Warn("invalid document", zap.String("file", file), zap.Error(err))
				fmt.Fprintf(cmd.OutOrStdout(), "ERROR in %s: %v\n", file, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%d widgets)\n", file, len(descriptors))
			for _, d := range descriptors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s namespace=%q container=%q data=%v\n",
					d.Widget, d.Namespace, d.Container, d.Data)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed validation", failed)
	}
	return nil
}

func scanFile(path string) ([]union.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return union.Scan(f, codec())
}
