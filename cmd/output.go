package cmd

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/gnoswap-labs/dissect/formatter"
	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// printReport writes report as text or JSON. With jsonOutput set, the JSON
// document goes to that file instead of w.
func printReport(logger *zap.Logger, w io.Writer, report tt.Report, isJson bool, jsonOutput string) error {
	if !isJson {
		fmt.Fprint(w, formatter.GenerateFormattedRecords(report.Records))
		if len(report.Failures) > 0 {
			fmt.Fprintln(w)
			fmt.Fprint(w, formatter.GenerateFormattedFailures(report.Failures))
		}
		return nil
	}

	if jsonOutput == "" {
		return formatter.WriteJSON(w, report)
	}

	f, err := os.Create(jsonOutput)
	if err != nil {
		return fmt.Errorf("error creating JSON output file: %w", err)
	}
	defer f.Close()

	if err := formatter.WriteJSON(f, report); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	if logger != nil {
		logger.Info("report written",
			zap.String("path", jsonOutput),
			zap.Int("records", len(report.Records)),
			zap.Int("failures", len(report.Failures)),
		)
	}
	return nil
}
