package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/dissect/internal"
	tt "github.com/gnoswap-labs/dissect/internal/types"
)

const matchRule = "match"

var (
	matchJsonOutput bool
	matchSeparator  string
)

var patternCache = internal.NewPatternCache(0)

var matchCmd = &cobra.Command{
	Use:   "match <pattern> [lines...]",
	Short: "Dissect lines with a single ad-hoc pattern",
	Long: `Compiles the pattern and applies it to each line argument, or to every
line of standard input when no lines are given.
Example) dissect match '%{ip} [%{ts}] %{msg}' '1.2.3.4 [now] hello'`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		lines := args[1:]
		if len(lines) == 0 {
			var err error
			if lines, err = readLines(cmd.InOrStdin()); err != nil {
				logger.Fatal("Error reading stdin", zap.Error(err))
			}
		}

		report, err := runMatch(args[0], matchSeparator, lines)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			os.Exit(1)
		}
		if err := printReport(logger, cmd.OutOrStdout(), report, matchJsonOutput, ""); err != nil {
			logger.Error("Error printing report", zap.Error(err))
			os.Exit(1)
		}
		if len(report.Failures) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	matchCmd.Flags().BoolVar(&matchJsonOutput, "json", false, "Output records in JSON format")
	matchCmd.Flags().StringVar(&matchSeparator, "separator", "", "Append separator")
}

// runMatch compiles pattern and dissects each line. A compile error aborts;
// lines that do not match become failures.
func runMatch(pattern, separator string, lines []string) (tt.Report, error) {
	p, err := patternCache.Get(pattern, separator)
	if err != nil {
		return tt.Report{}, err
	}

	var report tt.Report
	for i, line := range lines {
		fields, err := p.Parse(line)
		if err != nil {
			report.Failures = append(report.Failures, tt.Failure{
				Line:    i + 1,
				Input:   line,
				Rule:    matchRule,
				Message: err.Error(),
			})
			continue
		}
		report.Records = append(report.Records, tt.Record{
			Line:   i + 1,
			Rule:   matchRule,
			Fields: fields,
		})
	}
	return report, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := newLineScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
