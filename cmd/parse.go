package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/dissect/formatter"
	"github.com/gnoswap-labs/dissect/ingest"
	"github.com/gnoswap-labs/dissect/internal/sink"
	tt "github.com/gnoswap-labs/dissect/internal/types"
)

var (
	ignoreRules     string
	parseJsonOutput bool
	outPath         string
	separator       string
	dbDSN           string
	watchRules      bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [paths...]",
	Short: "Dissect files or directories with the configured rules",
	Long: `Runs every rule of the rule file over the given files and directories.
Without paths, lines are read from standard input. With --watch, standard input
is streamed and the rule file is reloaded whenever it changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		var sep *string
		if cmd.Flags().Changed("separator") {
			sep = &separator
		}
		engine, err := ingest.New(logger, cfgFile, sep)
		if err != nil {
			logger.Fatal("Failed to initialize dissect engine", zap.Error(err))
		}

		if ignoreRules != "" {
			for _, rule := range strings.Split(ignoreRules, ",") {
				engine.IgnoreRule(strings.TrimSpace(rule))
			}
		}

		if watchRules {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				if err := engine.WatchRules(ctx, cfgFile, ingest.LoadRules); err != nil {
					logger.Error("Error watching rule file", zap.Error(err))
				}
			}()
			if err := streamLines(engine, cmd.InOrStdin(), cmd.OutOrStdout(), parseJsonOutput); err != nil {
				logger.Fatal("Error reading input", zap.Error(err))
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		report, err := runParse(ctx, logger, engine, args, cmd.InOrStdin())
		if err != nil {
			logger.Error("Error processing input", zap.Error(err))
			os.Exit(1)
		}

		if dbDSN != "" {
			if err := storeRecords(ctx, logger, dbDSN, report.Records); err != nil {
				logger.Error("Error storing records", zap.Error(err))
				os.Exit(1)
			}
		}

		if err := printReport(logger, cmd.OutOrStdout(), report, parseJsonOutput, outPath); err != nil {
			logger.Error("Error printing report", zap.Error(err))
			os.Exit(1)
		}

		if len(report.Failures) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	parseCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	parseCmd.Flags().BoolVar(&parseJsonOutput, "json", false, "Output records in JSON format")
	parseCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	parseCmd.Flags().StringVar(&separator, "separator", "", "Override the default append separator of the rule file")
	parseCmd.Flags().StringVar(&dbDSN, "db-dsn", "", "PostgreSQL DSN to store records in")
	parseCmd.Flags().BoolVar(&watchRules, "watch", false, "Stream standard input and reload rules on change")
}

// runParse dissects the given paths, or stdin when there are none.
func runParse(ctx context.Context, logger *zap.Logger, engine ingest.DissectEngine, paths []string, stdin io.Reader) (tt.Report, error) {
	if len(paths) > 0 {
		return ingest.ProcessFiles(ctx, logger, engine, paths, ingest.ProcessFile)
	}

	source, err := io.ReadAll(stdin)
	if err != nil {
		return tt.Report{}, fmt.Errorf("error reading stdin: %w", err)
	}
	return ingest.ProcessSources(ctx, logger, engine, [][]byte{source}, ingest.ProcessSource)
}

// maxLineSize bounds a single input line read from stdin.
const maxLineSize = 1024 * 1024

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// streamLines dissects r line by line and prints each result as soon as it is
// available.
func streamLines(engine ingest.DissectEngine, r io.Reader, w io.Writer, isJson bool) error {
	sc := newLineScanner(r)

	line := 0
	for sc.Scan() {
		line++
		report, err := engine.RunSource(sc.Bytes())
		if err != nil {
			return err
		}
		for i := range report.Records {
			report.Records[i].Line = line
		}
		for i := range report.Failures {
			report.Failures[i].Line = line
		}
		if report.Empty() {
			continue
		}
		if isJson {
			if err := formatter.WriteJSON(w, report); err != nil {
				return err
			}
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedRecords(report.Records))
		fmt.Fprint(w, formatter.GenerateFormattedFailures(report.Failures))
	}
	return sc.Err()
}

func storeRecords(ctx context.Context, logger *zap.Logger, dsn string, records []tt.Record) error {
	db, err := sink.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	store := sink.NewPostgres(db, logger)
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	return store.Write(ctx, records)
}
