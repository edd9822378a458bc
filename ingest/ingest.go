// Package ingest runs dissect rule sets over files, directories and raw
// sources.
package ingest

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/dissect/internal"
	tt "github.com/gnoswap-labs/dissect/internal/types"
	"github.com/gnoswap-labs/dissect/scanner"
)

type DissectEngine interface {
	Run(filePath string) (tt.Report, error)
	RunSource(source []byte) (tt.Report, error)
	IgnoreRule(rule string)
}

// New loads the rule file and builds an engine from it. A non-nil separator
// overrides the file's default append separator.
func New(logger *zap.Logger, configurationPath string, separator *string) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	if separator != nil {
		config.AppendSeparator = *separator
	}

	return internal.NewEngine(logger, config.AppendSeparator, config.Rules)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine DissectEngine,
	sources [][]byte,
	processor func(DissectEngine, []byte) (tt.Report, error),
) (tt.Report, error) {
	var report tt.Report
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return tt.Report{}, err
		}
		report.Merge(r)
	}

	return report, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine DissectEngine,
	paths []string,
	processor func(DissectEngine, string) (tt.Report, error),
) (tt.Report, error) {
	var report tt.Report
	for _, path := range paths {
		r, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return tt.Report{}, err
		}
		report.Merge(r)
	}

	return report, nil
}

// ProcessPath processes a single file, or every input file below a
// directory using one worker per CPU. Results keep the scanner's file order.
// Files that cannot be read are logged and skipped.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine DissectEngine,
	path string,
	processor func(DissectEngine, string) (tt.Report, error),
) (tt.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return tt.Report{}, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		return processor(engine, path)
	}

	files, err := scanner.New(path, scanner.DefaultExtensions...).Scan()
	if err != nil {
		return tt.Report{}, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make([]tt.Report, len(files))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	var cancelled error
	for i, file := range files {
		if cancelled = ctx.Err(); cancelled != nil {
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
		case sem <- struct{}{}:
		}
		if cancelled != nil {
			break
		}

		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			r, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
			} else {
				results[i] = r
			}
			_ = bar.Add(1)
		}(i, file.Path)
	}
	wg.Wait()
	_ = bar.Finish()

	var report tt.Report
	for _, r := range results {
		report.Merge(r)
	}
	return report, cancelled
}

func ProcessFile(engine DissectEngine, filePath string) (tt.Report, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine DissectEngine, source []byte) (tt.Report, error) {
	return engine.RunSource(source)
}
