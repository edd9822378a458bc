package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// ErrNoCandidate is reported for a line that no rule could be tried against.
var ErrNoCandidate = errors.New("no candidate rule")

// Engine manages the dissect process.
type Engine struct {
	mu           sync.RWMutex
	set          *ruleSet
	separator    string
	ignoredRules map[string]bool

	cache  *PatternCache
	logger *zap.Logger
}

// NewEngine compiles rules and returns an engine ready to dissect lines.
// separator is the default append separator for rules that do not set one.
func NewEngine(logger *zap.Logger, separator string, rules []tt.ConfigRule) (*Engine, error) {
	engine := &Engine{
		separator:    separator,
		ignoredRules: make(map[string]bool),
		cache:        NewPatternCache(0),
		logger:       logger,
	}
	if err := engine.Reload(separator, rules); err != nil {
		return nil, err
	}
	return engine, nil
}

// Reload swaps the rule set. On error the current rules stay in place.
func (e *Engine) Reload(separator string, rules []tt.ConfigRule) error {
	set, err := newRuleSet(e.cache, separator, rules)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.set = set
	e.separator = separator
	e.mu.Unlock()

	if e.logger != nil {
		hits, misses := e.cache.Stats()
		e.logger.Debug("rules loaded",
			zap.Int("rules", len(set.rules)),
			zap.Int("literals", set.filter.Stats().PatternCount),
			zap.Int("cached_patterns", e.cache.Len()),
			zap.Int("cache_hits", hits),
			zap.Int("cache_misses", misses),
		)
	}
	return nil
}

// Rules returns the compiled rules in configuration order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Rule, len(e.set.rules))
	copy(out, e.set.rules)
	return out
}

func (e *Engine) IgnoreRule(rule string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ignoredRules[rule] = true
}

// Dissect tries each candidate rule against line in configuration order and
// returns the record of the first one that matches.
//
// The returned error wraps the last match failure, or ErrNoCandidate when no
// rule could be tried. Record.Rule names the last rule tried on failure.
func (e *Engine) Dissect(line string) (tt.Record, error) {
	e.mu.RLock()
	set := e.set
	e.mu.RUnlock()

	var (
		lastErr  error
		lastRule string
	)
	for _, rule := range set.candidates(line) {
		if e.isIgnored(rule.name) {
			continue
		}
		fields, err := rule.Apply(line)
		if err != nil {
			lastErr, lastRule = err, rule.name
			continue
		}
		return tt.Record{Rule: rule.name, Fields: fields}, nil
	}

	if lastErr == nil {
		return tt.Record{}, ErrNoCandidate
	}
	return tt.Record{Rule: lastRule}, fmt.Errorf("rule %q: %w", lastRule, lastErr)
}

func (e *Engine) isIgnored(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ignoredRules[name]
}

// tolerated reports whether every active rule that could have matched line
// asked for failures to be dropped. Rules disabled with IgnoreRule are not
// candidates.
func (e *Engine) tolerated(line string) bool {
	e.mu.RLock()
	set := e.set
	e.mu.RUnlock()

	active := 0
	for _, rule := range set.candidates(line) {
		if e.isIgnored(rule.name) {
			continue
		}
		if !rule.ignoreFailure {
			return false
		}
		active++
	}
	return active > 0
}

// Run dissects every line of the given file.
func (e *Engine) Run(filename string) (tt.Report, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return tt.Report{}, fmt.Errorf("error reading file: %w", err)
	}
	return e.run(filename, content), nil
}

// RunSource dissects every line of source.
func (e *Engine) RunSource(source []byte) (tt.Report, error) {
	return e.run("", source), nil
}

func (e *Engine) run(source string, content []byte) tt.Report {
	var report tt.Report
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		record, err := e.Dissect(line)
		if err == nil {
			record.Source = source
			record.Line = i + 1
			report.Records = append(report.Records, record)
			continue
		}
		if e.tolerated(line) {
			continue
		}
		report.Failures = append(report.Failures, tt.Failure{
			Source:  source,
			Line:    i + 1,
			Input:   line,
			Rule:    record.Rule,
			Message: err.Error(),
		})
	}

	if e.logger != nil {
		e.logger.Debug("dissected source",
			zap.String("source", source),
			zap.Int("records", len(report.Records)),
			zap.Int("failures", len(report.Failures)),
		)
	}
	return report
}
