package internal

import (
	"errors"
	"fmt"

	"github.com/gnoswap-labs/dissect/dissect"
	"github.com/gnoswap-labs/dissect/internal/prefilter"
	"github.com/gnoswap-labs/dissect/internal/trie"
	tt "github.com/gnoswap-labs/dissect/internal/types"
)

// Rule is a named, compiled dissect pattern.
type Rule struct {
	name          string
	pattern       *dissect.Pattern
	prefix        string
	ignoreFailure bool
}

func (r *Rule) Name() string              { return r.name }
func (r *Rule) Pattern() *dissect.Pattern { return r.pattern }
func (r *Rule) IgnoreFailure() bool       { return r.ignoreFailure }

// Apply dissects line and prefixes every output field name.
func (r *Rule) Apply(line string) (map[string]string, error) {
	fields, err := r.pattern.Parse(line)
	if err != nil {
		return nil, err
	}
	if r.prefix == "" {
		return fields, nil
	}
	prefixed := make(map[string]string, len(fields))
	for k, v := range fields {
		prefixed[r.prefix+k] = v
	}
	return prefixed, nil
}

// ruleSet is an immutable, indexed collection of rules. The engine swaps the
// whole set on reload.
type ruleSet struct {
	rules  []*Rule
	byLead *trie.Trie
	filter *prefilter.Prefilter
}

// newRuleSet compiles every configured rule. All compile errors are reported
// together.
func newRuleSet(cache *PatternCache, separator string, configs []tt.ConfigRule) (*ruleSet, error) {
	set := &ruleSet{byLead: trie.New()}
	seen := make(map[string]bool, len(configs))

	var errs []error
	var delimiters [][]string
	for i, cfg := range configs {
		name := cfg.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i+1)
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("rule %q: duplicate rule name", name))
			continue
		}
		seen[name] = true

		sep := separator
		if cfg.AppendSeparator != nil {
			sep = *cfg.AppendSeparator
		}
		compiled, err := cache.Get(cfg.Pattern, sep)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", name, err))
			continue
		}

		idx := len(set.rules)
		set.rules = append(set.rules, &Rule{
			name:          name,
			pattern:       compiled,
			prefix:        cfg.Prefix,
			ignoreFailure: cfg.IgnoreFailure,
		})
		set.byLead.Insert(compiled.LeadingDelimiter(), idx)
		delimiters = append(delimiters, compiled.RequiredDelimiters())
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	set.filter = prefilter.New(delimiters)
	return set, nil
}

// candidates returns the rules that may match line, in configuration order.
func (s *ruleSet) candidates(line string) []*Rule {
	ids := s.filter.Candidates(line, s.byLead.Match(line))
	out := make([]*Rule, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.rules[id])
	}
	return out
}
