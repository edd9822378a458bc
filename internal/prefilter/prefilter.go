// Package prefilter rejects rules early when a line cannot contain all of
// their literal delimiters.
package prefilter

import (
	"strings"

	ac "github.com/petar-dambovaliev/aho-corasick"
)

// Stats describes the literal set behind a Prefilter.
type Stats struct {
	PatternCount int `json:"pattern_count"`
	RuleCount    int `json:"rule_count"`
}

// Prefilter answers "may rule i match this line" using a single Aho-Corasick
// pass over the line. A rule is rejected only when one of its required
// literals is definitely absent. Callers must pass only literals that every
// matching line contains, such as dissect.Pattern.RequiredDelimiters.
type Prefilter struct {
	automaton *ac.AhoCorasick
	patterns  []string
	// rule index -> indices into patterns
	required [][]int
	stats    Stats
}

// New builds a prefilter from the required literals of each rule, indexed like
// the rules themselves.
func New(delimiters [][]string) *Prefilter {
	dedupe := make(map[string]int)
	p := &Prefilter{
		required: make([][]int, len(delimiters)),
	}

	for rule, delims := range delimiters {
		for _, d := range delims {
			if d == "" {
				continue
			}
			idx, ok := dedupe[d]
			if !ok {
				idx = len(p.patterns)
				p.patterns = append(p.patterns, d)
				dedupe[d] = idx
			}
			p.required[rule] = append(p.required[rule], idx)
		}
	}

	if len(p.patterns) > 0 {
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			AsciiCaseInsensitive: false,
			MatchOnlyWholeWords:  false,
			MatchKind:            ac.LeftMostLongestMatch,
		})
		automaton := builder.Build(p.patterns)
		p.automaton = &automaton
	}

	p.stats = Stats{PatternCount: len(p.patterns), RuleCount: len(delimiters)}
	return p
}

func (p *Prefilter) Stats() Stats { return p.stats }

const (
	unknown = iota
	present
	absent
)

// Candidates returns the subset of rules that may match line, keeping order.
func (p *Prefilter) Candidates(line string, rules []int) []int {
	if p.automaton == nil || len(rules) == 0 {
		return rules
	}

	state := make([]uint8, len(p.patterns))
	for _, m := range p.automaton.FindAll(line) {
		state[m.Pattern()] = present
	}

	// FindAll reports non-overlapping matches only, so a literal hidden
	// inside a longer match is confirmed with a direct search.
	isPresent := func(idx int) bool {
		switch state[idx] {
		case present:
			return true
		case absent:
			return false
		}
		if strings.Contains(line, p.patterns[idx]) {
			state[idx] = present
			return true
		}
		state[idx] = absent
		return false
	}

	out := make([]int, 0, len(rules))
	for _, rule := range rules {
		if rule < 0 || rule >= len(p.required) {
			continue
		}
		ok := true
		for _, idx := range p.required[rule] {
			if !isPresent(idx) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rule)
		}
	}
	return out
}
