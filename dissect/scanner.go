package dissect

import "strings"

// asciiSpace is the whitespace trimmed from the final key under "->".
const asciiSpace = " \t\n\v\f\r"

// rawMatch is a value captured for the key at pairs[index].
type rawMatch struct {
	index int
	key   Key
	value string
}

// scanner holds the scratch state of a single Parse call.
type scanner struct {
	pairs   []Pair
	input   string
	matches []rawMatch

	cur        int // index of the current pair
	pos        int
	valueStart int
}

func newScanner(p *Pattern, input string) *scanner {
	return &scanner{
		pairs:   p.pairs,
		input:   input,
		matches: make([]rawMatch, 0, len(p.pairs)),
	}
}

// hasDelimiterAt reports whether delim occurs in s starting at i.
func hasDelimiterAt(s string, i int, delim string) bool {
	if delim == "" || i+len(delim) > len(s) || s[i] != delim[0] {
		return false
	}
	for j := 1; j < len(delim); j++ {
		if s[i+j] != delim[j] {
			return false
		}
	}
	return true
}

func (s *scanner) emit(value string) {
	s.matches = append(s.matches, rawMatch{
		index: s.cur,
		key:   s.pairs[s.cur].Key,
		value: value,
	})
}

func (s *scanner) hasNext() bool { return s.cur+1 < len(s.pairs) }

// run walks the input once, starting right after the leading delimiter.
func (s *scanner) run(start int) {
	s.pos = start
	s.valueStart = start
	key := s.pairs[0].Key
	delim := s.pairs[0].Delimiter

	for s.pos < len(s.input) {
		if !hasDelimiterAt(s.input, s.pos, delim) {
			s.pos++
			continue
		}

		s.emit(s.input[s.valueStart:s.pos])
		s.pos += len(delim)

		// consecutive delimiters, e.g. "a,,,d"
		for hasDelimiterAt(s.input, s.pos, delim) {
			s.pos += len(delim)
			if key.SkipRightPadding() {
				continue
			}
			if !s.hasNext() {
				break
			}
			s.cur++
			key = s.pairs[s.cur].Key
			s.emit("")
		}

		if !s.hasNext() {
			break
		}
		s.cur++
		key = s.pairs[s.cur].Key
		delim = s.pairs[s.cur].Delimiter
		s.valueStart = s.pos
	}

	// the last key takes the rest of the input when it has no trailing delimiter
	if len(s.matches) < len(s.pairs) && delim == "" {
		value := s.input[s.valueStart:]
		if key.SkipRightPadding() {
			value = strings.TrimRight(value, asciiSpace)
		}
		s.emit(value)
	}
}

// complete reports whether every key of the pattern received exactly one value.
func (s *scanner) complete() bool {
	if len(s.matches) != len(s.pairs) {
		return false
	}
	seen := make([]bool, len(s.pairs))
	for _, m := range s.matches {
		if seen[m.index] {
			return false
		}
		seen[m.index] = true
	}
	return true
}

// Parse dissects input into a field map. The returned map is owned by the
// caller. A *MatchError is returned if the input does not fit the pattern.
func (p *Pattern) Parse(input string) (map[string]string, error) {
	if len(input) <= len(p.leadingDelimiter) || !strings.HasPrefix(input, p.leadingDelimiter) {
		return nil, &MatchError{Pattern: p.text, Input: input}
	}

	s := newScanner(p, input)
	s.run(len(p.leadingDelimiter))
	if !s.complete() {
		return nil, &MatchError{Pattern: p.text, Input: input}
	}

	return p.results(s.matches), nil
}
