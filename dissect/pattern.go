package dissect

import (
	"fmt"
	"sort"
	"strings"
)

// Pair is a key together with the literal that must follow its value.
type Pair struct {
	Key       Key
	Delimiter string
}

// Pattern is a compiled dissect pattern. It is immutable and safe for
// concurrent use.
type Pattern struct {
	text             string
	leadingDelimiter string
	pairs            []Pair
	appendSeparator  string

	needsPostProcessing bool
	// names of append groups, including plain keys that join them
	appendNames map[string]struct{}
}

// Compile parses pattern into a Pattern. appendSeparator is placed between the
// values of an append group.
func Compile(pattern, appendSeparator string) (*Pattern, error) {
	tokens, err := Lex(pattern)
	if err != nil {
		return nil, newPatternError(pattern, "%s", err.Error())
	}

	p := &Pattern{
		text:            pattern,
		appendSeparator: appendSeparator,
	}

	pos := 0
	if tokens[pos].Type == TokenLiteral {
		p.leadingDelimiter = tokens[pos].Value
		pos++
	}

	for pos < len(tokens) {
		token := tokens[pos]
		switch token.Type {
		case TokenEOF:
			pos = len(tokens)
			continue
		case TokenKey:
			key, err := ParseKey(token.Value)
			if err != nil {
				return nil, newPatternError(pattern, "%s", err.Error())
			}
			pair := Pair{Key: key}
			pos++
			if tokens[pos].Type == TokenLiteral {
				pair.Delimiter = tokens[pos].Value
				pos++
			} else if tokens[pos].Type == TokenKey {
				return nil, newPatternError(pattern, "keys %s and %s%s%s need a delimiter between them",
					key, keyOpen, tokens[pos].Value, string(keyClose))
			}
			p.pairs = append(p.pairs, pair)
		default:
			return nil, newPatternError(pattern, "unexpected token %v at col %d", token.Type, token.Pos+1)
		}
	}

	if len(p.pairs) == 0 || !p.hasOutputKey() {
		return nil, newPatternError(pattern, "unable to find any keys or delimiters")
	}
	if err := p.validateReferences(); err != nil {
		return nil, err
	}
	p.index()

	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern, appendSeparator string) *Pattern {
	p, err := Compile(pattern, appendSeparator)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) hasOutputKey() bool {
	for _, pair := range p.pairs {
		if !pair.Key.IsSkip() {
			return true
		}
	}
	return false
}

// validateReferences ensures every %{?name} has exactly one %{&name} partner.
func (p *Pattern) validateReferences() error {
	type refCount struct{ names, values int }
	refs := make(map[string]*refCount)

	for _, pair := range p.pairs {
		key := pair.Key
		if key.IsSkip() || !key.Modifier().IsReference() {
			continue
		}
		rc, ok := refs[key.Name()]
		if !ok {
			rc = &refCount{}
			refs[key.Name()] = rc
		}
		if key.Modifier() == ModifierFieldName {
			rc.names++
		} else {
			rc.values++
		}
	}

	var invalid []string
	for name, rc := range refs {
		if rc.names != 1 || rc.values != 1 {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return newPatternError(p.text,
		"found invalid key/reference associations: '%s'; please ensure each '?<key>' is matched with a matching '&<key>'",
		strings.Join(invalid, ","))
}

func (p *Pattern) index() {
	for _, pair := range p.pairs {
		key := pair.Key
		if key.IsSkip() {
			continue
		}
		if key.Modifier().IsAppend() {
			if p.appendNames == nil {
				p.appendNames = make(map[string]struct{})
			}
			p.appendNames[key.Name()] = struct{}{}
		}
		if key.Modifier() != ModifierNone {
			p.needsPostProcessing = true
		}
	}
}

// String returns the source text of the pattern.
func (p *Pattern) String() string { return p.text }

func (p *Pattern) LeadingDelimiter() string  { return p.leadingDelimiter }
func (p *Pattern) AppendSeparator() string   { return p.appendSeparator }
func (p *Pattern) NeedsPostProcessing() bool { return p.needsPostProcessing }

// Pairs returns a copy of the key/delimiter pairs in pattern order.
func (p *Pattern) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// Keys returns the keys in pattern order.
func (p *Pattern) Keys() []Key {
	keys := make([]Key, len(p.pairs))
	for i, pair := range p.pairs {
		keys[i] = pair.Key
	}
	return keys
}

// Delimiters returns the distinct non-empty literals of the pattern, leading
// delimiter first.
func (p *Pattern) Delimiters() []string {
	seen := make(map[string]bool, len(p.pairs)+1)
	var out []string
	add := func(d string) {
		if d == "" || seen[d] {
			return
		}
		seen[d] = true
		out = append(out, d)
	}
	add(p.leadingDelimiter)
	for _, pair := range p.pairs {
		add(pair.Delimiter)
	}
	return out
}

// GoString renders the compiled structure, mostly for debugging.
func (p *Pattern) GoString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pattern(%q, leading=%q", p.text, p.leadingDelimiter)
	for _, pair := range p.pairs {
		fmt.Fprintf(&sb, ", %s%q", pair.Key, pair.Delimiter)
	}
	sb.WriteString(")")
	return sb.String()
}

// RequiredDelimiters returns the literals every matching input contains: the
// leading delimiter and the delimiter that ends the first key. Delimiters after
// that may never be searched for when the first one repeats, as in
// "%{a},%{b};%{c}" matching "x,,".
func (p *Pattern) RequiredDelimiters() []string {
	var out []string
	if p.leadingDelimiter != "" {
		out = append(out, p.leadingDelimiter)
	}
	if first := p.pairs[0].Delimiter; first != "" && first != p.leadingDelimiter {
		out = append(out, first)
	}
	return out
}
