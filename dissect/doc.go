/*
Package dissect splits text into named fields using a pattern of literal
delimiters and %{...} placeholders.

# Overview

A dissect pattern describes the shape of a line the way a human would read it:
literal text that must be present, and placeholders that capture whatever lies
between the literals. Unlike a regular expression there is no backtracking. The
input is walked once from left to right and every placeholder ends at the first
occurrence of the literal that follows it.

	p, err := dissect.Compile("%{clientip} [%{ts}] \"%{verb} %{path}\"", "")
	if err != nil {
		return err
	}
	fields, err := p.Parse(`10.0.0.1 [17/Oct/2026:10:00:00] "GET /index.html"`)
	// fields == map[clientip:10.0.0.1 ts:17/Oct/2026:10:00:00 verb:GET path:/index.html]

A compiled Pattern is immutable. It can be cached and shared between any number
of goroutines calling Parse concurrently.

# Placeholder Syntax

  - %{name}        plain capture
  - %{}            skip: consumes a slot, dropped from the output
  - %{name->}      capture, then swallow repeats of the following delimiter
  - %{+name}       append to the field name, joined with the append separator
  - %{+name/2}     append with an explicit join position
  - %{?name}       the captured value becomes an output field name ...
  - %{&name}       ... and this captured value becomes that field's value
  - %{*name}       legacy spelling of %{?name}

The padding marker "->" may follow any of the forms above, for example
%{+name/1->} or %{->}.

Literal text before the first placeholder is the leading delimiter. Literal
text after a placeholder is that placeholder's delimiter; it may be empty only
for the last placeholder.

# Matching Rules

 1. The input must start with the leading delimiter and be longer than it.
 2. Each placeholder captures up to the first occurrence of its delimiter.
 3. Repeated delimiters produce empty values for the following placeholders,
    unless the current placeholder carries the "->" marker, in which case the
    repeats are swallowed.
 4. The last placeholder, if it has no delimiter, captures the rest of the
    input. With "->" its trailing whitespace is trimmed.
 5. Every placeholder must receive a value, otherwise the input does not match.

# Errors

Compile reports a *PatternError and Parse reports a *MatchError. Both unwrap to
the sentinels ErrPattern and ErrNoMatch respectively. A failed Parse never
returns partial results.
*/
package dissect
