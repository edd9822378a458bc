// Package internal runs sets of dissect rules over line-oriented input.
//
// Key components:
//
// Engine: holds the compiled rules and dissects lines, files and raw sources.
// Rules are tried in configuration order and the first match wins. Lines no
// rule matches become failures unless every candidate rule ignores failures.
//
// Rule: a named dissect pattern with an optional output field prefix.
//
// PatternCache: a concurrency-safe cache of compiled patterns keyed by pattern
// text and append separator.
//
// Before a rule is tried, two cheap checks narrow the candidates: a trie over
// leading delimiters and an Aho-Corasick scan for the literals every match
// must contain.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, " ", rules)
//	if err != nil {
//	    // handle error
//	}
//	report, err := engine.Run("access.log")
package internal
