// Package variables evaluates variable queries: the free-text legacy
// expression language, and extraction of key/value pairs from a resolved
// table.
package variables

import (
	"math/rand"
	"strings"

	"github.com/grafana/regexp"
)

// VariableResult is one key/value pair produced by a variable query.
type VariableResult struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Legacy expression functions.
const (
	funcRandom           = "Random"
	funcJoin             = "Join"
	funcCollection       = "Collection"
	funcCollectionLookup = "CollectionLookup"
)

// legacyExprRegex matches `FuncName(arg1,arg2,...)`. Arguments are literal
// strings, no nested parentheses and no comma escaping.
var legacyExprRegex = regexp.MustCompile(`^\s*(\w+)\s*\((.*)\)\s*$`)

// InterpretLegacyQuery parses and evaluates a legacy variable-query
// expression. Unrecognized function names and malformed expressions yield an
// empty result list; callers treat no-match as a valid outcome, never a
// failure.
func InterpretLegacyQuery(expression string) []VariableResult {
	match := legacyExprRegex.FindStringSubmatch(expression)
	if match == nil {
		return nil
	}
	name, args := match[1], splitArgs(match[2])
	switch name {
	case funcRandom:
		return legacyRandom(args)
	case funcJoin:
		return legacyJoin(args)
	case funcCollection:
		return legacyCollection(args)
	case funcCollectionLookup:
		return legacyCollectionLookup(args)
	default:
		return nil
	}
}

func splitArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// legacyRandom picks one argument uniformly at random.
func legacyRandom(args []string) []VariableResult {
	if len(args) == 0 {
		return nil
	}
	chosen := args[rand.Intn(len(args))]
	return []VariableResult{{Text: chosen, Value: chosen}}
}

// legacyJoin concatenates every argument in order with no separator.
func legacyJoin(args []string) []VariableResult {
	if len(args) == 0 {
		return nil
	}
	joined := strings.Join(args, "")
	return []VariableResult{{Text: joined, Value: joined}}
}

// legacyCollection consumes arguments pairwise as text/value; an odd
// trailing argument is ignored.
func legacyCollection(args []string) []VariableResult {
	var out []VariableResult
	for i := 0; i+1 < len(args); i += 2 {
		out = append(out, VariableResult{Text: args[i], Value: args[i+1]})
	}
	return out
}

// legacyCollectionLookup treats all arguments but the last as key/value
// pairs and the last as the lookup key. The first matching pair in argument
// order wins; no match yields no results.
func legacyCollectionLookup(args []string) []VariableResult {
	if len(args) < 3 {
		return nil
	}
	needle := args[len(args)-1]
	pairs := args[:len(args)-1]
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == needle {
			return []VariableResult{{Text: pairs[i+1], Value: pairs[i+1]}}
		}
	}
	return nil
}
