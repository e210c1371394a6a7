package recipes

import (
	"fmt"
	"strings"
)

// QueryExpander rewrites a lowercased search query before it is embedded.
type QueryExpander interface {
	Expand(query string) string
}

// NoExpansion leaves the query untouched.
type NoExpansion struct{}

func (NoExpansion) Expand(query string) string { return query }

type suffixRule struct {
	from, to string
}

// SwedishSuffix appends naive inflection variants of the query (kaka/kake,
// soppan/soppa, ...). It is a heuristic: every rule is applied to the
// original query and a rule that does not match contributes the query
// unchanged.
type SwedishSuffix struct{}

var swedishRules = []suffixRule{
	{"e", "a"},
	{"a", "e"},
	{"en", "a"},
	{"a", "en"},
}

func (SwedishSuffix) Expand(query string) string {
	variants := make([]string, 0, len(swedishRules)+1)
	variants = append(variants, query)
	for _, rule := range swedishRules {
		if strings.HasSuffix(query, rule.from) {
			variants = append(variants, strings.TrimSuffix(query, rule.from)+rule.to)
		} else {
			variants = append(variants, query)
		}
	}
	return strings.Join(variants, " ")
}

// ExpanderFor maps a config name to an expander.
func ExpanderFor(name string) (QueryExpander, error) {
	switch name {
	case "", "swedish_suffix":
		return SwedishSuffix{}, nil
	case "none":
		return NoExpansion{}, nil
	default:
		return nil, fmt.Errorf("unknown query expansion %q", name)
	}
}
