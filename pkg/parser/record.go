package parser

import (
	"sort"

	"github.com/jmespath/go-jmespath"
)

// Record is one flat entry produced by a format parser, before column
// extraction. Most entries are key→value mappings; a bare scalar inside an
// array root is preserved as-is and used directly as the value of every
// column (compatibility mode).
type Record struct {
	value any
	keys  []string // shallow key order when the source format defines one
}

// NewRecord wraps an arbitrary parsed entry.
func NewRecord(v any) Record {
	return Record{value: v}
}

// NewOrderedRecord wraps a mapping whose shallow key order is known, e.g.
// a delimited-text row keyed by its header.
func NewOrderedRecord(fields map[string]any, keys []string) Record {
	return Record{value: fields, keys: keys}
}

// Value returns the underlying parsed entry.
func (r Record) Value() any {
	return r.value
}

// IsScalar reports whether the record is a bare non-mapping entry.
func (r Record) IsScalar() bool {
	_, ok := r.value.(map[string]any)
	return !ok
}

// Get resolves a selector path against the record. A missing or unresolvable
// path yields nil, never an error.
func (r Record) Get(selector string) any {
	return Select(r.value, selector)
}

// Keys returns the record's shallow key set. When the source format did not
// define an order, keys come back sorted so inference stays deterministic.
func (r Record) Keys() []string {
	if r.keys != nil {
		return r.keys
	}
	fields, ok := r.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Select resolves a dot/array-index path expression against a parsed tree.
// An empty selector returns the tree itself. Paths that fail to compile or
// resolve yield nil.
func Select(tree any, selector string) any {
	if selector == "" {
		return tree
	}
	if fields, ok := tree.(map[string]any); ok {
		// a plain key wins over path interpretation, so keys containing
		// dots remain addressable
		if v, ok := fields[selector]; ok {
			return v
		}
	}
	out, err := jmespath.Search(selector, tree)
	if err != nil {
		return nil
	}
	return out
}
