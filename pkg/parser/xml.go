package parser

import (
	mxj "github.com/clbanning/mxj/v2"
)

// ParseXML deserializes hierarchical markup into a tree and walks to the
// root selector. Elements become mappings, repeated elements become slices.
// Malformed markup recovers locally to an empty record sequence instead of
// propagating a decode error.
func ParseXML(raw string, rootSelector string) ([]Record, error) {
	tree, err := mxj.NewMapXml([]byte(raw))
	if err != nil {
		return nil, nil
	}
	root := Select(map[string]any(tree), rootSelector)
	return recordsFromRoot(root), nil
}
