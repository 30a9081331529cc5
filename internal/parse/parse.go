// Package parse extracts string-valued object properties from source files
// using tree-sitter.
package parse

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Pair is one `key: 'value'` property found in an object literal.
type Pair struct {
	Key   string
	Value string
	Line  int
	start uint32
}

// ExtractPairs parses source and returns every object property whose value is
// a plain string literal, in source order.
// The parser must be created for the correct language.
func ExtractPairs(parser *sitter.Parser, query *sitter.Query, source []byte) ([]Pair, error) {
	if len(source) == 0 {
		return nil, nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var pairs []Pair

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}

		var keyNode, valueNode *sitter.Node
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "key":
				keyNode = c.Node
			case "value":
				valueNode = c.Node
			}
		}
		if keyNode == nil || valueNode == nil {
			continue
		}

		pairs = append(pairs, Pair{
			Key:   unquote(nodeText(keyNode, source)),
			Value: unquote(nodeText(valueNode, source)),
			Line:  int(keyNode.StartPoint().Row) + 1,
			start: keyNode.StartByte(),
		})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].start < pairs[j].start
	})

	return pairs, nil
}

// Values returns the values of all pairs whose key equals field.
func Values(pairs []Pair, field string) []string {
	var out []string
	for _, p := range pairs {
		if p.Key == field {
			out = append(out, p.Value)
		}
	}
	return out
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' || first == '"' || first == '`') && last == first {
			return s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
