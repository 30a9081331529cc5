package routes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/linkcheck/internal/lang"
	"github.com/phobologic/linkcheck/internal/parse"
)

// LoadSlugs reads the data file src (relative to root) and returns the string
// values of every field property, in source order.
//
// TypeScript and JavaScript files are parsed with tree-sitter; YAML and JSON
// files are decoded; anything else, and script files tree-sitter finds
// nothing in, is scanned with a `field: 'value'` pattern.
func LoadSlugs(root, src, field string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(src)))
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(src)
	switch ext {
	case ".yaml", ".yml", ".json":
		return yamlValues(data, field)
	}

	if name := lang.ForExtension(ext); name != "" {
		if values := treeSitterValues(lang.Languages[name], data, field); len(values) > 0 {
			return values, nil
		}
	}
	return patternValues(data, field), nil
}

func treeSitterValues(l *lang.Language, data []byte, field string) []string {
	q, err := l.PairQuery()
	if err != nil {
		return nil
	}
	pairs, err := parse.ExtractPairs(l.NewParser(), q, data)
	if err != nil {
		return nil
	}
	return parse.Values(pairs, field)
}

func patternValues(data []byte, field string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(field) + `:\s*['"]([^'"]+)['"]`)
	var out []string
	for _, m := range re.FindAllSubmatch(data, -1) {
		out = append(out, string(m[1]))
	}
	return out
}

func yamlValues(data []byte, field string) ([]string, error) {
	var out []string
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding: %w", err)
		}
		collectField(&doc, field, &out)
	}
	return out, nil
}

// collectField walks n in document order and appends the scalar value of
// every mapping entry keyed by field.
func collectField(n *yaml.Node, field string, out *[]string) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			collectField(c, field, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Value == field && v.Kind == yaml.ScalarNode && v.Value != "" {
				*out = append(*out, v.Value)
				continue
			}
			collectField(v, field, out)
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			collectField(n.Alias, field, out)
		}
	}
}
