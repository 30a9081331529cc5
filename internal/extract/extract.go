// Package extract finds internal path references in source text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/phobologic/linkcheck/internal/config"
	"github.com/phobologic/linkcheck/internal/discover"
	"github.com/phobologic/linkcheck/internal/model"
)

// Extractor applies the reference matchers to project files.
type Extractor struct {
	sourceDirs []string
	extensions []string
	sitemap    string
	assetExts  []string
}

// New returns an Extractor configured from cfg.
func New(cfg *config.Config) *Extractor {
	assets := make([]string, len(cfg.AssetExtensions))
	for i, ext := range cfg.AssetExtensions {
		assets[i] = strings.ToLower(ext)
	}
	return &Extractor{
		sourceDirs: cfg.SourceDirs,
		extensions: cfg.Extensions,
		sitemap:    filepath.ToSlash(cfg.Sitemap),
		assetExts:  assets,
	}
}

// Scan reads every source file below the configured dirs, plus the sitemap,
// and returns their deduplicated references. Files that cannot be read are
// reported on stderr and skipped.
func (e *Extractor) Scan(w *discover.Walker, stderr io.Writer) ([]model.Reference, error) {
	files, err := w.FilesIn(e.sourceDirs, discover.ByExtension(e.extensions))
	if err != nil {
		return nil, fmt.Errorf("walking source dirs: %w", err)
	}

	if e.sitemap != "" && !contains(files, e.sitemap) {
		if _, err := os.Stat(filepath.Join(w.Root(), filepath.FromSlash(e.sitemap))); err == nil {
			files = append(files, e.sitemap)
		}
	}

	var refs []model.Reference
	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(w.Root(), filepath.FromSlash(f)))
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", f, err)
			continue
		}
		refs = append(refs, e.FromContent(f, content)...)
	}
	return Dedupe(refs), nil
}

// FromContent extracts the internal references in content, which was read
// from file. Matchers run in a fixed order and each reports in source order.
func (e *Extractor) FromContent(file string, content []byte) []model.Reference {
	matchers := fileMatchers
	if file == e.sitemap {
		matchers = append(append([]matcher{}, fileMatchers...), sitemapMatcher)
	}

	lines := newLineIndex(content)
	claimed := make(map[int]struct{})

	var refs []model.Reference
	for _, m := range matchers {
		for _, hit := range m.find(content, claimed) {
			if !IsInternal(hit.target, e.assetExts) {
				continue
			}
			line := lines.lineOf(hit.start)
			refs = append(refs, model.Reference{
				File:    file,
				Line:    line,
				Target:  hit.target,
				Kind:    m.kind,
				Context: lines.text(content, line),
			})
		}
	}
	return refs
}

// IsInternal reports whether target is a site-internal path worth checking:
// it starts with a single "/", is not a protocol or mailto URL, and does not
// name a static asset by extension (ignoring query and fragment).
func IsInternal(target string, assetExts []string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "mailto:") {
		return false
	}
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range assetExts {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// Dedupe drops references repeating an earlier (file, line, target) triple.
// The kind of a dropped repeat is recorded in the kept reference's Also.
func Dedupe(refs []model.Reference) []model.Reference {
	seen := make(map[model.RefKey]int, len(refs))
	out := refs[:0:0]
	for _, r := range refs {
		k := r.Key()
		if i, dup := seen[k]; dup {
			kept := &out[i]
			if r.Kind != kept.Kind && !slices.Contains(kept.Also, r.Kind) {
				kept.Also = append(kept.Also, r.Kind)
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, r)
	}
	return out
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(content []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (li lineIndex) lineOf(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}

func (li lineIndex) text(content []byte, line int) string {
	start := li[line-1]
	end := len(content)
	if line < len(li) {
		end = li[line] - 1
	}
	return string(bytes.TrimSpace(content[start:end]))
}

func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}
