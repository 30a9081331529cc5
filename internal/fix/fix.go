// Package fix rewrites auto-fixable references in place.
package fix

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/linkcheck/internal/model"
)

// Options controls how a plan is applied.
type Options struct {
	// DryRun computes the applied fixes without writing any file.
	DryRun bool
}

// BuildPlan groups every auto-fixable finding by file.
func BuildPlan(findings []model.Finding) model.RewritePlan {
	plan := make(model.RewritePlan)
	for i := range findings {
		f := &findings[i]
		if !f.AutoFixable() {
			continue
		}
		r := f.Reference
		plan[r.File] = append(plan[r.File], model.LineFix{
			Line:      r.Line,
			OldTarget: r.Target,
			NewTarget: f.Fix,
			Kind:      r.Kind,
			Also:      r.Also,
		})
	}
	return plan
}

// Apply executes plan against the files under root. Each file is read once,
// its fixes applied from the last line to the first, and written once if any
// line changed. Files that cannot be read or written are reported on stderr
// and contribute no applied fixes.
func Apply(root string, plan model.RewritePlan, opts Options, stderr io.Writer) (applied []model.AppliedFix, written []string) {
	files := make([]string, 0, len(plan))
	for f := range plan {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		fileApplied, err := applyFile(root, file, plan[file], opts)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", file, err)
			continue
		}
		if len(fileApplied) == 0 {
			continue
		}
		applied = append(applied, fileApplied...)
		if !opts.DryRun {
			written = append(written, file)
		}
	}
	return applied, written
}

func applyFile(root, file string, fixes []model.LineFix, opts Options) ([]model.AppliedFix, error) {
	path := filepath.Join(root, filepath.FromSlash(file))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")

	sorted := append([]model.LineFix(nil), fixes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Line > sorted[j].Line
	})

	var applied []model.AppliedFix
	for _, fx := range sorted {
		idx := fx.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		updated := RewriteLine(lines[idx], fx)
		if updated == lines[idx] {
			continue
		}
		lines[idx] = updated
		applied = append(applied, model.AppliedFix{File: file, LineFix: fx})
	}

	if len(applied) == 0 || opts.DryRun {
		return applied, nil
	}
	if err := replaceFile(path, []byte(strings.Join(lines, "\n"))); err != nil {
		return nil, err
	}
	return applied, nil
}

// RewriteLine replaces fx.OldTarget with fx.NewTarget wherever it appears on
// line in the shape of fx.Kind or any kind in fx.Also. All other characters
// are left untouched.
func RewriteLine(line string, fx model.LineFix) string {
	old := regexp.QuoteMeta(fx.OldTarget)
	repl := "${1}" + strings.ReplaceAll(fx.NewTarget, "$", "$$") + "${2}"
	for _, kind := range append([]model.ReferenceKind{fx.Kind}, fx.Also...) {
		for _, pattern := range shapes(kind) {
			re := regexp.MustCompile(fmt.Sprintf(pattern, old))
			line = re.ReplaceAllString(line, repl)
		}
	}
	return line
}

// shapes returns the patterns a target of kind is written in. Each pattern
// has a %s placeholder for the quoted target, with the text before it in
// group 1 and the closing delimiter in group 2.
func shapes(kind model.ReferenceKind) []string {
	switch kind {
	case model.SitemapEntry:
		return []string{
			"(\\$\\{[^}]+\\})%s(`)",
			"(url:\\s*['\"`]https?://[^/'\"`\\s]+)%s(['\"`])",
		}
	case model.TemplatedAttribute:
		return []string{"(href\\s*=\\s*\\{\\s*`)%s(`\\s*\\})"}
	case model.InlineDocLink:
		return []string{`(\]\()%s([\s)])`}
	default:
		return []string{
			`(href\s*=\s*\{?\s*")%s(")`,
			`(href\s*=\s*\{?\s*')%s(')`,
		}
	}
}
