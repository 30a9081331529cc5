// Package report renders scan results as a Markdown audit report.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phobologic/linkcheck/internal/model"
)

// Markdown renders result as the audit report. links are the route links to
// list as most linked, already ranked and trimmed.
func Markdown(result *model.ScanResult, links []model.RouteLink, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Link Scan Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Total Links Scanned:** %d\n", len(result.References))
	fmt.Fprintf(&b, "- **Broken Links Found:** %d\n", len(result.Findings))
	fmt.Fprintf(&b, "- **Auto-Fixed:** %d\n\n", len(result.Applied))

	errors := bySeverity(result.Findings, model.Error)
	warnings := bySeverity(result.Findings, model.Warning)
	infos := bySeverity(result.Findings, model.Info)

	b.WriteString("## Broken Links by Severity\n\n")
	fmt.Fprintf(&b, "- **Errors:** %d\n", len(errors))
	fmt.Fprintf(&b, "- **Warnings:** %d\n", len(warnings))
	fmt.Fprintf(&b, "- **Info:** %d\n\n", len(infos))

	if len(errors) > 0 {
		fmt.Fprintf(&b, "## Errors (%d)\n\n", len(errors))
		for _, f := range errors {
			r := f.Reference
			fmt.Fprintf(&b, "### `%s` in %s:%d\n\n", r.Target, r.File, r.Line)
			fmt.Fprintf(&b, "- **Issue:** %s\n", f.Issue)
			if f.Fix != "" {
				fmt.Fprintf(&b, "- **Suggested Fix:** `%s`\n", f.Fix)
			}
			fmt.Fprintf(&b, "- **Context:** `%s`\n\n", contextText(r))
		}
	}

	writeBullets(&b, "Warnings", warnings)
	writeBullets(&b, "Info", infos)

	if len(result.Applied) > 0 {
		fmt.Fprintf(&b, "## Auto-Fixed Links (%d)\n\n", len(result.Applied))
		for _, a := range result.Applied {
			fmt.Fprintf(&b, "- `%s` → `%s` in %s:%d\n", a.OldTarget, a.NewTarget, a.File, a.Line)
		}
		b.WriteString("\n")
	}

	if len(links) > 0 {
		fmt.Fprintf(&b, "## Most-Linked Routes (%d)\n\n", len(links))
		b.WriteString("| Route | Links | Files | Rank |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, l := range links {
			fmt.Fprintf(&b, "| `%s` | %d | %d | %.4f |\n", l.Route, l.Count, len(l.Sources), l.Rank)
		}
		b.WriteString("\n")
	}

	if len(result.Unreferenced) > 0 {
		fmt.Fprintf(&b, "## Unreferenced Routes (%d)\n\n", len(result.Unreferenced))
		for _, r := range result.Unreferenced {
			fmt.Fprintf(&b, "- `%s`\n", r)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Route Map Summary\n\n")
	if inv := result.Inventory; inv != nil {
		fmt.Fprintf(&b, "- Static routes: %d\n", inv.Static.Len())
		fmt.Fprintf(&b, "- Docs routes: %d\n", inv.Docs.Len())
		for _, ns := range inv.Namespaces() {
			fmt.Fprintf(&b, "- %s slugs: %d\n", ns, inv.Dynamic[ns].Len())
		}
	}

	return b.String()
}

func writeBullets(b *strings.Builder, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s (%d)\n\n", title, len(findings))
	for _, f := range findings {
		r := f.Reference
		fmt.Fprintf(b, "- `%s` in %s:%d - %s", r.Target, r.File, r.Line, f.Issue)
		if f.Fix != "" {
			fmt.Fprintf(b, " (did you mean `%s`?)", f.Fix)
		}
		fmt.Fprintf(b, "\n  - Context: `%s`\n", contextText(r))
	}
	b.WriteString("\n")
}

// contextText is the reference's source line, safe inside a code span.
func contextText(r model.Reference) string {
	if r.Context == "" {
		return "N/A"
	}
	return strings.ReplaceAll(r.Context, "`", "'")
}

func bySeverity(findings []model.Finding, s model.Severity) []model.Finding {
	var out []model.Finding
	for i := range findings {
		if findings[i].Severity == s {
			out = append(out, findings[i])
		}
	}
	return out
}

// Write saves content to path. A failure is reported on stderr and
// otherwise ignored; the report never fails a run.
func Write(path, content string, stderr io.Writer) bool {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", path, err)
		return false
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: %s: %v\n", path, err)
		return false
	}
	return true
}
