// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/linkcheck/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a ScanResult into TOON format. Route links are emitted in
// the order given, so callers pass an already ranked and trimmed result.
func Encode(root string, result *model.ScanResult) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(root)))
	parts = append(parts, fmt.Sprintf("scanned: %d", len(result.References)))
	parts = append(parts, fmt.Sprintf("broken: %d", len(result.Findings)))
	parts = append(parts, fmt.Sprintf("fixed: %d", len(result.Applied)))

	var findingRows [][]string
	for i := range result.Findings {
		f := &result.Findings[i]
		findingRows = append(findingRows, []string{
			f.Reference.File,
			strconv.Itoa(f.Reference.Line),
			f.Reference.Target,
			string(f.Reference.Kind),
			string(f.Issue),
			string(f.Severity),
			f.Fix,
		})
	}
	parts = append(parts, formatTabular("findings",
		[]string{"file", "line", "target", "kind", "issue", "severity", "fix"}, findingRows))

	var fixRows [][]string
	for i := range result.Applied {
		a := &result.Applied[i]
		fixRows = append(fixRows, []string{
			a.File,
			strconv.Itoa(a.Line),
			a.OldTarget,
			a.NewTarget,
		})
	}
	parts = append(parts, formatTabular("fixes", []string{"file", "line", "old", "new"}, fixRows))

	var routeRows [][]string
	for i := range result.RouteLinks {
		l := &result.RouteLinks[i]
		routeRows = append(routeRows, []string{
			l.Route,
			strconv.Itoa(l.Count),
			strconv.Itoa(len(l.Sources)),
			fmt.Sprintf("%.4f", l.Rank),
		})
	}
	parts = append(parts, formatTabular("routes", []string{"route", "links", "files", "rank"}, routeRows))

	if len(result.Unreferenced) > 0 {
		rows := make([][]string, len(result.Unreferenced))
		for i, r := range result.Unreferenced {
			rows[i] = []string{r}
		}
		parts = append(parts, formatTabular("unreferenced", []string{"route"}, rows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
