// Package ranking narrows scan results for reporting.
package ranking

import (
	"strings"

	"github.com/phobologic/linkcheck/internal/model"
)

// TopRoutes returns the first n ranked route links.
// If n is <= 0 or >= len(links), all links are returned.
func TopRoutes(links []model.RouteLink, n int) []model.RouteLink {
	if n <= 0 || n >= len(links) {
		return links
	}
	return links[:n]
}

// FilterByFile returns a copy of result restricted to references, findings,
// and fixes in files whose path contains substr (case-insensitive). The
// inventory and link graph are left whole.
func FilterByFile(result *model.ScanResult, substr string) *model.ScanResult {
	if substr == "" {
		return result
	}
	lower := strings.ToLower(substr)
	match := func(file string) bool {
		return strings.Contains(strings.ToLower(file), lower)
	}

	out := *result
	out.References = nil
	for i := range result.References {
		if match(result.References[i].File) {
			out.References = append(out.References, result.References[i])
		}
	}

	out.Findings = nil
	for i := range result.Findings {
		if match(result.Findings[i].Reference.File) {
			out.Findings = append(out.Findings, result.Findings[i])
		}
	}

	out.Applied = nil
	for i := range result.Applied {
		if match(result.Applied[i].File) {
			out.Applied = append(out.Applied, result.Applied[i])
		}
	}

	out.FilesWritten = nil
	for _, f := range result.FilesWritten {
		if match(f) {
			out.FilesWritten = append(out.FilesWritten, f)
		}
	}

	return &out
}

// FilterBySeverity drops findings below min. Errors rank highest, then
// warnings, then info.
func FilterBySeverity(findings []model.Finding, min model.Severity) []model.Finding {
	floor := severityOrder(min)
	var out []model.Finding
	for i := range findings {
		if severityOrder(findings[i].Severity) >= floor {
			out = append(out, findings[i])
		}
	}
	return out
}

func severityOrder(s model.Severity) int {
	switch s {
	case model.Error:
		return 2
	case model.Warning:
		return 1
	default:
		return 0
	}
}
