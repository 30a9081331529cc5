// Package model defines core data structures for linkcheck.
package model

// ReferenceKind indicates the authoring convention a reference was found in.
type ReferenceKind string

const (
	NavigationLink     ReferenceKind = "link"
	GenericAttribute   ReferenceKind = "href"
	InlineDocLink      ReferenceKind = "markdown"
	TemplatedAttribute ReferenceKind = "template"
	SitemapEntry       ReferenceKind = "sitemap"
)

// Issue classifies why a reference failed to resolve.
type Issue string

const (
	Typo         Issue = "typo"
	CaseMismatch Issue = "case_mismatch"
	UnknownSlug  Issue = "invalid_slug"
	MissingRoute Issue = "missing_route"
)

// Severity orders findings in the report.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Reference is a single internal path occurrence extracted from source text.
type Reference struct {
	File    string // Relative to project root, slash-separated
	Line    int    // 1-based
	Target  string
	Kind    ReferenceKind
	Also    []ReferenceKind // other kinds matching the same file, line and target
	Context string
}

// Key identifies a reference for deduplication.
func (r Reference) Key() RefKey {
	return RefKey{File: r.File, Line: r.Line, Target: r.Target}
}

// RefKey is the (file, line, target) triple references are deduplicated on.
type RefKey struct {
	File   string
	Line   int
	Target string
}

// Finding is the validator's verdict on a reference that did not resolve.
type Finding struct {
	Reference Reference
	Issue     Issue
	Fix       string // Empty when no fix is proposed
	Severity  Severity
}

// AutoFixable reports whether the finding may be rewritten without review.
func (f Finding) AutoFixable() bool {
	return f.Severity == Error && f.Fix != ""
}

// LineFix is one planned target replacement on a single line.
type LineFix struct {
	Line      int
	OldTarget string
	NewTarget string
	Kind      ReferenceKind
	Also      []ReferenceKind
}

// RewritePlan groups line fixes by file so each file is rewritten once.
type RewritePlan map[string][]LineFix

// AppliedFix records a line fix that changed its line.
type AppliedFix struct {
	File string
	LineFix
}

// RouteLink is an edge bundle in the link graph: every source file that
// references Route, with the total number of references.
type RouteLink struct {
	Route   string
	Sources []string
	Count   int
	Rank    float64
}

// ScanResult is the complete outcome of one run, ready for reporting.
type ScanResult struct {
	Inventory    *Inventory
	References   []Reference
	Findings     []Finding
	Applied      []AppliedFix
	FilesWritten []string
	RouteLinks   []RouteLink
	Unreferenced []string
}

// CountBySeverity returns the number of findings with severity s.
func (r *ScanResult) CountBySeverity(s Severity) int {
	n := 0
	for i := range r.Findings {
		if r.Findings[i].Severity == s {
			n++
		}
	}
	return n
}
