// Package validate resolves references against the route inventory and
// classifies the ones that do not resolve.
package validate

import (
	"strings"

	"github.com/phobologic/linkcheck/internal/model"
)

// Validator checks references against a frozen inventory.
type Validator struct {
	inv    *model.Inventory
	assets AssetChecker
	// singular form of a reserved prefix → the prefix, e.g. "doc" → "docs"
	typos map[string]string
}

// New returns a Validator. docsPrefix and every dynamic namespace ending in
// "s" are treated as reserved prefixes whose singular form is a known typo.
func New(inv *model.Inventory, assets AssetChecker, docsPrefix string) *Validator {
	v := &Validator{inv: inv, assets: assets, typos: make(map[string]string)}
	for _, p := range append([]string{docsPrefix}, inv.Namespaces()...) {
		if len(p) < 2 || !strings.HasSuffix(p, "s") {
			continue
		}
		singular := p[:len(p)-1]
		if _, reserved := inv.Dynamic[singular]; reserved || singular == docsPrefix {
			continue
		}
		v.typos[singular] = p
	}
	return v
}

// Validate returns one finding per distinct unresolved (file, line, target).
func (v *Validator) Validate(refs []model.Reference) []model.Finding {
	seen := make(map[model.RefKey]struct{}, len(refs))
	var findings []model.Finding
	for _, r := range refs {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		route, fragment := Normalize(r.Target)
		if v.Resolves(route) {
			continue
		}
		f := v.classify(route)
		f.Reference = r
		if f.Fix != "" {
			f.Fix += fragment
		}
		findings = append(findings, f)
	}
	return findings
}

// Normalize trims target, strips one trailing slash (except for the root),
// and splits off the fragment. The fragment is returned with its "#".
func Normalize(target string) (route, fragment string) {
	route = strings.TrimSpace(target)
	if i := strings.IndexByte(route, '#'); i >= 0 {
		route, fragment = route[:i], route[i:]
	}
	if len(route) > 1 && strings.HasSuffix(route, "/") {
		route = route[:len(route)-1]
	}
	return route, fragment
}

// Resolves reports whether a normalized route is served by the site.
func (v *Validator) Resolves(route string) bool {
	if route == "/" || route == "" {
		return true
	}
	if v.inv.IsKnown(route) {
		return true
	}

	if ns, rest, ok := v.splitNamespace(route); ok {
		parts := strings.Split(rest, "/")
		if len(parts) == 1 && v.inv.HasSlug(ns, parts[0]) {
			return true
		}
		if len(parts) > 1 && v.assetExists(route) {
			return true
		}
	}

	return v.assetExists(route)
}

// PageRoute normalizes target and reports whether it names a page: the
// root, a known route, or a slug of a dynamic namespace. Assets are not pages.
func (v *Validator) PageRoute(target string) (string, bool) {
	route, _ := Normalize(target)
	if route == "" {
		return "", false
	}
	if route == "/" || v.inv.IsKnown(route) {
		return route, true
	}
	if ns, rest, ok := v.splitNamespace(route); ok && !strings.Contains(rest, "/") && v.inv.HasSlug(ns, rest) {
		return route, true
	}
	return "", false
}

func (v *Validator) assetExists(route string) bool {
	if v.assets == nil {
		return false
	}
	if v.assets.Exists(route) {
		return true
	}
	if i := strings.IndexByte(route, '?'); i >= 0 {
		return v.assets.Exists(route[:i])
	}
	return false
}

// splitNamespace returns the dynamic namespace of route and the non-empty
// remainder after "/<ns>/".
func (v *Validator) splitNamespace(route string) (ns, rest string, ok bool) {
	trimmed := strings.TrimPrefix(route, "/")
	first, rest, found := strings.Cut(trimmed, "/")
	if !found || rest == "" {
		return "", "", false
	}
	if _, dynamic := v.inv.Dynamic[first]; !dynamic {
		return "", "", false
	}
	return first, rest, true
}

func (v *Validator) classify(route string) model.Finding {
	if fix, ok := v.typoFix(route); ok {
		return model.Finding{Issue: model.Typo, Fix: fix, Severity: model.Error}
	}

	lower := strings.ToLower(route)
	for _, known := range v.inv.Known() {
		if known != route && strings.ToLower(known) == lower {
			return model.Finding{Issue: model.CaseMismatch, Fix: known, Severity: model.Error}
		}
	}

	if _, _, ok := v.splitNamespace(route); ok {
		return model.Finding{Issue: model.UnknownSlug, Severity: model.Warning}
	}

	return model.Finding{Issue: model.MissingRoute, Fix: v.similar(route), Severity: model.Info}
}

func (v *Validator) typoFix(route string) (string, bool) {
	trimmed := strings.TrimPrefix(route, "/")
	first, rest, hasRest := strings.Cut(trimmed, "/")
	plural, ok := v.typos[first]
	if !ok {
		return "", false
	}
	if hasRest {
		return "/" + plural + "/" + rest, true
	}
	return "/" + plural, true
}

// similar returns the first known route whose final segment contains, or is
// contained in, the final segment of route.
func (v *Validator) similar(route string) string {
	last := lastSegment(route)
	if last == "" {
		return ""
	}
	for _, known := range v.inv.Known() {
		kl := lastSegment(known)
		if kl == "" {
			continue
		}
		if strings.Contains(kl, last) || strings.Contains(last, kl) {
			return known
		}
	}
	return ""
}

func lastSegment(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
