package extract

import (
	"regexp"
	"strings"

	"github.com/phobologic/linkcheck/internal/model"
)

// match is one raw target occurrence; start is the byte offset of the target.
type match struct {
	start  int
	target string
}

// matcher finds targets of one authoring convention in file content.
// claimed holds target offsets already attributed to an earlier matcher.
type matcher struct {
	kind model.ReferenceKind
	find func(content []byte, claimed map[int]struct{}) []match
}

var (
	// <Link href="/x">, <Link className="a" href={'/x'}>
	navLinkRe = regexp.MustCompile(`<Link\s+[^>]*?href\s*=\s*\{?\s*['"]([^'"]+)['"]`)
	// href="/x" on any element
	hrefRe = regexp.MustCompile(`href\s*=\s*\{?\s*['"]([^'"]+)['"]`)
	// [text](/x), excluding ![alt](/x)
	markdownRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	imageRe    = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	// href={`/x`} without interpolation
	templateHrefRe = regexp.MustCompile("href\\s*=\\s*\\{\\s*`([^`${]+)`\\s*\\}")
	// url: 'https://example.com/x'
	sitemapURLRe = regexp.MustCompile("url:\\s*[`'\"]?https?://[^/'\"`\\s]+(/[^`'\"\\s]*)")
	// url: `${baseUrl}/x`
	sitemapTemplateRe = regexp.MustCompile("url:\\s*`\\$\\{[^}]+\\}(/[^`]*)`")
)

// fileMatchers apply to every scanned file, in this order.
var fileMatchers = []matcher{
	{kind: model.NavigationLink, find: findNavLinks},
	{kind: model.GenericAttribute, find: findHrefs},
	{kind: model.InlineDocLink, find: findMarkdownLinks},
	{kind: model.TemplatedAttribute, find: findTemplateHrefs},
}

// sitemapMatcher applies only to the configured sitemap file, after fileMatchers.
var sitemapMatcher = matcher{kind: model.SitemapEntry, find: findSitemapURLs}

func submatches(re *regexp.Regexp, content []byte, group int) []match {
	var out []match
	for _, loc := range re.FindAllSubmatchIndex(content, -1) {
		s, e := loc[2*group], loc[2*group+1]
		if s < 0 {
			continue
		}
		out = append(out, match{start: s, target: string(content[s:e])})
	}
	return out
}

func findNavLinks(content []byte, claimed map[int]struct{}) []match {
	ms := submatches(navLinkRe, content, 1)
	for _, m := range ms {
		claimed[m.start] = struct{}{}
	}
	return ms
}

func findHrefs(content []byte, claimed map[int]struct{}) []match {
	var out []match
	for _, m := range submatches(hrefRe, content, 1) {
		if _, dup := claimed[m.start]; dup {
			continue
		}
		out = append(out, m)
	}
	return out
}

func findMarkdownLinks(content []byte, _ map[int]struct{}) []match {
	images := make(map[string]struct{})
	for _, m := range submatches(imageRe, content, 2) {
		images[m.target] = struct{}{}
	}

	var out []match
	for _, loc := range markdownRe.FindAllSubmatchIndex(content, -1) {
		if loc[0] > 0 && content[loc[0]-1] == '!' {
			continue
		}
		s, e := loc[4], loc[5]
		target := string(content[s:e])
		if _, isImage := images[target]; isImage {
			continue
		}
		// [text](/path "title")
		if i := strings.IndexAny(target, " \t"); i >= 0 {
			target = target[:i]
		}
		out = append(out, match{start: s, target: target})
	}
	return out
}

func findTemplateHrefs(content []byte, _ map[int]struct{}) []match {
	return submatches(templateHrefRe, content, 1)
}

func findSitemapURLs(content []byte, _ map[int]struct{}) []match {
	out := submatches(sitemapURLRe, content, 1)
	return append(out, submatches(sitemapTemplateRe, content, 1)...)
}
