package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/linkcheck/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"route", "/docs/install", "/docs/install"},
		{"query", "/search?q=a", "/search?q=a"},
		{"fragment", "/docs#setup", "/docs#setup"},
		{"template", "${baseUrl}/about", `"${baseUrl}/about"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	result := &model.ScanResult{
		References: []model.Reference{
			{File: "app/page.tsx", Line: 6, Target: "/docs/Install"},
			{File: "app/page.tsx", Line: 8, Target: "/blog/missing"},
			{File: "app/page.tsx", Line: 9, Target: "/about"},
		},
		Findings: []model.Finding{
			{
				Reference: model.Reference{File: "app/page.tsx", Line: 6, Target: "/docs/Install", Kind: model.NavigationLink},
				Issue:     model.CaseMismatch,
				Fix:       "/docs/install",
				Severity:  model.Error,
			},
			{
				Reference: model.Reference{File: "app/page.tsx", Line: 8, Target: "/blog/missing", Kind: model.NavigationLink},
				Issue:     model.UnknownSlug,
				Severity:  model.Warning,
			},
		},
		Applied: []model.AppliedFix{
			{File: "app/page.tsx", LineFix: model.LineFix{Line: 6, OldTarget: "/docs/Install", NewTarget: "/docs/install"}},
		},
		RouteLinks: []model.RouteLink{
			{Route: "/about", Sources: []string{"app/page.tsx"}, Count: 1, Rank: 0.25},
		},
	}

	got := Encode("site", result)

	want := []string{
		"root: site",
		"scanned: 3",
		"broken: 2",
		"fixed: 1",
		"findings[2]{file,line,target,kind,issue,severity,fix}:",
		"  app/page.tsx,6,/docs/Install,link,case_mismatch,error,/docs/install",
		`  app/page.tsx,8,/blog/missing,link,invalid_slug,warning,""`,
		"fixes[1]{file,line,old,new}:",
		"  app/page.tsx,6,/docs/Install,/docs/install",
		"routes[1]{route,links,files,rank}:",
		"  /about,1,1,0.2500",
	}
	lines := strings.Split(got, "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode("empty", &model.ScanResult{})
	if !strings.Contains(got, "findings[0]{file,line,target,kind,issue,severity,fix}:") {
		t.Errorf("expected empty findings section, got:\n%s", got)
	}
	if !strings.Contains(got, "fixes[0]{file,line,old,new}:") {
		t.Errorf("expected empty fixes section, got:\n%s", got)
	}
	if strings.Contains(got, "unreferenced") {
		t.Errorf("unexpected unreferenced section:\n%s", got)
	}
}

func TestEncodeUnreferenced(t *testing.T) {
	t.Parallel()

	got := Encode("site", &model.ScanResult{Unreferenced: []string{"/docs/orphan"}})
	if !strings.HasSuffix(got, "unreferenced[1]{route}:\n  /docs/orphan") {
		t.Errorf("unreferenced section missing:\n%s", got)
	}
}
