package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/linkcheck/internal/config"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const homePage = `import Link from 'next/link';

export default function Home() {
  return (
    <main>
      <Link href="/docs/Install">Install</Link>
      <a href="/doc/getting-started#first-steps">Start</a>
      <Link href="/blog/hello-world">Hello</Link>
      <Link href="/blog/missing-post">Missing</Link>
      <Link href="/guides/install">Guide</Link>
      <a href="/logo.svg">Logo</a>
      <Link href="/tutorials/ai-tutorial-01">Tutorial</Link>
    </main>
  );
}
`

func createSampleSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "app/page.tsx", homePage)
	writeTestFile(t, dir, "app/docs/page.tsx", `export default function Docs() { return <a href="/docs/install">Install</a>; }`)
	writeTestFile(t, dir, "app/docs/install/page.tsx", `export default function Install() { return null; }`)
	writeTestFile(t, dir, "app/docs/getting-started/page.tsx", `export default function Start() { return null; }`)
	writeTestFile(t, dir, "app/(marketing)/about/page.tsx", `export default function About() { return null; }`)
	writeTestFile(t, dir, "app/blog/page.tsx", `export default function Blog() { return null; }`)
	writeTestFile(t, dir, "app/blog/[slug]/page.tsx", `export default function Post() { return null; }`)
	writeTestFile(t, dir, "app/tutorials/page.tsx", `const tutorials = [
  { slug: 'ai-tutorial-01', title: 'Intro' },
];

export default function Tutorials() { return null; }
`)
	writeTestFile(t, dir, "config/blogPosts.ts", `export const blogPosts = [
  { slug: 'hello-world', title: 'Hello' },
];
`)
	writeTestFile(t, dir, "app/sitemap.ts", "const baseUrl = 'https://example.com';\n"+
		"export default function sitemap() {\n"+
		"  return [\n"+
		"    { url: `${baseUrl}/doc/install` },\n"+
		"    { url: `${baseUrl}/About` },\n"+
		"  ];\n"+
		"}\n")
	writeTestFile(t, dir, "public/logo.svg", "<svg/>")
	return dir
}

func TestRunFixesAndReports(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	home := readTestFile(t, dir, "app/page.tsx")
	for _, want := range []string{
		`<Link href="/docs/install">Install</Link>`,
		`<a href="/docs/getting-started#first-steps">Start</a>`,
		`<Link href="/blog/missing-post">Missing</Link>`,
		`<Link href="/guides/install">Guide</Link>`,
	} {
		if !strings.Contains(home, want) {
			t.Errorf("app/page.tsx missing %q:\n%s", want, home)
		}
	}

	sitemap := readTestFile(t, dir, "app/sitemap.ts")
	if !strings.Contains(sitemap, "`${baseUrl}/docs/install`") || !strings.Contains(sitemap, "`${baseUrl}/about`") {
		t.Errorf("sitemap not fixed:\n%s", sitemap)
	}

	rep := readTestFile(t, dir, config.DefaultReport)
	for _, want := range []string{
		"# Link Scan Report",
		"- **Auto-Fixed:** 4",
		"- **Warnings:** 1",
		"- **Info:** 1",
		"- `/blog/missing-post` in app/page.tsx:9 - invalid_slug",
		"- `/guides/install` in app/page.tsx:10 - missing_route (did you mean `/docs/install`?)",
		"- `/docs/Install` → `/docs/install` in app/page.tsx:6",
		"- Static routes: 7",
		"- blog slugs: 1",
		"- tutorials slugs: 1",
	} {
		if !strings.Contains(rep, want) {
			t.Errorf("report missing %q:\n%s", want, rep)
		}
	}

	out := stdout.String()
	if !strings.Contains(out, "Fixed: app/page.tsx") || !strings.Contains(out, "Fixed: app/sitemap.ts") {
		t.Errorf("stdout missing fixed files:\n%s", out)
	}
	if !strings.Contains(out, "Summary:") {
		t.Errorf("stdout missing summary:\n%s", out)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := readTestFile(t, dir, "app/page.tsx")

	stdout.Reset()
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if readTestFile(t, dir, "app/page.tsx") != first {
		t.Error("second run changed app/page.tsx")
	}
	rep := readTestFile(t, dir, config.DefaultReport)
	if !strings.Contains(rep, "- **Auto-Fixed:** 0") || !strings.Contains(rep, "- **Errors:** 0") {
		t.Errorf("second report should have no errors or fixes:\n%s", rep)
	}
	if strings.Contains(stdout.String(), "Fixed:") {
		t.Errorf("second run reported fixes:\n%s", stdout.String())
	}
}

// TestRunFixesMixedKindsOnOneLine verifies that a target written as both an
// attribute and a markdown link on one line is fixed everywhere in one run.
func TestRunFixesMixedKindsOnOneLine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "app/page.tsx", "export default function Home() {\n"+
		"  return <Link href=\"/Docs/install\">see [docs](/Docs/install)</Link>;\n"+
		"}\n")
	writeTestFile(t, dir, "app/docs/install/page.tsx", `export default function Install() { return null; }`)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := readTestFile(t, dir, "app/page.tsx")
	if strings.Contains(first, "/Docs/install") {
		t.Fatalf("first run left a stale target:\n%s", first)
	}
	if !strings.Contains(first, `href="/docs/install"`) || !strings.Contains(first, "](/docs/install)") {
		t.Errorf("both occurrences should be rewritten:\n%s", first)
	}

	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if readTestFile(t, dir, "app/page.tsx") != first {
		t.Error("second run changed app/page.tsx")
	}
}

func TestRunNoFix(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--no-fix", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if readTestFile(t, dir, "app/page.tsx") != homePage {
		t.Error("--no-fix modified sources")
	}
	rep := readTestFile(t, dir, config.DefaultReport)
	if !strings.Contains(rep, "- **Errors:** 4") {
		t.Errorf("expected 4 errors:\n%s", rep)
	}
}

func TestRunNoFixFromDotEnv(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)
	writeTestFile(t, dir, ".env", "LINKCHECK_NO_FIX=true\nLINKCHECK_REPORT=reports/links.md\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if readTestFile(t, dir, "app/page.tsx") != homePage {
		t.Error(".env LINKCHECK_NO_FIX ignored")
	}
	if _, err := os.Stat(filepath.Join(dir, "reports", "links.md")); err != nil {
		t.Errorf(".env LINKCHECK_REPORT ignored: %v", err)
	}
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--dry-run", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if readTestFile(t, dir, "app/page.tsx") != homePage {
		t.Error("--dry-run modified sources")
	}
	if !strings.Contains(readTestFile(t, dir, config.DefaultReport), "## Auto-Fixed Links (4)") {
		t.Error("dry-run report should list planned fixes")
	}
}

func TestRunFileFilter(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--file", "sitemap", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if readTestFile(t, dir, "app/page.tsx") != homePage {
		t.Error("--file sitemap should leave app/page.tsx alone")
	}
	if !strings.Contains(readTestFile(t, dir, "app/sitemap.ts"), "/docs/install") {
		t.Error("--file sitemap should fix the sitemap")
	}
}

func TestRunToonFormat(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--format", "toon", "--no-fix", "--min-severity", "error", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "root: ") {
		t.Errorf("stdout should start with TOON header:\n%s", out)
	}
	if !strings.Contains(out, "findings[4]{file,line,target,kind,issue,severity,fix}:") {
		t.Errorf("expected 4 error findings:\n%s", out)
	}
	if !strings.Contains(out, "app/page.tsx,6,/docs/Install,link,case_mismatch,error,/docs/install") {
		t.Errorf("missing case mismatch row:\n%s", out)
	}
	if strings.Contains(out, "Summary:") {
		t.Error("progress lines should go to stderr in toon mode")
	}
	if !strings.Contains(stderr.String(), "Summary:") {
		t.Errorf("stderr missing summary:\n%s", stderr.String())
	}
}

func TestRunReportPathUnwritable(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)
	writeTestFile(t, dir, "blocker", "x")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--report", "blocker/report.md", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("unwritable report should not fail the run: %v", err)
	}
	if !strings.Contains(stderr.String(), "Warning: ") {
		t.Errorf("expected a warning, got %q", stderr.String())
	}
	if readTestFile(t, dir, "app/page.tsx") == homePage {
		t.Error("fixes should still be applied")
	}
}

func TestRunUnreadableSlugSource(t *testing.T) {
	t.Parallel()
	dir := createSampleSite(t)
	if err := os.Remove(filepath.Join(dir, "config", "blogPosts.ts")); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--no-fix", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "Warning: config/blogPosts.ts") {
		t.Errorf("expected slug source warning, got %q", stderr.String())
	}
	if !strings.Contains(readTestFile(t, dir, config.DefaultReport), "- `/blog/hello-world` in app/page.tsx:8 - invalid_slug") {
		t.Error("blog links should be unknown slugs without a source")
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	for _, flag := range []string{"-V", "--version"} {
		var stdout, stderr bytes.Buffer
		if err := run([]string{flag}, &stdout, &stderr); err != nil {
			t.Fatalf("run %s: %v", flag, err)
		}
		if got := stdout.String(); got != "linkcheck dev\n" {
			t.Errorf("%s: got %q", flag, got)
		}
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeTestFile(t, dir, "file.txt", "x")
	writeTestFile(t, dir, "bad/.linkcheck.yaml", "unknown_key: 1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing root", []string{filepath.Join(dir, "nope")}, "root path"},
		{"root is a file", []string{file}, "not a directory"},
		{"bad format", []string{"--format", "json", dir}, "unsupported format"},
		{"bad severity", []string{"--min-severity", "fatal", dir}, "unsupported severity"},
		{"bad config", []string{filepath.Join(dir, "bad")}, "loading config"},
		{"missing explicit config", []string{"--config", filepath.Join(dir, "none.yaml"), dir}, "loading config"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run(%v) = %v, want error containing %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestWatchDirs(t *testing.T) {
	t.Parallel()

	got := watchDirs(config.Default())
	want := []string{"app", "components", "config", "public"}
	if len(got) != len(want) {
		t.Fatalf("watchDirs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("watchDirs[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	cfg := config.Default()
	cfg.Namespaces = append(cfg.Namespaces, config.Namespace{Name: "guides", Sources: []string{"data/guides.yaml"}})
	cfg.Sitemap = "sitemap.ts"
	got = watchDirs(cfg)
	if len(got) != 1 || got[0] != "." {
		t.Errorf("watchDirs = %v, want only the root", got)
	}

	cfg = config.Default()
	cfg.RoutingDir = "app/blog"
	cfg.SourceDirs = []string{"app", "components/nav", "components"}
	cfg.PublicDir = ""
	cfg.Sitemap = ""
	cfg.Namespaces = nil
	got = watchDirs(cfg)
	want = []string{"app", "components"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("watchDirs = %v, want %v", got, want)
	}
}

func TestRunEmptySite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	rep := readTestFile(t, dir, config.DefaultReport)
	if !strings.Contains(rep, "- **Total Links Scanned:** 0") {
		t.Errorf("report:\n%s", rep)
	}
}
