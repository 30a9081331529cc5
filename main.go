// linkcheck finds and repairs broken internal links in a file-routed site.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/linkcheck/internal/config"
	"github.com/phobologic/linkcheck/internal/discover"
	"github.com/phobologic/linkcheck/internal/extract"
	"github.com/phobologic/linkcheck/internal/fix"
	"github.com/phobologic/linkcheck/internal/graph"
	"github.com/phobologic/linkcheck/internal/model"
	"github.com/phobologic/linkcheck/internal/ranking"
	"github.com/phobologic/linkcheck/internal/report"
	"github.com/phobologic/linkcheck/internal/routes"
	"github.com/phobologic/linkcheck/internal/toon"
	"github.com/phobologic/linkcheck/internal/validate"
	"github.com/phobologic/linkcheck/internal/watch"
)

var version = "dev"

const (
	formatText = "text"
	formatToon = "toon"

	defaultTop = 10
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

type scanOptions struct {
	configPath  string
	reportPath  string
	noFix       bool
	dryRun      bool
	format      string
	top         int
	file        string
	minSeverity string
	watch       bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts scanOptions

	rootCmd := &cobra.Command{
		Use:   "linkcheck [flags] [root]",
		Short: "Find and fix broken internal links in a Next.js app",
		Long: `linkcheck builds the route map of a Next.js app-router project, extracts
every internal link from its sources and sitemap, and checks each one.

Typos in reserved prefixes and case mismatches are rewritten in place.
Everything else is listed in LINK_SCAN_REPORT.md for review.

root defaults to the current directory.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			root, err := resolveRoot(root)
			if err != nil {
				return err
			}
			if err := scan(root, opts, stdout, stderr); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}
			return watchAndScan(cmd.Context(), root, opts, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("linkcheck {{.Version}}\n")

	f := rootCmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default <root>/"+config.DefaultFile+")")
	f.StringVar(&opts.reportPath, "report", "", "report path, relative to root (default "+config.DefaultReport+")")
	f.BoolVar(&opts.noFix, "no-fix", false, "report only; never rewrite source files")
	f.BoolVar(&opts.dryRun, "dry-run", false, "compute fixes without writing source files")
	f.StringVar(&opts.format, "format", formatText, "stdout format: text|toon")
	f.IntVarP(&opts.top, "top", "n", defaultTop, "most-linked routes to list (0 for all)")
	f.StringVar(&opts.file, "file", "", "only report and fix files whose path contains this substring")
	f.StringVar(&opts.minSeverity, "min-severity", string(model.Info), "lowest severity to report: error|warning|info")
	f.BoolVarP(&opts.watch, "watch", "w", false, "rescan whenever watched sources change")
	f.BoolP("version", "V", false, "show version and exit")

	rootCmd.AddCommand(newInitCmd(stdout, stderr))
	return rootCmd
}

func resolveRoot(root string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

// scan runs one full pass over the project at root, which must be absolute.
func scan(root string, opts scanOptions, stdout, stderr io.Writer) error {
	switch opts.format {
	case formatText, formatToon:
	default:
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	minSeverity := model.Severity(opts.minSeverity)
	switch minSeverity {
	case model.Error, model.Warning, model.Info:
	default:
		return fmt.Errorf("unsupported severity %q", opts.minSeverity)
	}

	cfg, err := loadConfig(root, opts)
	if err != nil {
		return err
	}

	console := report.NewConsole(progressWriter(opts, stdout, stderr))
	console.Title("Starting link scan...")

	w := discover.New(root, cfg.SkipDirs)

	inv, err := routes.Build(w, cfg, stderr)
	if err != nil {
		return fmt.Errorf("building route map: %w", err)
	}
	console.Inventory(inv)

	refs, err := extract.New(cfg).Scan(w, stderr)
	if err != nil {
		return fmt.Errorf("extracting links: %w", err)
	}
	console.Step("Extracted %d links from codebase", len(refs))

	assets, err := validate.NewAssetFS(filepath.Join(root, filepath.FromSlash(cfg.PublicDir)), cfg.AssetCacheSize)
	if err != nil {
		return fmt.Errorf("asset cache: %w", err)
	}
	v := validate.New(inv, assets, cfg.DocsPrefix)
	findings := v.Validate(refs)
	console.Step("Validated links: %d broken links found", len(findings))

	links := graph.Build(refs, v.PageRoute)
	graph.Rank(links)

	result := ranking.FilterByFile(&model.ScanResult{
		Inventory:    inv,
		References:   refs,
		Findings:     findings,
		RouteLinks:   links,
		Unreferenced: graph.Unreferenced(inv, links),
	}, opts.file)

	if !cfg.NoFix {
		plan := fix.BuildPlan(result.Findings)
		if len(plan) > 0 {
			console.Title("Applying automatic fixes to %d files...", len(plan))
			result.Applied, result.FilesWritten = fix.Apply(root, plan, fix.Options{DryRun: opts.dryRun}, stderr)
			for _, f := range result.FilesWritten {
				console.Detail("Fixed: %s", f)
			}
			if opts.dryRun {
				console.Step("Dry run: %d fixes not written", len(result.Applied))
			} else {
				console.Step("Fixes applied")
			}
		}
	}

	result.Findings = ranking.FilterBySeverity(result.Findings, minSeverity)
	top := ranking.TopRoutes(result.RouteLinks, opts.top)

	reportPath := cfg.Report
	if !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(root, filepath.FromSlash(reportPath))
	}
	if report.Write(reportPath, report.Markdown(result, top, time.Now()), stderr) {
		console.Step("Report generated: %s", cfg.Report)
	}

	if opts.format == formatToon {
		trimmed := *result
		trimmed.RouteLinks = top
		_, _ = fmt.Fprintln(stdout, toon.Encode(filepath.Base(root), &trimmed))
	}

	console.Title("Link scan complete!")
	console.Summary(result)
	return nil
}

func loadConfig(root string, opts scanOptions) (*config.Config, error) {
	cfg, err := config.Load(root, opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.reportPath != "" {
		cfg.Report = opts.reportPath
	}
	if opts.noFix {
		cfg.NoFix = true
	}
	return cfg, nil
}

// progressWriter keeps stdout clean when it carries machine-readable output.
func progressWriter(opts scanOptions, stdout, stderr io.Writer) io.Writer {
	if opts.format == formatToon {
		return stderr
	}
	return stdout
}

// watchAndScan reruns scan after every debounced batch of source changes
// until interrupted.
func watchAndScan(ctx context.Context, root string, opts scanOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(root, opts)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportRel := cfg.Report
	if filepath.IsAbs(reportRel) {
		if r, err := filepath.Rel(root, reportRel); err == nil {
			reportRel = r
		}
	}

	console := report.NewConsole(progressWriter(opts, stdout, stderr))
	console.Title("Watching for changes (Ctrl-C to stop)...")

	return watch.Run(ctx, watch.Options{
		Root:     root,
		Dirs:     watchDirs(cfg),
		SkipDirs: cfg.SkipDirs,
		Ignore:   []string{filepath.ToSlash(reportRel)},
	}, func(changed []string) {
		console.Detail("Changed: %s", strings.Join(changed, ", "))
		if err := scan(root, opts, stdout, stderr); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: rescan: %v\n", err)
		}
	}, stderr)
}

// watchDirs lists every directory whose contents feed a scan: the routing
// root, the source dirs, the public dir, and the dirs holding the sitemap and
// slug sources. A dir below one already listed is dropped.
// covers reports whether watching dir recursively also watches sub.
func covers(dir, sub string) bool {
	return dir == "." || dir == sub || strings.HasPrefix(sub, dir+"/")
}

func watchDirs(cfg *config.Config) []string {
	var dirs []string
	add := func(d string) {
		d = path.Clean(filepath.ToSlash(d))
		if slices.ContainsFunc(dirs, func(have string) bool { return covers(have, d) }) {
			return
		}
		dirs = slices.DeleteFunc(dirs, func(have string) bool { return covers(d, have) })
		dirs = append(dirs, d)
	}

	add(cfg.RoutingDir)
	for _, d := range cfg.SourceDirs {
		add(d)
	}
	if cfg.PublicDir != "" {
		add(cfg.PublicDir)
	}
	if cfg.Sitemap != "" {
		add(path.Dir(filepath.ToSlash(cfg.Sitemap)))
	}
	for _, ns := range cfg.Namespaces {
		for _, src := range ns.Sources {
			add(path.Dir(filepath.ToSlash(src)))
		}
	}
	return dirs
}
