package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/linkcheck/internal/config"
)

const (
	sentinelStart = "# linkcheck:start"
	sentinelEnd   = "# linkcheck:end"
)

// newInitCmd builds the `linkcheck init` subcommand, which writes a starter
// config file holding the default settings.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		force  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "init [flags] [path]",
		Short: "Write a starter " + config.DefaultFile,
		Long: `Write the default linkcheck settings to a config file.

The settings are wrapped in sentinel comments. With --force an existing
sentinel block is replaced in place without touching surrounding content;
a file without one is overwritten.

path defaults to ./` + config.DefaultFile + `. A directory path gets ` + config.DefaultFile + ` inside it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			return runInit(path, force, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(path string, force, dryRun bool, stdout, stderr io.Writer) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, config.DefaultFile)
	}

	section, err := generateSection()
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !force && !dryRun {
			return fmt.Errorf("%s already exists (use --force to replace)", path)
		}
	case errors.Is(err, os.ErrNotExist):
		existing = nil
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote linkcheck config to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped default configuration.
func generateSection() (string, error) {
	body, err := config.Default().Marshal()
	if err != nil {
		return "", fmt.Errorf("rendering defaults: %w", err)
	}
	header := `# linkcheck settings. Paths are relative to the project root.
# LINKCHECK_REPORT, LINKCHECK_NO_FIX and LINKCHECK_PUBLIC_DIR in the
# environment or in .env override the values below.
`
	return sentinelStart + "\n" + header + strings.TrimRight(string(body), "\n") + "\n" + sentinelEnd, nil
}

// applySection replaces an existing sentinel block in content with section.
// Content without a block is replaced entirely, since a second copy of the
// same keys would not be valid YAML.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}
	return section + "\n"
}
