// Package config loads linkcheck settings from defaults, an optional YAML
// file, and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the project root.
const DefaultFile = ".linkcheck.yaml"

// DefaultReport is the report path used when none is configured.
const DefaultReport = "LINK_SCAN_REPORT.md"

// Namespace declares a dynamic route prefix whose members come from data files.
type Namespace struct {
	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
	Field   string   `yaml:"field,omitempty"`
}

// Config holds every tunable of a scan. Paths are relative to the project root.
type Config struct {
	RoutingDir      string      `yaml:"routing_dir"`
	EntryPoint      string      `yaml:"entry_point"`
	DocsPrefix      string      `yaml:"docs_prefix"`
	PublicDir       string      `yaml:"public_dir"`
	SourceDirs      []string    `yaml:"source_dirs"`
	Extensions      []string    `yaml:"extensions"`
	AssetExtensions []string    `yaml:"asset_extensions"`
	SkipDirs        []string    `yaml:"skip_dirs"` // "/name" is root-relative, "name" matches at any depth
	Sitemap         string      `yaml:"sitemap"`
	Namespaces      []Namespace `yaml:"namespaces"`
	Report          string      `yaml:"report"`
	NoFix           bool        `yaml:"no_fix"`
	AssetCacheSize  int         `yaml:"asset_cache_size"`
}

// Default returns the settings for a stock Next.js app-router site.
func Default() *Config {
	return &Config{
		RoutingDir: "app",
		EntryPoint: "page.tsx",
		DocsPrefix: "docs",
		PublicDir:  "public",
		SourceDirs: []string{"app", "components", "config"},
		Extensions: []string{".ts", ".tsx", ".js", ".jsx"},
		AssetExtensions: []string{
			".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
			".woff", ".woff2", ".ttf", ".eot",
		},
		SkipDirs: []string{"node_modules", "/out", "/build", "/dist", "/coverage"},
		Sitemap:  "app/sitemap.ts",
		Namespaces: []Namespace{
			{Name: "blog", Sources: []string{"config/blogPosts.ts"}, Field: "slug"},
			{Name: "tutorials", Sources: []string{"app/tutorials/page.tsx"}, Field: "slug"},
		},
		Report:         DefaultReport,
		AssetCacheSize: 4096,
	}
}

// Load builds the configuration for the project at root.
//
// If path is empty, root/.linkcheck.yaml is used when present. An explicit
// path that does not exist is an error. Values from root/.env and the process
// environment are applied last; the process environment wins over .env.
func Load(root, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, DefaultFile)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.applyEnv(loadEnv(root)); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// loadEnv merges root/.env with the process environment for LINKCHECK_* keys.
func loadEnv(root string) map[string]string {
	env, err := godotenv.Read(filepath.Join(root, ".env"))
	if err != nil {
		env = map[string]string{}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "LINKCHECK_") {
			env[k] = v
		}
	}
	return env
}

func (c *Config) applyEnv(env map[string]string) error {
	if v := strings.TrimSpace(env["LINKCHECK_REPORT"]); v != "" {
		c.Report = v
	}
	if v := strings.TrimSpace(env["LINKCHECK_PUBLIC_DIR"]); v != "" {
		c.PublicDir = v
	}
	if v := strings.TrimSpace(env["LINKCHECK_NO_FIX"]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LINKCHECK_NO_FIX: %w", err)
		}
		c.NoFix = b
	}
	return nil
}

func (c *Config) normalize() error {
	c.RoutingDir = filepath.ToSlash(strings.Trim(c.RoutingDir, "/"))
	c.DocsPrefix = strings.Trim(c.DocsPrefix, "/")
	if c.RoutingDir == "" {
		return fmt.Errorf("routing_dir must not be empty")
	}
	if c.EntryPoint == "" {
		return fmt.Errorf("entry_point must not be empty")
	}
	if c.Report == "" {
		c.Report = DefaultReport
	}
	if c.AssetCacheSize <= 0 {
		c.AssetCacheSize = Default().AssetCacheSize
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}
	for i := range c.Namespaces {
		ns := &c.Namespaces[i]
		ns.Name = strings.Trim(ns.Name, "/")
		if ns.Name == "" {
			return fmt.Errorf("namespaces[%d]: name must not be empty", i)
		}
		if ns.Field == "" {
			ns.Field = "slug"
		}
	}
	return nil
}

// NamespaceNames returns the configured dynamic namespaces in order.
func (c *Config) NamespaceNames() []string {
	names := make([]string, len(c.Namespaces))
	for i := range c.Namespaces {
		names[i] = c.Namespaces[i].Name
	}
	return names
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
