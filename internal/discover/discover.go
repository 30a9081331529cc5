// Package discover finds source files in a project tree.
package discover

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// defaultSkipDirs are skipped in addition to hidden directories. A leading
// "/" anchors the entry to the project root, as in .gitignore; build output
// only lives there, and app/docs/build is a route.
var defaultSkipDirs = []string{"node_modules", "/out", "/build", "/dist", "/coverage"}

// SkipSet decides which directories a walk leaves out.
type SkipSet struct {
	names map[string]struct{} // matched at any depth
	paths map[string]struct{} // root-relative, slash-separated
}

// NewSkipSet builds a SkipSet from the built-in entries plus extra.
func NewSkipSet(extra []string) SkipSet {
	s := SkipSet{names: make(map[string]struct{}), paths: make(map[string]struct{})}
	for _, list := range [][]string{defaultSkipDirs, extra} {
		for _, e := range list {
			e = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(e)), "/")
			switch {
			case e == "" || e == "/":
			case strings.HasPrefix(e, "/"):
				s.paths[strings.TrimPrefix(e, "/")] = struct{}{}
			default:
				s.names[e] = struct{}{}
			}
		}
	}
	return s
}

// Skip reports whether the directory at rel (slash-separated, relative to the
// project root) is left out.
func (s SkipSet) Skip(rel string) bool {
	name := path.Base(rel)
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := s.names[name]; ok {
		return true
	}
	_, ok := s.paths[rel]
	return ok
}

// Matcher decides whether a file name should be returned.
type Matcher func(name string) bool

// ByExtension matches file names ending in one of exts.
func ByExtension(exts []string) Matcher {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[e] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[filepath.Ext(name)]
		return ok
	}
}

// ByName matches exactly one file name.
func ByName(want string) Matcher {
	return func(name string) bool { return name == want }
}

// Walker walks directories below a project root, skipping hidden entries,
// build output, symlinks, and paths ignored by the root .gitignore.
type Walker struct {
	root string
	skip SkipSet
	gi   *ignore.GitIgnore
}

// New returns a Walker for root. skipDirs extends the built-in skip list;
// see NewSkipSet.
func New(root string, skipDirs []string) *Walker {
	return &Walker{root: root, skip: NewSkipSet(skipDirs), gi: loadGitignore(root)}
}

// Root returns the project root the walker was created for.
func (w *Walker) Root() string {
	return w.root
}

// Files returns matching files under dir (relative to the root), as sorted
// slash-separated paths relative to the root. A missing dir yields no files.
func (w *Walker) Files(dir string, match Matcher) ([]string, error) {
	start := filepath.Join(w.root, filepath.FromSlash(dir))
	info, err := os.Stat(start)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var results []string

	err = filepath.WalkDir(start, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if p == start {
				return nil
			}
			if rel, err := filepath.Rel(w.root, p); err == nil && w.skip.Skip(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
			if w.ignored(p, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if !match(name) || w.ignored(p, false) {
			return nil
		}

		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return nil
		}
		results = append(results, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// FilesIn walks each dir in order and returns the union of matching files,
// sorted, with files reachable from overlapping dirs listed once.
func (w *Walker) FilesIn(dirs []string, match Matcher) ([]string, error) {
	seen := make(map[string]struct{})
	var all []string
	for _, dir := range dirs {
		files, err := w.Files(dir, match)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	sort.Strings(all)
	return all, nil
}

func (w *Walker) ignored(p string, isDir bool) bool {
	if w.gi == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir && w.gi.MatchesPath(rel+"/") {
		return true
	}
	return w.gi.MatchesPath(rel)
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
