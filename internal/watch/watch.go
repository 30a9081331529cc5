// Package watch reruns a callback when files under the project change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phobologic/linkcheck/internal/discover"
)

// DefaultDebounce is the quiet period before a batch of events is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a watch.
type Options struct {
	Root     string
	Dirs     []string // relative to Root, watched recursively
	SkipDirs []string // as discover.NewSkipSet
	Ignore   []string // relative file paths whose events are dropped
	Debounce time.Duration
}

// Run watches opts.Dirs until ctx is done. Events are batched until no new
// event arrives for opts.Debounce, then onChange receives the sorted,
// slash-separated paths that changed. onChange runs on the caller's
// goroutine, one batch at a time.
func Run(ctx context.Context, opts Options, onChange func(changed []string), stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer watcher.Close()

	w := &dirWatcher{
		root:    opts.Root,
		fsw:     watcher,
		skip:    discover.NewSkipSet(opts.SkipDirs),
		ignore:  make(map[string]struct{}, len(opts.Ignore)),
		stderr:  stderr,
		watched: make(map[string]struct{}),
	}
	for _, f := range opts.Ignore {
		w.ignore[filepath.ToSlash(f)] = struct{}{}
	}

	for _, d := range opts.Dirs {
		abs := filepath.Join(opts.Root, filepath.FromSlash(d))
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		if err := w.addRecursive(abs); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			rel, keep := w.handle(ev)
			if !keep {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(stderr, "Warning: watch: %v\n", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			onChange(changed)
		}
	}
}

type dirWatcher struct {
	root    string
	fsw     *fsnotify.Watcher
	skip    discover.SkipSet
	ignore  map[string]struct{}
	stderr  io.Writer
	watched map[string]struct{}
}

func (w *dirWatcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipDir(path) {
			return filepath.SkipDir
		}
		if _, ok := w.watched[path]; ok {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.watched[path] = struct{}{}
		return nil
	})
}

func (w *dirWatcher) skipDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.skip.Skip(filepath.ToSlash(rel))
}

// handle starts watching created directories and reports whether ev should
// trigger a rerun, with its path relative to the root.
func (w *dirWatcher) handle(ev fsnotify.Event) (string, bool) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	// Editor swap files and atomic-write temporaries.
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if _, ok := w.ignore[rel]; ok {
		return "", false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.skipDir(ev.Name) {
				return "", false
			}
			if err := w.addRecursive(ev.Name); err != nil {
				_, _ = fmt.Fprintf(w.stderr, "Warning: watch %s: %v\n", rel, err)
			}
		}
	}
	return rel, true
}
