package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// replaceFile swaps the contents of an existing source file for data. The new
// contents go to a temporary sibling that is synced and renamed over path, so
// a reader sees either the old file or the new one. The permission bits of
// the original file are kept.
func replaceFile(path string, data []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".linkcheck-*")
	if err != nil {
		return fmt.Errorf("staging rewrite: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("staging rewrite: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("staging rewrite: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing rewrite: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("syncing rewrite: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}

	// Directory fsync makes the rename durable. The file is already replaced,
	// so a failure here is not reported. Windows has no equivalent.
	if runtime.GOOS != "windows" {
		if d, derr := os.Open(dir); derr == nil {
			_ = d.Sync()
			_ = d.Close()
		}
	}
	return nil
}
