package validate

import (
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// AssetChecker reports whether a URL path is served from the static-asset tree.
type AssetChecker interface {
	Exists(urlPath string) bool
}

// AssetFS checks paths against a public directory on disk. Lookups are
// cached, so repeated references to the same asset stat the file once.
type AssetFS struct {
	dir   string
	cache *lru.Cache[string, bool]
}

// NewAssetFS returns an AssetFS rooted at dir holding up to size lookups.
func NewAssetFS(dir string, size int) (*AssetFS, error) {
	c, err := lru.New[string, bool](size)
	if err != nil {
		return nil, err
	}
	return &AssetFS{dir: dir, cache: c}, nil
}

// Exists reports whether urlPath names a file or directory under the public
// dir. Paths containing ".." segments never exist.
func (a *AssetFS) Exists(urlPath string) bool {
	rel := strings.TrimPrefix(urlPath, "/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return false
		}
	}
	if ok, hit := a.cache.Get(rel); hit {
		return ok
	}
	_, err := os.Stat(filepath.Join(a.dir, filepath.FromSlash(rel)))
	ok := err == nil
	a.cache.Add(rel, ok)
	return ok
}
