// Package cache implements the on-disk derivative store: a 2/2/2
// decimal-digit shard layout keyed by the request fingerprint,
// freshness checks against the source file, and the sidecar index
// files the eviction sweep uses to find stale entries.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	pixerr "pixgate/errors"
	"pixgate/fingerprint"
	"pixgate/formats"
	"pixgate/logging"
	"pixgate/params"
)

// Store is the derivative cache rooted at a single directory.
type Store struct {
	Root string
}

// NewStore creates a derivative store rooted at dir, creating it if
// necessary.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root: %w", err)
	}
	return &Store{Root: dir}, nil
}

// shard returns the three nested two-digit directory segments derived
// from a fingerprint's decimal digit string, zero-padded so even a
// freak near-zero hash still yields six digits to shard on.
func shard(hash string) (string, string, string) {
	for len(hash) < 6 {
		hash = "0" + hash
	}
	return hash[0:2], hash[2:4], hash[4:6]
}

// DerivativePath computes the path a rendered derivative for req would
// live at, under the given output format's extension. It does not
// create the directory — call EnsureDir first if you intend to write.
func (s *Store) DerivativePath(req params.DerivativeRequest, format formats.OutputFormat) string {
	return s.path(req, format.String())
}

// DocumentPath computes the path of the intermediate PDF an office
// document is converted to before rasterization — same shard and
// filename shape as a derivative, fixed to the "pdf" extension so it is
// itself a normal cacheable, evictable entry.
func (s *Store) DocumentPath(req params.DerivativeRequest) string {
	return s.path(req, "pdf")
}

func (s *Store) path(req params.DerivativeRequest, extension string) string {
	hash := fingerprint.Of(req).String()
	a, b, c := shard(hash)
	filenameHash := fingerprint.PathHash(req.Path)
	return filepath.Join(s.Root, a, b, c, filenameHash+"."+extension)
}

// EnsureDir creates the shard directory a derivative path lives in.
func (s *Store) EnsureDir(derivativePath string) error {
	return os.MkdirAll(filepath.Dir(derivativePath), 0o755)
}

// IsFresh reports whether the cached file at cachePath is at least as
// new as sourcePath. A missing cache entry is never fresh; a missing
// source is treated as fresh (nothing to compare against — the request
// will 404 further up the call stack before this matters). A stale
// cache entry is removed so the next request doesn't keep re-checking
// a file everyone has already given up on.
func (s *Store) IsFresh(cachePath, sourcePath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}

	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return true
	}

	if cacheInfo.ModTime().Before(sourceInfo.ModTime()) {
		os.Remove(cachePath)
		return false
	}

	return true
}

// Write stores data at derivativePath atomically via a temp file plus
// rename, so concurrent readers never observe a partial write.
func (s *Store) Write(derivativePath string, data []byte) error {
	if err := s.EnsureDir(derivativePath); err != nil {
		return pixerr.NewCacheError("write", derivativePath, err)
	}

	tmp := derivativePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return pixerr.NewCacheError("write", derivativePath, err)
	}
	if err := os.Rename(tmp, derivativePath); err != nil {
		os.Remove(tmp)
		return pixerr.NewCacheError("write", derivativePath, err)
	}
	return nil
}

// Read loads a cached derivative, reporting (nil, false, nil) on a plain
// cache miss.
func (s *Store) Read(derivativePath string) ([]byte, bool, error) {
	data, err := os.ReadFile(derivativePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, pixerr.NewCacheError("read", derivativePath, err)
	}
	return data, true, nil
}

// indexPath swaps a derivative's extension for ".index".
func indexPath(derivativePath string) string {
	ext := filepath.Ext(derivativePath)
	return derivativePath[:len(derivativePath)-len(ext)] + ".index"
}

// WriteIndex records sourcePath as the origin of the derivative at
// derivativePath, fire-and-forget: the caller serves the response
// without waiting on this, and a failure here only degrades eviction
// accuracy, not correctness, so it is logged rather than propagated.
func (s *Store) WriteIndex(derivativePath, sourcePath string, log *logging.Logger) {
	go func() {
		if err := os.WriteFile(indexPath(derivativePath), []byte(sourcePath), 0o644); err != nil {
			if log != nil {
				log.WarnWithFields("failed to write cache index", "path", derivativePath, "error", err)
			}
		}
	}()
}

// ReadIndex returns the source path recorded for a derivative, or ""
// if no index sidecar exists.
func (s *Store) ReadIndex(derivativePath string) string {
	data, err := os.ReadFile(indexPath(derivativePath))
	if err != nil {
		return ""
	}
	return string(data)
}
