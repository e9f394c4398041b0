// Package buster implements the cache eviction sweep: a cheap disk-usage
// gate followed by a staleness scan over the cache's `.index` sidecar
// files, so eviction only pays the cost of walking the tree when the
// cache has actually grown past its configured capacity.
package buster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"pixgate/logging"
)

// Config names the cache root, its capacity ceiling, and the `du`
// binary used to measure current usage.
type Config struct {
	Root       string
	CapacityGB int64
	DuPath     string
	Deletion   int // max concurrent file removals
}

// DefaultConfig returns a 10GB ceiling against du on PATH, matching the
// upstream default.
func DefaultConfig(root string) Config {
	return Config{Root: root, CapacityGB: 10, DuPath: "du", Deletion: 8}
}

// SizeExceeded shells out to `du -s` against Root and compares the
// reported kilobyte usage against the configured gigabyte capacity.
func (c Config) SizeExceeded(ctx context.Context) (bool, error) {
	duPath := c.DuPath
	if duPath == "" {
		duPath = "du"
	}

	cmd := exec.CommandContext(ctx, duPath, "-s", c.Root)
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("du -s %s: %w", c.Root, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return false, fmt.Errorf("unexpected du output: %q", out)
	}

	sizeKB, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse du output %q: %w", fields[0], err)
	}

	capacityKB := c.CapacityGB * 1024 * 1024
	return sizeKB > capacityKB, nil
}

// DetectOutOfDate walks the cache tree for `.index` sidecar files and
// returns the filename stems whose recorded source file is now newer
// than the sidecar itself — meaning the cached derivative was rendered
// from a since-replaced source.
func (c Config) DetectOutOfDate() ([]string, error) {
	var stale []string

	err := filepath.WalkDir(c.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".index") {
			return nil
		}

		sourcePath, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		sourceInfo, statErr := os.Stat(string(sourcePath))
		if statErr != nil {
			return nil
		}

		indexInfo, statErr := d.Info()
		if statErr != nil {
			return nil
		}

		if sourceInfo.ModTime().After(indexInfo.ModTime()) {
			stem := strings.TrimSuffix(d.Name(), ".index")
			stale = append(stale, stem)
		}
		return nil
	})

	return stale, err
}

// RemoveOutOfDate deletes every file under Root whose name stem appears
// in stale — the derivative, its `.index` sidecar, and any other
// extension sharing that stem — bounded to Deletion concurrent removals.
func (c Config) RemoveOutOfDate(ctx context.Context, stale []string) error {
	if len(stale) == 0 {
		return nil
	}

	staleSet := make(map[string]struct{}, len(stale))
	for _, s := range stale {
		staleSet[s] = struct{}{}
	}

	limit := c.Deletion
	if limit <= 0 {
		limit = 8
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	err := filepath.WalkDir(c.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if _, ok := staleSet[stem]; !ok {
			return nil
		}
		g.Go(func() error {
			_ = os.Remove(path)
			return nil
		})
		return nil
	})
	if err != nil {
		return err
	}

	return g.Wait()
}

// Run performs one full eviction pass: skip entirely if the cache is
// within its capacity, otherwise scan for stale entries and remove
// them.
func (c Config) Run(ctx context.Context, log *logging.Logger) error {
	exceeded, err := c.SizeExceeded(ctx)
	if err != nil {
		return fmt.Errorf("check cache size: %w", err)
	}
	if !exceeded {
		if log != nil {
			log.Info("cache size is within limits, skipping eviction")
		}
		return nil
	}

	stale, err := c.DetectOutOfDate()
	if err != nil {
		return fmt.Errorf("scan for stale entries: %w", err)
	}

	if err := c.RemoveOutOfDate(ctx, stale); err != nil {
		return fmt.Errorf("remove stale entries: %w", err)
	}

	if log != nil {
		log.InfoWithFields("cache busted", "removed", len(stale))
	}
	return nil
}
