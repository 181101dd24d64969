package utils

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/artontop/artontop/models"
)

// StartOrphanSweeper periodically removes upload files that no row references.
// Such files are left behind when a remix insert fails after the image was written.
func StartOrphanSweeper(ctx context.Context, db *gorm.DB, dir string, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// only files older than one interval, so in-flight saves are never touched
				n, err := SweepOrphans(ctx, db, dir, interval)
				if err != nil {
					Sugar.Warnf("orphan sweep failed: %v", err)
					continue
				}
				if n > 0 {
					Sugar.Infow("orphan sweep removed files", "count", n)
				}
			}
		}
	}()
}

// SweepOrphans deletes regular files in dir older than minAge that are not referenced
// by a publication, remix or avatar. It returns how many files were removed.
func SweepOrphans(ctx context.Context, db *gorm.DB, dir string, minAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-minAge)
	var candidates []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == models.DefaultAvatar {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		candidates = append(candidates, e.Name())
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	referenced := map[string]struct{}{}
	for _, q := range []struct {
		model  interface{}
		column string
	}{
		{&models.Publication{}, "image"},
		{&models.Remix{}, "image"},
		{&models.User{}, "avatar"},
	} {
		var names []string
		if err := db.WithContext(ctx).Model(q.model).Where(q.column+" IN ?", candidates).Pluck(q.column, &names).Error; err != nil {
			return 0, err
		}
		for _, n := range names {
			referenced[n] = struct{}{}
		}
	}

	removed := 0
	for _, name := range candidates {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			Sugar.Warnf("orphan sweep could not remove %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}
