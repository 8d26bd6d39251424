package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// referencedPaths lists every storage key still pointed at by the database.
type referencedPaths interface {
	AllFilePaths() ([]string, error)
}

type janitorSettings interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// StartJanitor removes orphaned deliverable files once a day at the
// configured hour. Files younger than a day are left alone so an in-flight
// upload is never swept before its database row lands.
func StartJanitor(ctx context.Context, store *Store, repo referencedPaths, settings janitorSettings, hour int) {
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		store.logger.Info("storage janitor started", "hour", hour)

		for {
			select {
			case <-ctx.Done():
				store.logger.Info("storage janitor stopped")
				return
			case <-ticker.C:
				checkAndSweep(store, repo, settings, hour)
			}
		}
	}()
}

func checkAndSweep(store *Store, repo referencedPaths, settings janitorSettings, hour int) {
	now := time.Now()
	if now.Hour() != hour {
		return
	}

	// Already swept today?
	lastStr, err := settings.Get("janitor_last_run")
	if err == nil && lastStr != "" {
		last, err := time.Parse(time.RFC3339, lastStr)
		if err == nil && last.Year() == now.Year() && last.YearDay() == now.YearDay() {
			return
		}
	}

	removed, err := store.Sweep(repo, now)
	if err != nil {
		store.logger.Error("janitor sweep failed", "error", err)
		return
	}
	if removed > 0 {
		store.logger.Info("janitor removed orphaned files", "count", removed)
	}

	if err := settings.Set("janitor_last_run", now.Format(time.RFC3339)); err != nil {
		store.logger.Warn("could not record janitor run", "error", err)
	}
}

// Sweep deletes files under the store root that no project_files row
// references and that are older than 24 hours. Returns the removal count.
func (s *Store) Sweep(repo referencedPaths, now time.Time) (int, error) {
	paths, err := repo.AllFilePaths()
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[p] = true
	}

	removed := 0
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		key := filepath.ToSlash(rel)
		if referenced[key] {
			return nil
		}
		info, err := d.Info()
		if err != nil || now.Sub(info.ModTime()) < 24*time.Hour {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	return removed, err
}
