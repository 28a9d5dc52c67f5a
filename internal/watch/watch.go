// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs conversion when mind-map files change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/mmap2md/internal/container"
)

// DefaultDebounce is how long a path must stay quiet before Handler runs.
// MindManager saves a map as several writes in quick succession.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with the paths of maps that changed, in lexical order.
type Handler func(paths []string)

// Watch watches root and its subdirectories for created or modified
// .mmap/.xmmap files until ctx is cancelled. Changes are collected until
// debounce elapses without a new event, then passed to h in one call.
// Directories created while watching are added automatically.
func Watch(ctx context.Context, root string, logger *slog.Logger, debounce time.Duration, h Handler) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func(path string) {
		pending[path] = true
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			timer, fire = nil, nil
			h(paths)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					_ = filepath.WalkDir(ev.Name, func(path string, d fs.DirEntry, err error) error {
						if err == nil && !d.IsDir() && container.IsMapFile(path) {
							schedule(path)
						}
						return nil
					})
					continue
				}
			}

			if !container.IsMapFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				logger.Debug("watcher: changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule(ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
