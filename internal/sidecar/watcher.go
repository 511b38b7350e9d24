package sidecar

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/tracks"
)

// Watcher keeps an in-memory index of sidecar subtitles under a library root,
// updated live via fsnotify.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher

	mu    sync.RWMutex
	index map[string]entry // path -> entry

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the given library root. The root does not
// need to exist yet; Start fails if it is missing.
func NewWatcher(root string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		root:    root,
		watcher: fsWatcher,
		index:   make(map[string]entry),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start indexes existing files and begins watching for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := w.scanLocked(); err != nil {
		return err
	}

	w.running = true
	w.wg.Add(1)
	go w.eventLoop()

	log.Info().Str("root", w.root).Int("files", len(w.index)).Msg("Sidecar watcher started")
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.cancel()
	w.watcher.Close()
	w.wg.Wait()
	log.Info().Msg("Sidecar watcher stopped")
}

// Lookup returns indexed sidecar subtitles whose base name matches the media
// title, sorted by path for deterministic selection input.
func (w *Watcher) Lookup(mediaTitle string) []tracks.ExternalSubtitle {
	w.mu.RLock()
	defer w.mu.RUnlock()

	title := strings.ToLower(mediaTitle)
	var matched []entry
	for _, e := range w.index {
		if strings.Contains(strings.ToLower(e.base), title) {
			matched = append(matched, e)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].path < matched[j].path })

	subs := make([]tracks.ExternalSubtitle, 0, len(matched))
	for _, e := range matched {
		subs = append(subs, e.external())
	}
	return subs
}

// Count returns the number of indexed files.
func (w *Watcher) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.index)
}

// scanLocked walks the root, watching directories and indexing subtitle
// files. Caller must hold w.mu.
func (w *Watcher) scanLocked() error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			log.Debug().Err(err).Str("path", path).Msg("Error walking sidecar directory")
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				log.Debug().Err(err).Str("path", path).Msg("Failed to watch sidecar directory")
			}
			return nil
		}
		w.indexFileLocked(path)
		return nil
	})
}

func (w *Watcher) indexFileLocked(path string) {
	if !IsSubtitleFile(path) {
		return
	}
	base, code := ParseFilename(path)
	w.index[path] = entry{path: path, base: base, code: code}
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Sidecar watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// New directory: watch it and index anything already inside.
			w.mu.Lock()
			if err := w.watcher.Add(event.Name); err != nil {
				log.Debug().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
			}
			filepath.WalkDir(event.Name, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return nil
				}
				w.indexFileLocked(path)
				return nil
			})
			w.mu.Unlock()
			return
		}
		w.mu.Lock()
		w.indexFileLocked(event.Name)
		w.mu.Unlock()

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.index, event.Name)
		// A removed directory takes its files with it.
		prefix := event.Name + string(filepath.Separator)
		for path := range w.index {
			if strings.HasPrefix(path, prefix) {
				delete(w.index, path)
			}
		}
		w.mu.Unlock()
	}
}
