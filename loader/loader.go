// Package loader populates a strata.Manager's FILESYSTEM layers from a
// directory tree of fragment files. The manager core performs no I/O of its
// own; this package is the external collaborator that reads the backing
// store and calls Set.
//
// Layout: <dir>/<entityType>/<entityID>.<ext>, where <ext> is any extension
// the format package supports. For example, services/svc-a.yaml contributes
// the filesystem layer of entity ("svc-a", "services").
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/strataconf/strata"
	"github.com/strataconf/strata/format"
)

// Option is a functional option for configuring Loader creation.
type Option func(*Loader)

// WithLogger sets the logger used for load and watch events.
// Default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// Loader reads fragment files beneath a root directory and mirrors them
// into a manager as SourceFilesystem layers.
type Loader struct {
	dir string
	mgr *strata.Manager
	log zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a Loader rooted at dir that feeds mgr.
func New(dir string, mgr *strata.Manager, opts ...Option) *Loader {
	l := &Loader{
		dir: dir,
		mgr: mgr,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load walks the directory tree once and sets a filesystem layer for every
// fragment file found. Files with unsupported extensions are skipped.
// Individual file failures do not abort the walk; all errors are joined
// into the returned error.
func (l *Loader) Load(ctx context.Context) error {
	var errs []error

	walkErr := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if err := l.loadFile(path); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return errors.Join(errs...)
}

// loadFile parses a single fragment file and sets its filesystem layer.
// Files outside the <type>/<id>.<ext> layout or with unsupported
// extensions are skipped silently (debug-logged).
func (l *Loader) loadFile(path string) error {
	id, typ, ext, ok := l.entityFromPath(path)
	if !ok {
		l.log.Debug().Str("path", path).Msg("skipping non-fragment file")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fragment %s: %w", path, err)
	}

	frag, err := format.Decode(ext, data)
	if err != nil {
		return fmt.Errorf("failed to decode fragment %s: %w", path, err)
	}

	if err := l.mgr.Set(id, typ, frag, strata.SourceFilesystem); err != nil {
		return fmt.Errorf("failed to set fragment %s: %w", path, err)
	}

	l.log.Debug().
		Str("path", path).
		Str("entity_id", id).
		Str("entity_type", typ).
		Msg("filesystem layer loaded")
	return nil
}

// removeFile drops the filesystem layer backed by a deleted fragment file.
// A layer that was never loaded is not an error here; deletion events can
// arrive for files the loader ignored.
func (l *Loader) removeFile(path string) {
	id, typ, _, ok := l.entityFromPath(path)
	if !ok {
		return
	}
	err := l.mgr.RemoveSource(id, typ, strata.SourceFilesystem)
	var nf *strata.NotFoundError
	if err != nil && !errors.As(err, &nf) {
		l.log.Warn().Err(err).Str("path", path).Msg("failed to remove filesystem layer")
		return
	}
	l.log.Debug().
		Str("path", path).
		Str("entity_id", id).
		Str("entity_type", typ).
		Msg("filesystem layer removed")
}

// entityFromPath derives (entityID, entityType, extension) from a file path
// beneath the root directory. Only paths exactly one directory deep with a
// supported extension qualify.
func (l *Loader) entityFromPath(path string) (id, typ, ext string, ok bool) {
	rel, err := filepath.Rel(l.dir, path)
	if err != nil {
		return "", "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return "", "", "", false
	}
	typ = parts[0]
	ext = filepath.Ext(parts[1])
	if !format.Supported(ext) {
		return "", "", "", false
	}
	id = strings.TrimSuffix(parts[1], ext)
	if id == "" || typ == "" {
		return "", "", "", false
	}
	return id, typ, ext, true
}

// Watch starts watching the directory tree for fragment changes. Created
// and modified files are (re)loaded; removed files drop their filesystem
// layer. Watching stops when ctx is cancelled or Close is called.
// Watch returns after the watcher has started.
func (l *Loader) Watch(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		return errors.New("loader is already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the root and every existing entity-type directory.
	if err := w.Add(l.dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to list %s: %w", l.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.Add(filepath.Join(l.dir, entry.Name())); err != nil {
				w.Close()
				return fmt.Errorf("failed to watch %s: %w", entry.Name(), err)
			}
		}
	}

	l.watcher = w
	go l.watchLoop(ctx, w)
	return nil
}

// watchLoop consumes watcher events until the channel closes or ctx is
// cancelled.
func (l *Loader) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			l.handleEvent(w, event)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// handleEvent applies a single filesystem event to the manager.
func (l *Loader) handleEvent(w *fsnotify.Watcher, event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		// New entity-type directories need their own watch.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Add(event.Name); err != nil {
				l.log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
			}
			return
		}
		fallthrough
	case event.Op.Has(fsnotify.Write):
		if err := l.loadFile(event.Name); err != nil {
			l.log.Warn().Err(err).Str("path", event.Name).Msg("failed to reload fragment")
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		l.removeFile(event.Name)
	}
}

// Close stops watching and releases the watcher. It is safe to call when
// Watch was never started, and safe to call multiple times.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	l.watcher = nil
	return err
}
