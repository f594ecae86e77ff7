package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watcher notices when the settings file is changed by something other than
// this process, for example a second ttscli or a text editor. It never
// merges the change; the console offers a reload instead.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	pending atomic.Bool
	changes atomic.Uint32

	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching the store's file. The parent directory is watched
// rather than the file, since saves replace the file by rename.
func (st *Store) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create file watcher: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	w := &Watcher{
		store:   st,
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop()
	log.Debug("Watching settings file", "path", st.path)
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	target := filepath.Clean(w.store.path)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, w.check)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debug("Settings watcher error", "error", err)
		}
	}
}

func (w *Watcher) check() {
	data, err := os.ReadFile(w.store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		log.Debug("Unable to read changed settings", "error", err)
		return
	}
	if w.store.isKnown(data) {
		return
	}
	n := w.changes.Add(1)
	w.pending.Store(true)
	log.Info("Settings file changed on disk", "path", w.store.path, "count", n)
}

// Pending reports whether an outside change arrived since the last call, and
// clears the flag.
func (w *Watcher) Pending() bool {
	if w == nil {
		return false
	}
	return w.pending.Swap(false)
}

// Changes returns how many outside changes have been observed.
func (w *Watcher) Changes() uint32 {
	return w.changes.Load()
}

// Close stops watching.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
