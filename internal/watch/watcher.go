// Package watch reruns the analysis when a source CSV changes. It watches
// the parent directories of the given files, since editors often replace
// files by rename, and debounces bursts of events into a single callback.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last event before
// invoking the callback.
const DefaultDebounce = 500 * time.Millisecond

// Watcher delivers batched change notifications for a fixed set of files.
type Watcher struct {
	watched  map[string]struct{}
	dirs     []string
	onChange func(paths []string)
	debounce time.Duration

	fw     *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher for the given files. onChange receives the sorted,
// deduplicated paths that changed since the previous invocation.
func New(paths []string, onChange func(paths []string)) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}

	watched := make(map[string]struct{}, len(paths))
	dirSet := make(map[string]struct{})
	for _, p := range paths {
		clean := filepath.Clean(p)
		watched[clean] = struct{}{}
		dirSet[filepath.Dir(clean)] = struct{}{}
	}
	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	return &Watcher{
		watched:  watched,
		dirs:     dirs,
		onChange: onChange,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns once the underlying watches are
// registered; events are delivered from a background goroutine until the
// context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.fw = fw

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.matches(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending[filepath.Clean(ev.Name)] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})
			timer = nil
			timerC = nil
			w.onChange(paths)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)

		case <-ctx.Done():
			return

		case <-w.stopCh:
			return
		}
	}
}

// matches reports whether an event path refers to one of the watched files.
func (w *Watcher) matches(path string) bool {
	_, ok := w.watched[filepath.Clean(path)]
	return ok
}

// Stop halts event delivery and releases the underlying watches. Pending
// debounced changes are dropped.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	var err error
	if w.fw != nil {
		err = w.fw.Close()
	}
	w.wg.Wait()
	return err
}
