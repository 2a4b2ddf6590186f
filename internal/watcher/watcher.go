// Package watcher turns file-system events under a directory into batches
// of settled image files.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/AnyUserName/imgpress/internal/scanner"
)

// DefaultDebounce is how long a file must go without writes before it is
// handed out.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Root is the directory watched recursively.
	Root string
	// Ignore is a directory whose events are dropped, typically the output
	// directory when it lives under Root.
	Ignore string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Watcher collects created or rewritten images under Root. All state is
// owned by the goroutine started by Watch.
type Watcher struct {
	root     string
	ignore   string
	debounce time.Duration
	log      zerolog.Logger
	fsw      *fsnotify.Watcher
	pending  map[string]time.Time
}

// New creates a Watcher. Nothing is watched until Watch is called.
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Root, err)
	}
	ignore := ""
	if opts.Ignore != "" {
		if ignore, err = filepath.Abs(opts.Ignore); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", opts.Ignore, err)
		}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		root:     root,
		ignore:   ignore,
		debounce: opts.Debounce,
		log:      opts.Logger,
		fsw:      fsw,
		pending:  make(map[string]time.Time),
	}, nil
}

// Watch starts watching and returns a channel of settled groups, sorted by
// relative path. The channel is closed when ctx is done or the underlying
// watcher fails; the watcher is closed with it.
func (w *Watcher) Watch(ctx context.Context) (<-chan []scanner.Source, error) {
	if err := w.addRecursive(w.root); err != nil {
		w.fsw.Close()
		return nil, err
	}
	out := make(chan []scanner.Source)
	go w.loop(ctx, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, out chan<- []scanner.Source) {
	defer close(out)
	defer w.fsw.Close()

	tick := time.NewTicker(max(w.debounce/5, 10*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev, time.Now())
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		case now := <-tick.C:
			group := w.settled(now)
			if len(group) == 0 {
				continue
			}
			select {
			case out <- group:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, now time.Time) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if w.ignored(ev.Name) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) {
			w.addDir(ev.Name, now)
		}
		return
	}
	if !scanner.IsImageExt(ev.Name) {
		return
	}
	w.pending[ev.Name] = now
}

// addDir starts watching a directory created under the root. Images written
// into it before the watch was in place are picked up by a scan.
func (w *Watcher) addDir(dir string, now time.Time) {
	if err := w.addRecursive(dir); err != nil {
		w.log.Warn().Err(err).Str("dir", dir).Msg("watch new directory")
		return
	}
	found, err := scanner.Scan([]string{dir})
	if err != nil {
		return
	}
	for _, s := range found {
		w.pending[s.AbsPath] = now
	}
}

// settled removes and returns every pending file untouched for at least the
// debounce interval.
func (w *Watcher) settled(now time.Time) []scanner.Source {
	var group []scanner.Source
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		s, err := scanner.Under(w.root, path, info.Size())
		if err != nil {
			continue
		}
		group = append(group, s)
	}
	sort.Slice(group, func(i, j int) bool { return group[i].RelPath < group[j].RelPath })
	return group
}

func (w *Watcher) ignored(path string) bool {
	if w.ignore == "" {
		return false
	}
	return path == w.ignore || strings.HasPrefix(path, w.ignore+string(filepath.Separator))
}

// addRecursive watches dir and its subdirectories, skipping hidden ones and
// the ignored tree.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (strings.HasPrefix(d.Name(), ".") || w.ignored(path)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
