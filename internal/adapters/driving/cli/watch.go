package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/noteseek/internal/adapters/driven/notes"
	"github.com/custodia-labs/noteseek/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the notes directory and keep the index current",
	Long: `Watches the notes directory for changes. Created or modified notes
are reindexed; removed or renamed-away notes are cleared from the
index, and removing a directory clears every indexed note beneath it.
Events are debounced per path, so editors that write in bursts trigger
a single reindex.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "delay before reacting to a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := wireServices(); err != nil {
		return err
	}
	if indexService == nil || noteSource == nil {
		return errors.New("index service not configured")
	}

	source, ok := noteSource.(*notes.Source)
	if !ok {
		return errors.New("watch requires a filesystem note source")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w := &watchLoop{
		cmd:      cmd,
		watcher:  watcher,
		source:   source,
		debounce: watchDebounce,
		timers:   make(map[string]*time.Timer),
		dirs:     make(map[string]bool),
	}
	if err := w.watchTree(source.Root()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)...\n", source.Root())
	w.run(ctx)

	cmd.Println("Watch stopped.")
	return nil
}

// watchLoop debounces filesystem events into reindex and clear operations.
// It tracks the directories under watch so a removal event, which only
// names the directory, can be mapped back to the notes beneath it.
type watchLoop struct {
	cmd      *cobra.Command
	watcher  *fsnotify.Watcher
	source   *notes.Source
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	dirs   map[string]bool
}

// watchTree registers the root and every non-hidden subdirectory.
func (w *watchLoop) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.rememberDir(path)
		return nil
	})
}

// rememberDir records a directory currently under watch.
func (w *watchLoop) rememberDir(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs[path] = true
}

// forgetDir reports whether path was a watched directory, dropping it and
// every recorded descendant.
func (w *watchLoop) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[path] {
		return false
	}
	sub := path + string(filepath.Separator)
	for dir := range w.dirs {
		if dir == path || strings.HasPrefix(dir, sub) {
			delete(w.dirs, dir)
		}
	}
	return true
}

func (w *watchLoop) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.cancelTimers()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *watchLoop) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	// New directories join the watch so nested notes are seen.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(path), ".") {
				if err := w.watcher.Add(path); err != nil {
					logger.Warn("Watching %s: %v", path, err)
				}
				w.rememberDir(path)
			}
			return
		}
	}

	// A directory that disappears takes its notes with it. The event names
	// only the directory, so the subtree is cleared by note-ID prefix.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.forgetDir(path) {
			w.schedule(path, func() { w.clearTree(ctx, path) })
			return
		}
	}

	noteID, err := noteSource.IDForPath(path)
	if err != nil {
		return // Not a note; ignore
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.schedule(path, func() { w.clear(ctx, noteID) })
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		w.schedule(path, func() { w.reindex(ctx, noteID) })
	}
}

// schedule resets the per-path debounce timer.
func (w *watchLoop) schedule(path string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		fn()
	})
}

func (w *watchLoop) cancelTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = make(map[string]*time.Timer)
}

func (w *watchLoop) reindex(ctx context.Context, noteID string) {
	report, err := indexService.ReindexNote(ctx, noteID)
	if err != nil {
		w.cmd.Printf("reindex %s: %v\n", noteID, err)
		return
	}
	w.cmd.Printf("reindexed %s: %d documents (%d failures)\n",
		noteID, report.Indexed, len(report.Failures))
}

// clearTree removes every indexed note under a directory that no longer
// exists on disk.
func (w *watchLoop) clearTree(ctx context.Context, dir string) {
	if docStore == nil {
		return
	}
	rel, err := filepath.Rel(w.source.Root(), dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	prefix := filepath.ToSlash(rel) + "/"

	if err := docStore.ClearNotesWithPrefix(ctx, prefix); err != nil {
		w.cmd.Printf("clear %s: %v\n", prefix, err)
		return
	}
	w.cmd.Printf("cleared notes under %s\n", prefix)
}

func (w *watchLoop) clear(ctx context.Context, noteID string) {
	if docStore == nil {
		return
	}
	if err := docStore.ClearNote(ctx, noteID); err != nil {
		w.cmd.Printf("clear %s: %v\n", noteID, err)
		return
	}
	w.cmd.Printf("cleared %s\n", noteID)
}
