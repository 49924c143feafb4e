package harness

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/kestrel/internal/config"
	"github.com/AbdelazizMoustafa10m/kestrel/internal/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun the suites whenever watched files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command) error {
	logger := logging.New("watch")

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initial run. Failures do not stop watch mode; the point is to keep
	// rerunning until the tests go green.
	if err := runOnce(cmd); err != nil {
		if _, ok := err.(*runFailedError); !ok {
			return err
		}
	}

	hasher := newContentHasher()
	changed := make(chan string, 64)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				// New directories need explicit watches; fsnotify is not
				// recursive.
				if ev.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						if err := watchTree(watcher, ev.Name); err != nil {
							logger.Warn("watching new directory", "path", ev.Name, "error", err)
						}
						continue
					}
				}
				if !matchesWatch(cfg, root, ev.Name) {
					continue
				}
				if !hasher.changed(ev.Name) {
					continue
				}
				select {
				case changed <- ev.Name:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	})

	g.Go(func() error {
		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		if debounce <= 0 {
			debounce = 250 * time.Millisecond
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case path := <-changed:
				logger.Info("change detected", "path", path)
				if !quietPeriod(ctx, changed, debounce) {
					return nil
				}
				if err := runOnce(cmd); err != nil {
					if _, ok := err.(*runFailedError); !ok {
						return err
					}
				}
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// quietPeriod waits until no change has arrived for d, absorbing further
// changes along the way. Returns false when the context is cancelled.
func quietPeriod(ctx context.Context, changed <-chan string, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return true
		case <-changed:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(d)
		case <-ctx.Done():
			return false
		}
	}
}

// watchTree adds dir and every non-hidden subdirectory to the watcher.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// matchesWatch reports whether path, relative to root, matches one of the
// configured watch patterns.
func matchesWatch(cfg *config.Config, root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range cfg.Watch.Paths {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// contentHasher deduplicates filesystem events by content hash, so a
// save that does not change the file's bytes does not trigger a rerun.
type contentHasher struct {
	sums map[string]uint64
}

func newContentHasher() *contentHasher {
	return &contentHasher{sums: make(map[string]uint64)}
}

// changed reports whether path's content differs from the last time it
// was seen. A file that can no longer be read counts as changed once and
// is forgotten.
func (h *contentHasher) changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if _, seen := h.sums[path]; seen {
			delete(h.sums, path)
			return true
		}
		return false
	}
	sum := xxhash.Sum64(data)
	if prev, seen := h.sums[path]; seen && prev == sum {
		return false
	}
	h.sums[path] = sum
	return true
}
