package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

// settleDelay gives writers time to finish the file before it is read
const settleDelay = 500 * time.Millisecond

var mediaFormats = []string{".mp4", ".mkv", ".mov", ".avi", ".webm", ".m4v", ".mp3", ".wav", ".m4a"}

type implWatcher struct {
	inputDir string
	handler  JobHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	queue    chan Pair
}

// Start monitors the input directory until ctx is cancelled. The event
// loop feeds the queue and one worker drains it, so jobs never overlap.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started. Monitoring: %s", w.inputDir)
	w.logger.Info(ctx, "Drop a .srt next to its media (%s)", strings.Join(mediaFormats, ", "))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.work(ctx) })
	g.Go(func() error {
		defer close(w.queue)
		return w.loop(ctx)
	})

	err := g.Wait()
	w.logger.Info(ctx, "File watcher stopped")
	return err
}

func (w *implWatcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isSubtitleFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-subtitle file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New subtitle detected: %s", event.Name)
			time.Sleep(settleDelay)

			pair, ok := findPair(event.Name)
			if !ok {
				w.logger.Warn(ctx, "No media file found for %s, skipping", event.Name)
				continue
			}

			select {
			case w.queue <- pair:
				w.logger.Debug(ctx, "Queued %s (%d waiting)", pair.Subtitle, len(w.queue))
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// work is the single consumer; a failed job is logged and the next one runs
func (w *implWatcher) work(ctx context.Context) error {
	for pair := range w.queue {
		if err := w.handler(ctx, pair); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", pair.Subtitle, err)
		}
	}
	return nil
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isSubtitleFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".srt"
}

// findPair looks for media sharing the subtitle's base name, in
// mediaFormats order, and an optional <base>.intervals.yaml
func findPair(srtPath string) (Pair, bool) {
	base := strings.TrimSuffix(srtPath, filepath.Ext(srtPath))

	pair := Pair{Subtitle: srtPath}
	for _, ext := range mediaFormats {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			pair.Media = candidate
			break
		}
	}
	if pair.Media == "" {
		return Pair{}, false
	}

	if _, err := os.Stat(base + ".intervals.yaml"); err == nil {
		pair.Intervals = base + ".intervals.yaml"
	}
	return pair, true
}
