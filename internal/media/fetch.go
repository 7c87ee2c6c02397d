package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

// Fetcher downloads remote source media into a local directory
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (string, error)
}

// IsRemote reports whether source should be fetched before use
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

type implFetcher struct {
	logger  logger.Logger
	install sync.Once
	err     error
}

// NewFetcher creates a yt-dlp backed Fetcher. The yt-dlp binary is
// resolved or installed on first use.
func NewFetcher(log logger.Logger) Fetcher {
	return &implFetcher{logger: log}
}

// Fetch downloads url as dir/source.mp4 and returns that path
func (f *implFetcher) Fetch(ctx context.Context, url, dir string) (string, error) {
	f.install.Do(func() {
		_, f.err = ytdlp.Install(ctx, nil)
	})
	if f.err != nil {
		return "", &MediaError{Op: "fetch", Path: url, Err: fmt.Errorf("install yt-dlp: %w", f.err)}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &MediaError{Op: "fetch", Path: dir, Err: err}
	}
	target := filepath.Join(dir, "source.mp4")

	f.logger.Info(ctx, "Downloading source media: %s", url)

	dl := ytdlp.New().
		FormatSort("res,ext:mp4:m4a").
		RecodeVideo("mp4").
		ForceOverwrites().
		Output(filepath.Join(dir, "source.%(ext)s")).
		ProgressFunc(time.Second, func(prog ytdlp.ProgressUpdate) {
			f.logger.Debug(ctx, "download %s %.1f%%", prog.Status, prog.Percent())
		})

	if _, err := dl.Run(ctx, url); err != nil {
		return "", &MediaError{Op: "fetch", Path: url, Err: err}
	}
	if _, err := os.Stat(target); err != nil {
		return "", &MediaError{Op: "fetch", Path: target, Err: fmt.Errorf("download produced no mp4: %w", err)}
	}

	f.logger.Info(ctx, "Source media saved: %s", target)
	return target, nil
}
