package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
)

// Prober measures media duration
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

type implProber struct {
	executor executor.Executor
	binary   string
}

// NewProber creates a Prober backed by ffprobe at binary
func NewProber(exec executor.Executor, binary string) Prober {
	return &implProber{executor: exec, binary: binary}
}

// Duration returns the container duration reported by ffprobe
func (p *implProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	out, err := p.executor.Execute(ctx, p.binary, args...)
	if err != nil {
		return 0, &MediaError{Op: "probe", Path: path, Err: err}
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, &MediaError{Op: "probe", Path: path, Err: fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)}
	}
	if seconds < 0 {
		return 0, &MediaError{Op: "probe", Path: path, Err: fmt.Errorf("negative duration %v", seconds)}
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
