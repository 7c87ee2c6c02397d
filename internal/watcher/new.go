package watcher

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

// queueSize bounds how many detected pairs may wait for the worker
const queueSize = 64

// New creates a Watcher on inputDir. Detected pairs are handled one at a
// time by a single worker.
func New(inputDir string, handler JobHandler, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inputDir: inputDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		queue:    make(chan Pair, queueSize),
	}, nil
}
