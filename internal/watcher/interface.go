package watcher

import "context"

// Watcher monitors a drop folder for subtitle files
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// Pair is a subtitle file matched with its media and optional interval file
type Pair struct {
	Subtitle  string
	Media     string
	Intervals string
}

// JobHandler processes one pair. Handlers are never called concurrently.
type JobHandler func(ctx context.Context, pair Pair) error
