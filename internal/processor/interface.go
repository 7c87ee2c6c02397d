package processor

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/settings"
	"github.com/nguyentantai21042004/narration-flow/internal/volume"
)

// Processor runs one narration job end to end
type Processor interface {
	Process(ctx context.Context, job Job) (Result, error)
}

// Job is the input of one run. MediaPath may be a local file or an
// http(s) URL.
type Job struct {
	SubtitlePath string
	MediaPath    string
	Settings     settings.Settings
	Intervals    []volume.Interval
}

// Result summarises a successful run
type Result struct {
	OutputPath        string
	ScriptPath        string
	Captions          int
	BaseDuration      time.Duration
	NarrationTotal    time.Duration
	BaseSegments      int
	NarrationSegments int
	Elapsed           time.Duration
}
