// Package narration turns captions into narration clips through an
// external text-to-speech engine.
package narration

import (
	"context"

	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
)

// Voice is one engine voice
type Voice struct {
	ID   string
	Name string
}

// Options tune one engine call. Gain is linear in [0,2], Rate is in
// words per minute within [50,400], an empty Voice means the engine default.
type Options struct {
	Gain  float64
	Rate  int
	Voice string
}

// Engine is the external TTS boundary. Implementations are not required
// to be reentrant; callers synthesize one text at a time.
type Engine interface {
	Synthesize(ctx context.Context, text, outputPath string, opts Options) error
	Voices(ctx context.Context) ([]Voice, error)
}

// Request asks for one caption to be narrated into OutputPath
type Request struct {
	Index      int
	Caption    subtitle.Caption
	Voice      string
	Rate       int
	Gain       float64
	OutputPath string
}

// Synthesizer produces a clip anchored at the caption start whose
// duration is measured from the written audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (timeline.Clip, error)
}
