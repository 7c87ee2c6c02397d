package narration

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/internal/media"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
)

type implSynthesizer struct {
	engine Engine
	prober media.Prober
}

// NewSynthesizer creates a Synthesizer over engine, measuring clips with prober
func NewSynthesizer(engine Engine, prober media.Prober) Synthesizer {
	return &implSynthesizer{engine: engine, prober: prober}
}

func (s *implSynthesizer) Synthesize(ctx context.Context, req Request) (timeline.Clip, error) {
	opts := Options{Gain: req.Gain, Rate: req.Rate, Voice: req.Voice}
	if err := s.engine.Synthesize(ctx, req.Caption.Text, req.OutputPath, opts); err != nil {
		return timeline.Clip{}, &SynthesisError{Index: req.Index, Voice: req.Voice, Err: err}
	}

	duration, err := s.prober.Duration(ctx, req.OutputPath)
	if err != nil {
		return timeline.Clip{}, &SynthesisError{Index: req.Index, Voice: req.Voice, Err: fmt.Errorf("measure output: %w", err)}
	}

	return timeline.Clip{
		Source:   req.OutputPath,
		Start:    req.Caption.Start,
		Duration: duration,
	}, nil
}

// ResolveVoice maps a voice display name, or an id, to the engine id.
// An empty name selects the engine default.
func ResolveVoice(ctx context.Context, engine Engine, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	voices, err := engine.Voices(ctx)
	if err != nil {
		return "", &SynthesisError{Index: -1, Voice: name, Err: fmt.Errorf("list voices: %w", err)}
	}
	for _, v := range voices {
		if v.Name == name {
			return v.ID, nil
		}
	}
	for _, v := range voices {
		if strings.EqualFold(v.ID, name) {
			return v.ID, nil
		}
	}
	return "", &SynthesisError{Index: -1, Voice: name, Err: ErrUnknownVoice}
}
