package narration

import (
	"errors"
	"fmt"
)

// ErrUnknownVoice is wrapped by SynthesisError when a voice cannot be resolved
var ErrUnknownVoice = errors.New("voice not found")

// SynthesisError reports a TTS failure. Index is the caption position,
// or -1 when no caption was involved.
type SynthesisError struct {
	Index int
	Voice string
	Err   error
}

func (e *SynthesisError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("voice %q: %v", e.Voice, e.Err)
	}
	return fmt.Sprintf("synthesize caption %d (voice %q): %v", e.Index+1, e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
