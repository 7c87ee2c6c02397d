// Package volume holds user-declared ducking intervals: time ranges that
// override the narration and base track gains.
package volume

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
)

// MaxPercent is the highest accepted gain percent (2x amplification)
const MaxPercent = 200

// Interval is a [Start, End) range carrying override gains
type Interval struct {
	Start         time.Duration
	End           time.Duration
	NarrationGain float64
	BaseGain      float64
}

// Contains reports whether t falls inside [Start, End)
func (iv Interval) Contains(t time.Duration) bool {
	return iv.Start <= t && t < iv.End
}

// Overlaps reports whether iv and other share any instant
func (iv Interval) Overlaps(other Interval) bool {
	return !(iv.End <= other.Start || iv.Start >= other.End)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s–%s]", subtitle.FormatTimestamp(iv.Start), subtitle.FormatTimestamp(iv.End))
}

// ValidationError reports an interval whose bounds or gains are unusable
type ValidationError struct {
	Start  time.Duration
	End    time.Duration
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("interval %s: %s", Interval{Start: e.Start, End: e.End}, e.Reason)
}

// OverlapError reports an interval that conflicts with an accepted one
type OverlapError struct {
	Candidate Interval
	Existing  Interval
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("interval %s overlaps existing interval %s", e.Candidate, e.Existing)
}

// NewInterval builds an Interval from user-entered percent values
func NewInterval(start, end time.Duration, narrationPercent, basePercent int) (Interval, error) {
	if start < 0 {
		return Interval{}, &ValidationError{Start: start, End: end, Reason: "start must not be negative"}
	}
	if end <= start {
		return Interval{}, &ValidationError{Start: start, End: end, Reason: "end must be after start"}
	}
	for _, p := range []int{narrationPercent, basePercent} {
		if p < 0 || p > MaxPercent {
			return Interval{}, &ValidationError{Start: start, End: end, Reason: fmt.Sprintf("volume %d%% outside 0-%d%%", p, MaxPercent)}
		}
	}

	return Interval{
		Start:         start,
		End:           end,
		NarrationGain: Gain(narrationPercent),
		BaseGain:      Gain(basePercent),
	}, nil
}

// validate checks bounds and gains of an Interval built without NewInterval
func (iv Interval) validate() error {
	if iv.Start < 0 {
		return &ValidationError{Start: iv.Start, End: iv.End, Reason: "start must not be negative"}
	}
	if iv.End <= iv.Start {
		return &ValidationError{Start: iv.Start, End: iv.End, Reason: "end must be after start"}
	}
	for _, g := range []float64{iv.NarrationGain, iv.BaseGain} {
		// written so NaN fails too
		if !(g >= 0 && g <= Gain(MaxPercent)) {
			return &ValidationError{Start: iv.Start, End: iv.End, Reason: fmt.Sprintf("gain %v outside 0-%v", g, Gain(MaxPercent))}
		}
	}
	return nil
}

// Gain converts a volume percent into a linear gain factor
func Gain(percent int) float64 {
	return float64(percent) / 100.0
}

// Set is an ordered collection of pairwise non-overlapping intervals.
// Declaration order is preserved because the merge engine resolves
// overlaps by it.
type Set struct {
	intervals []Interval
}

// NewSet returns an empty Set
func NewSet() *Set {
	return &Set{}
}

// Add appends iv after checking it against every accepted interval
func (s *Set) Add(iv Interval) error {
	if err := s.check(iv, -1); err != nil {
		return err
	}
	s.intervals = append(s.intervals, iv)
	return nil
}

// Edit replaces the interval at index i, re-validating against all others
func (s *Set) Edit(i int, iv Interval) error {
	if i < 0 || i >= len(s.intervals) {
		return fmt.Errorf("edit interval %d: index out of range (have %d)", i, len(s.intervals))
	}
	if err := s.check(iv, i); err != nil {
		return err
	}
	s.intervals[i] = iv
	return nil
}

// Remove deletes the interval at index i
func (s *Set) Remove(i int) error {
	if i < 0 || i >= len(s.intervals) {
		return fmt.Errorf("remove interval %d: index out of range (have %d)", i, len(s.intervals))
	}
	s.intervals = append(s.intervals[:i], s.intervals[i+1:]...)
	return nil
}

// Intervals returns a copy of the accepted intervals in declaration order
func (s *Set) Intervals() []Interval {
	out := make([]Interval, len(s.intervals))
	copy(out, s.intervals)
	return out
}

// Len returns the number of accepted intervals
func (s *Set) Len() int {
	return len(s.intervals)
}

func (s *Set) check(iv Interval, skip int) error {
	if err := iv.validate(); err != nil {
		return err
	}
	for j, existing := range s.intervals {
		if j == skip {
			continue
		}
		if iv.Overlaps(existing) {
			return &OverlapError{Candidate: iv, Existing: existing}
		}
	}
	return nil
}
