// Package timeline reconciles narration clips, the base track and volume
// intervals into one flat list of gain-tagged audio segments.
package timeline

import (
	"sort"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/volume"
)

// Kind distinguishes base track segments from narration overlays
type Kind int

const (
	Base Kind = iota
	Narration
)

func (k Kind) String() string {
	switch k {
	case Base:
		return "base"
	case Narration:
		return "narration"
	default:
		return "unknown"
	}
}

// NoClip is the Segment.Clip value of base segments
const NoClip = -1

// Clip is a synthesized narration placed on the timeline
type Clip struct {
	Source   string
	Start    time.Duration
	Duration time.Duration
}

// End returns Start + Duration
func (c Clip) End() time.Duration {
	return c.Start + c.Duration
}

// Segment is one time-bounded, gain-tagged unit of audio.
// For narration segments Clip indexes Request.Clips and Offset is the
// position inside that clip's audio where the segment begins.
type Segment struct {
	Kind   Kind
	Start  time.Duration
	End    time.Duration
	Gain   float64
	Clip   int
	Offset time.Duration
}

// Duration returns End - Start
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Request is the complete input of one merge
type Request struct {
	BaseDuration  time.Duration
	NarrationGain float64
	BaseGain      float64
	Clips         []Clip
	Intervals     []volume.Interval
}

type gains struct {
	narration float64
	base      float64
}

// Merge segments the timeline at every breakpoint (track bounds, clip
// bounds, interval bounds) and returns base segments covering
// [0, BaseDuration) plus narration segments cut at the same breakpoints.
//
// Intervals are not assumed to be valid. The gains of a piece starting at t
// come from the first interval in declaration order containing t, or the
// request defaults. Narration running past BaseDuration is kept.
//
// The result is ordered by start time, base before narration at equal
// starts, then by clip index. Merge has no side effects.
func Merge(req Request) []Segment {
	points := breakpoints(req)
	lookup := make([]gains, len(points))
	for k, t := range points {
		lookup[k] = req.gainsAt(t)
	}

	var segments []Segment
	for k := 0; k+1 < len(points) && points[k+1] <= req.BaseDuration; k++ {
		segments = append(segments, Segment{
			Kind:  Base,
			Start: points[k],
			End:   points[k+1],
			Gain:  lookup[k].base,
			Clip:  NoClip,
		})
	}

	for i, clip := range req.Clips {
		if clip.Duration <= 0 {
			continue
		}
		end := clip.End()
		// first piece whose right edge is past the clip start
		k := sort.Search(len(points)-1, func(k int) bool { return points[k+1] > clip.Start })
		for ; k+1 < len(points) && points[k] < end; k++ {
			from := max(clip.Start, points[k])
			to := min(end, points[k+1])
			if to <= from {
				continue
			}
			segments = append(segments, Segment{
				Kind:   Narration,
				Start:  from,
				End:    to,
				Gain:   lookup[k].narration,
				Clip:   i,
				Offset: from - clip.Start,
			})
		}
	}

	sort.SliceStable(segments, func(a, b int) bool {
		sa, sb := segments[a], segments[b]
		if sa.Start != sb.Start {
			return sa.Start < sb.Start
		}
		if sa.Kind != sb.Kind {
			return sa.Kind < sb.Kind
		}
		return sa.Clip < sb.Clip
	})
	return segments
}

func breakpoints(req Request) []time.Duration {
	set := map[time.Duration]struct{}{0: {}}
	add := func(t time.Duration) {
		if t >= 0 {
			set[t] = struct{}{}
		}
	}

	add(req.BaseDuration)
	for _, c := range req.Clips {
		add(c.Start)
		add(c.End())
	}
	for _, iv := range req.Intervals {
		add(iv.Start)
		add(iv.End)
	}

	points := make([]time.Duration, 0, len(set))
	for t := range set {
		points = append(points, t)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	return points
}

// gainsAt scans in declaration order; the earliest declared interval wins
// when intervals overlap.
func (req Request) gainsAt(t time.Duration) gains {
	for _, iv := range req.Intervals {
		if iv.Contains(t) {
			return gains{narration: iv.NarrationGain, base: iv.BaseGain}
		}
	}
	return gains{narration: req.NarrationGain, base: req.BaseGain}
}
