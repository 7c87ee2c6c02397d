package volume

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
)

// Entry is the on-disk form of an interval
type Entry struct {
	Start           string `yaml:"start"`
	End             string `yaml:"end"`
	NarrationVolume int    `yaml:"narration_volume"`
	BaseVolume      int    `yaml:"base_volume"`
}

// Interval converts the entry, validating timestamps and volumes
func (e Entry) Interval() (Interval, error) {
	start, err := subtitle.ParseTimestamp(e.Start)
	if err != nil {
		return Interval{}, fmt.Errorf("start: %w", err)
	}
	end, err := subtitle.ParseTimestamp(e.End)
	if err != nil {
		return Interval{}, fmt.Errorf("end: %w", err)
	}
	return NewInterval(start, end, e.NarrationVolume, e.BaseVolume)
}

// LoadFile reads a YAML list of entries into a new Set. Every entry goes
// through Add, so a file with overlapping entries is rejected.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intervals: %w", err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse intervals: %w", err)
	}

	set := NewSet()
	for i, e := range entries {
		iv, err := e.Interval()
		if err != nil {
			return nil, fmt.Errorf("interval %d: %w", i+1, err)
		}
		if err := set.Add(iv); err != nil {
			return nil, fmt.Errorf("interval %d: %w", i+1, err)
		}
	}
	return set, nil
}

// SaveFile writes the set as a YAML list of entries
func SaveFile(path string, s *Set) error {
	entries := make([]Entry, 0, s.Len())
	for _, iv := range s.intervals {
		entries = append(entries, Entry{
			Start:           subtitle.FormatTimestamp(iv.Start),
			End:             subtitle.FormatTimestamp(iv.End),
			NarrationVolume: percent(iv.NarrationGain),
			BaseVolume:      percent(iv.BaseGain),
		})
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal intervals: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func percent(gain float64) int {
	return int(gain*100 + 0.5)
}
