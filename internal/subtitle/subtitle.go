// Package subtitle reads and writes SubRip (.srt) captions.
package subtitle

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Caption is one timed subtitle entry. End is always after Start.
type Caption struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Span returns End - Start
func (c Caption) Span() time.Duration {
	return c.End - c.Start
}

// FormatError reports a malformed SRT block or timestamp
type FormatError struct {
	Block  int // 1-based position of the block in the file
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("srt block %d: %s", e.Block, e.Reason)
	}
	return fmt.Sprintf("srt block %d: %s: %q", e.Block, e.Reason, e.Line)
}

var (
	reTimestamp = regexp.MustCompile(`^(\d+):(\d{1,2}):(\d{1,2}),(\d{3})$`)
	reTimeRange = regexp.MustCompile(`^(\S+)\s+-->\s+(\S+)(?:\s.*)?$`)
)

// ParseFile reads and parses an SRT file
func ParseFile(path string) ([]Caption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitle file: %w", err)
	}
	return Parse(string(data))
}

// Parse splits text on blank lines and turns every block into a Caption.
// Multi-line caption text is joined with a single space. Parsing is
// all-or-nothing: on error no captions are returned.
func Parse(text string) ([]Caption, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var captions []Caption
	for i, block := range splitBlocks(text) {
		c, err := parseBlock(i+1, block)
		if err != nil {
			return nil, err
		}
		captions = append(captions, c)
	}
	return captions, nil
}

func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(n int, lines []string) (Caption, error) {
	if len(lines) < 3 {
		return Caption{}, &FormatError{Block: n, Line: strings.Join(lines, " "), Reason: "expected index, time range and text lines"}
	}

	m := reTimeRange.FindStringSubmatch(lines[1])
	if m == nil {
		return Caption{}, &FormatError{Block: n, Line: lines[1], Reason: "malformed time range"}
	}
	start, err := ParseTimestamp(m[1])
	if err != nil {
		return Caption{}, &FormatError{Block: n, Line: lines[1], Reason: "malformed start time"}
	}
	end, err := ParseTimestamp(m[2])
	if err != nil {
		return Caption{}, &FormatError{Block: n, Line: lines[1], Reason: "malformed end time"}
	}
	if end <= start {
		return Caption{}, &FormatError{Block: n, Line: lines[1], Reason: "end time must be after start time"}
	}

	return Caption{
		Start: start,
		End:   end,
		Text:  strings.Join(lines[2:], " "),
	}, nil
}

// maxHours keeps the hour term plus at most 99m99.999s inside time.Duration
const maxHours = math.MaxInt64/int64(time.Hour) - 2

// ParseTimestamp parses HH:MM:SS,mmm into an offset from stream start
func ParseTimestamp(s string) (time.Duration, error) {
	m := reTimestamp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("timestamp %q is not HH:MM:SS,mmm", s)
	}

	var parts [4]int
	for i := range parts {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", s, err)
		}
		parts[i] = v
	}
	if int64(parts[0]) > maxHours {
		return 0, fmt.Errorf("timestamp %q: hours out of range", s)
	}

	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second +
		time.Duration(parts[3])*time.Millisecond, nil
}
