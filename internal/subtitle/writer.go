package subtitle

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Format renders captions as SRT text, numbering blocks from 1
func Format(captions []Caption) string {
	var b strings.Builder
	for i, c := range captions {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(c.Start), FormatTimestamp(c.End))
		fmt.Fprintf(&b, "%s\n\n", c.Text)
	}
	return b.String()
}

// Write writes captions to an SRT file
func Write(path string, captions []Caption) error {
	return os.WriteFile(path, []byte(Format(captions)), 0644)
}

// FormatTimestamp renders d as HH:MM:SS,mmm. Sub-millisecond precision is
// truncated and negative offsets render as zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / int64(time.Hour/time.Millisecond)
	minutes := ms / int64(time.Minute/time.Millisecond) % 60
	seconds := ms / 1000 % 60

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms%1000)
}
