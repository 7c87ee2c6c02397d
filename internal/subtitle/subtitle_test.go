package subtitle

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sample = `1
00:00:01,000 --> 00:00:03,500
A door opens.

2
00:00:04,250 --> 00:00:06,000
She walks in,
carrying a lamp.

3
01:02:03,004 --> 01:02:05,000
Silence.
`

func TestParse(t *testing.T) {
	got, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Caption{
		{Start: time.Second, End: 3500 * time.Millisecond, Text: "A door opens."},
		{Start: 4250 * time.Millisecond, End: 6 * time.Second, Text: "She walks in, carrying a lamp."},
		{Start: time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, End: time.Hour + 2*time.Minute + 5*time.Second, Text: "Silence."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTolerance(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"crlf line endings", "1\r\n00:00:01,000 --> 00:00:02,000\r\nHi\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nBye\r\n", 2},
		{"byte order mark", "\ufeff1\n00:00:01,000 --> 00:00:02,000\nHi\n", 1},
		{"several blank lines", "1\n00:00:01,000 --> 00:00:02,000\nHi\n\n\n\n2\n00:00:03,000 --> 00:00:04,000\nBye", 2},
		{"position suffix", "1\n00:00:01,000 --> 00:00:02,000 X1:10 X2:20\nHi\n", 1},
		{"empty input", "", 0},
		{"whitespace only", "\n  \n\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(got) != tt.count {
				t.Errorf("Parse() returned %d captions, want %d", len(got), tt.count)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantBlock int
	}{
		{"malformed time range", "1\n00:00:10 --> bad\nHello\n", 1},
		{"missing text line", "1\n00:00:01,000 --> 00:00:02,000\n", 1},
		{"missing arrow", "1\n00:00:01,000 00:00:02,000\nHello\n", 1},
		{"dot separator", "1\n00:00:01.000 --> 00:00:02.000\nHello\n", 1},
		{"end before start", "1\n00:00:05,000 --> 00:00:02,000\nHello\n", 1},
		{"equal start and end", "1\n00:00:05,000 --> 00:00:05,000\nHello\n", 1},
		{"second block broken", "1\n00:00:01,000 --> 00:00:02,000\nOk\n\n2\n00:00:10 --> bad\nHello\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err == nil {
				t.Fatal("Parse() should return error")
			}
			if got != nil {
				t.Errorf("Parse() returned %d partial captions, want none", len(got))
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error %v is not a *FormatError", err)
			}
			if fe.Block != tt.wantBlock {
				t.Errorf("FormatError.Block = %d, want %d", fe.Block, tt.wantBlock)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"00:00:00,000", 0, false},
		{"00:01:05,250", time.Minute + 5*time.Second + 250*time.Millisecond, false},
		{"100:00:00,001", 100*time.Hour + time.Millisecond, false},
		{"00:00:10", 0, true},
		{"00:00:10,5", 0, true},
		{"aa:00:10,500", 0, true},
		{"2562045:59:59,999", 2562045*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond, false},
		{"2562046:00:00,000", 0, true},
		{"9999999:00:00,000", 0, true},
		{"99999999999999999999:00:00,000", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRejectsOverflowingHours(t *testing.T) {
	in := "1\n00:00:01,000 --> 9999999:00:00,000\nToo long\n"

	captions, err := Parse(in)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("Parse() error = %v, want *FormatError", err)
	}
	if captions != nil {
		t.Errorf("Parse() captions = %v, want nil", captions)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	first, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	second, err := Parse(Format(first))
	if err != nil {
		t.Fatalf("Parse(Format()) error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestWriteAndParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	captions := []Caption{
		{Start: 0, End: time.Second, Text: "One"},
		{Start: 2 * time.Second, End: 3 * time.Second, Text: "Two"},
	}
	if err := Write(path, captions); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if diff := cmp.Diff(captions, got); diff != "" {
		t.Errorf("ParseFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{time.Minute + 5*time.Second, "00:01:05,000"},
		{25*time.Hour + 999*time.Millisecond, "25:00:00,999"},
		{1500 * time.Microsecond, "00:00:00,001"},
		{-time.Second, "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTimestamp(tt.in); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
