// Package script exports the narration script as a Word document for review.
package script

import (
	"fmt"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

// Entry pairs a caption with the clip synthesized for it
type Entry struct {
	Caption subtitle.Caption
	Clip    timeline.Clip
}

// Overrun reports how far the narration runs into next, or 0
func (e Entry) Overrun(next *Entry) time.Duration {
	if next == nil {
		return 0
	}
	if over := e.Clip.End() - next.Caption.Start; over > 0 {
		return over
	}
	return 0
}

// Lines renders the script body, one line per entry
func Lines(entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		line := fmt.Sprintf("%d. [%s → %s] %s (narration %.1fs)",
			i+1,
			subtitle.FormatTimestamp(e.Caption.Start),
			subtitle.FormatTimestamp(e.Caption.End),
			e.Caption.Text,
			e.Clip.Duration.Seconds(),
		)
		var next *Entry
		if i+1 < len(entries) {
			next = &entries[i+1]
		}
		if over := e.Overrun(next); over > 0 {
			line += fmt.Sprintf(" overruns next caption by %.1fs", over.Seconds())
		}
		lines = append(lines, line)
	}
	return lines
}

// Write saves the script for title to outputPath
func Write(title string, entries []Entry, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addRun(doc.AddParagraph(""), title, true, 16)
	addRun(doc.AddParagraph(""), fmt.Sprintf("%d captions", len(entries)), false, fontSize)
	doc.AddParagraph("")

	for _, line := range Lines(entries) {
		addRun(doc.AddParagraph(""), line, false, fontSize)
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save document %s: %w", outputPath, err)
	}
	return nil
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
