package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/config"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
)

const (
	FormatMP4 = "mp4"
	FormatMP3 = "mp3"
)

// ComposeRequest describes one render: the base media, the narration
// clips indexed by Segment.Clip, and the merged segment list.
type ComposeRequest struct {
	BasePath     string
	BaseDuration time.Duration
	Clips        []timeline.Clip
	Segments     []timeline.Segment
	Format       string
	OutputPath   string
}

// Composer renders a segment list into an output container
type Composer interface {
	Compose(ctx context.Context, req ComposeRequest) error
}

type implComposer struct {
	cfg      config.FFmpegConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewComposer creates an ffmpeg-backed Composer
func NewComposer(cfg config.FFmpegConfig, exec executor.Executor, log logger.Logger) Composer {
	return &implComposer{cfg: cfg, executor: exec, logger: log}
}

// OutputPath returns the deterministic output location inside workDir
func OutputPath(workDir, format string) string {
	return filepath.Join(workDir, "final_output."+format)
}

// Compose layers every segment additively onto one audio stream. Base
// segments cut the source audio, narration segments cut their clip, and
// each piece is scaled by its gain and delayed to its start. For mp4 the
// source video is copied untouched and the audio is cut to the base
// duration. For mp3 the mix is resampled to the configured rate.
func (c *implComposer) Compose(ctx context.Context, req ComposeRequest) error {
	if len(req.Segments) == 0 {
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: errors.New("no segments to render")}
	}
	if req.Format != FormatMP4 && req.Format != FormatMP3 {
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: fmt.Errorf("unsupported format %q", req.Format)}
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: err}
	}

	filter, err := c.filterGraph(req)
	if err != nil {
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: err}
	}

	// Long caption files produce filter graphs past the argv length limit
	script, err := os.CreateTemp(filepath.Dir(req.OutputPath), "filter-*.txt")
	if err != nil {
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: fmt.Errorf("create filter script: %w", err)}
	}
	defer os.Remove(script.Name())
	if _, err := script.WriteString(filter); err != nil {
		script.Close()
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: fmt.Errorf("write filter script: %w", err)}
	}
	if err := script.Close(); err != nil {
		return &MediaError{Op: "compose", Path: req.OutputPath, Err: err}
	}

	args := c.buildArgs(req, script.Name())
	c.logger.Info(ctx, "Rendering %d segments to %s", len(req.Segments), req.OutputPath)
	c.logger.Debug(ctx, "ffmpeg %s", strings.Join(args, " "))

	if _, err := c.executor.Execute(ctx, c.cfg.Binary, args...); err != nil {
		return &MediaError{Op: "render", Path: req.OutputPath, Err: err}
	}

	c.logger.Info(ctx, "Render finished: %s", req.OutputPath)
	return nil
}

func (c *implComposer) buildArgs(req ComposeRequest, scriptPath string) []string {
	args := []string{"-y", "-i", req.BasePath}
	for _, clip := range req.Clips {
		args = append(args, "-i", clip.Source)
	}
	args = append(args, c.cfg.FilterScriptOption, scriptPath)

	switch req.Format {
	case FormatMP4:
		args = append(args,
			"-map", "0:v?",
			"-map", "[aout]",
			"-c:v", c.cfg.VideoCodec,
			"-c:a", c.cfg.AudioCodec,
			"-t", seconds(req.BaseDuration),
		)
	case FormatMP3:
		args = append(args,
			"-map", "[aout]",
			"-vn",
			"-ar", strconv.Itoa(c.cfg.SampleRate),
			"-c:a", c.cfg.MP3Codec,
		)
	}

	return append(args, req.OutputPath)
}

// filterGraph builds the filter_complex text: one trimmed, gained and
// delayed branch per segment, summed by amix without normalisation.
func (c *implComposer) filterGraph(req ComposeRequest) (string, error) {
	var parts []string
	var labels strings.Builder

	for i, seg := range req.Segments {
		input := 0
		from, to := seg.Start, seg.End
		if seg.Kind == timeline.Narration {
			if seg.Clip < 0 || seg.Clip >= len(req.Clips) {
				return "", fmt.Errorf("segment %d references clip %d of %d", i, seg.Clip, len(req.Clips))
			}
			input = seg.Clip + 1
			from = seg.Offset
			to = seg.Offset + seg.Duration()
		}

		label := fmt.Sprintf("s%d", i)
		parts = append(parts, fmt.Sprintf(
			"[%d:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS,volume=%.3f,adelay=delays=%d:all=1[%s]",
			input, seconds(from), seconds(to), seg.Gain, seg.Start.Milliseconds(), label))
		labels.WriteString("[" + label + "]")
	}

	mix := fmt.Sprintf("%samix=inputs=%d:duration=longest:dropout_transition=0:normalize=0", labels.String(), len(req.Segments))
	if req.Format == FormatMP3 {
		mix += fmt.Sprintf(",aresample=%d", c.cfg.SampleRate)
	}
	parts = append(parts, mix+"[aout]")

	return strings.Join(parts, ";\n"), nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
