package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/media"
	"github.com/nguyentantai21042004/narration-flow/internal/narration"
	"github.com/nguyentantai21042004/narration-flow/internal/script"
	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
	"github.com/nguyentantai21042004/narration-flow/internal/volume"
)

// Process parses the subtitles, narrates every caption, merges the
// narration with the base track and renders the output. Temp narration
// files are removed on every exit path.
func (p *implProcessor) Process(ctx context.Context, job Job) (Result, error) {
	startTime := time.Now()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting narration job: %s + %s", job.SubtitlePath, job.MediaPath)
	p.logger.Info(ctx, "========================================")
	p.sink.Push("Processing started...")

	if err := job.Settings.Validate(); err != nil {
		return Result{}, fmt.Errorf("settings: %w", err)
	}

	// Step 1: Parse subtitles
	captions, err := subtitle.ParseFile(job.SubtitlePath)
	if err != nil {
		return Result{}, fmt.Errorf("parse subtitles: %w", err)
	}
	p.sink.Push("Found %d captions in the subtitle file.", len(captions))

	// Step 2: Resolve the voice before touching any media
	voiceName := job.Settings.Voice
	if voiceName == "" {
		voiceName = p.cfg.TTS.DefaultVoice
	}
	voice, err := narration.ResolveVoice(ctx, p.engine, voiceName)
	if err != nil {
		return Result{}, fmt.Errorf("resolve voice: %w", err)
	}

	ws, err := narration.NewWorkspace(p.cfg.Paths.Work)
	if err != nil {
		return Result{}, err
	}
	defer p.cleanupWorkspace(ctx, ws)

	// Step 3: Locate and measure the base media
	mediaPath, err := p.resolveMedia(ctx, job.MediaPath, ws)
	if err != nil {
		return Result{}, fmt.Errorf("resolve media: %w", err)
	}
	baseDuration, err := p.prober.Duration(ctx, mediaPath)
	if err != nil {
		return Result{}, fmt.Errorf("probe base media: %w", err)
	}
	p.logger.Info(ctx, "Base media duration: %s", baseDuration)

	// Step 4: Narrate captions one at a time
	p.sink.Push("Narrating captions with the selected voice...")
	clips, err := p.synthesizeAll(ctx, captions, voice, job.Settings.NarrationRate, ws)
	if err != nil {
		return Result{}, err
	}

	// Step 5: Merge
	p.sink.Push("Placing narration on the timeline...")
	segments := timeline.Merge(timeline.Request{
		BaseDuration:  baseDuration,
		NarrationGain: volume.Gain(job.Settings.NarrationVolume),
		BaseGain:      volume.Gain(job.Settings.BaseVolume),
		Clips:         clips,
		Intervals:     job.Intervals,
	})

	// Step 6: Render
	outputPath := media.OutputPath(ws.Dir(), job.Settings.OutputFormat)
	err = p.composer.Compose(ctx, media.ComposeRequest{
		BasePath:     mediaPath,
		BaseDuration: baseDuration,
		Clips:        clips,
		Segments:     segments,
		Format:       job.Settings.OutputFormat,
		OutputPath:   outputPath,
	})
	if err != nil {
		return Result{}, fmt.Errorf("render output: %w", err)
	}

	result := Result{
		OutputPath:   outputPath,
		Captions:     len(captions),
		BaseDuration: baseDuration,
	}
	for _, c := range clips {
		result.NarrationTotal += c.Duration
	}
	for _, s := range segments {
		if s.Kind == timeline.Base {
			result.BaseSegments++
		} else {
			result.NarrationSegments++
		}
	}

	// Step 7: Narration script for review
	if p.cfg.Script.Enabled {
		scriptPath, err := p.writeScript(ctx, job, captions, clips, ws.Dir())
		if err != nil {
			p.logger.Warn(ctx, "Failed to write narration script: %v", err)
		} else {
			result.ScriptPath = scriptPath
		}
	}

	result.Elapsed = time.Since(startTime)
	p.sink.Push("Done. Output file: %s", outputPath)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Output: %s", outputPath)
	p.logger.Info(ctx, "Segments: %d base, %d narration", result.BaseSegments, result.NarrationSegments)
	p.logger.Info(ctx, "Processing time: %s", result.Elapsed)
	p.logger.Info(ctx, "========================================")

	return result, nil
}

// synthesizeAll runs the engine strictly sequentially; it is not reentrant
func (p *implProcessor) synthesizeAll(ctx context.Context, captions []subtitle.Caption, voice string, rate int, ws *narration.Workspace) ([]timeline.Clip, error) {
	clips := make([]timeline.Clip, 0, len(captions))
	for i, c := range captions {
		clip, err := p.synthesizer.Synthesize(ctx, narration.Request{
			Index:      i,
			Caption:    c,
			Voice:      voice,
			Rate:       rate,
			Gain:       1.0,
			OutputPath: ws.ClipPath(i),
		})
		if err != nil {
			return nil, fmt.Errorf("narrate: %w", err)
		}
		clips = append(clips, clip)

		p.logger.Debug(ctx, "Caption %d narrated: %s long, starts at %s", i+1, clip.Duration, clip.Start)
		p.sink.Push("%d/%d: '%s' narrated.", i+1, len(captions), c.Text)
	}
	return clips, nil
}

// resolveMedia downloads remote sources into the workspace
func (p *implProcessor) resolveMedia(ctx context.Context, source string, ws *narration.Workspace) (string, error) {
	if !media.IsRemote(source) {
		return source, nil
	}
	p.sink.Push("Downloading source media...")
	path, err := p.fetcher.Fetch(ctx, source, ws.Dir())
	if err != nil {
		return "", err
	}
	ws.Track(path)
	return path, nil
}

func (p *implProcessor) writeScript(ctx context.Context, job Job, captions []subtitle.Caption, clips []timeline.Clip, dir string) (string, error) {
	entries := make([]script.Entry, len(captions))
	for i := range captions {
		entries[i] = script.Entry{Caption: captions[i], Clip: clips[i]}
	}

	path := filepath.Join(dir, p.cfg.Script.Filename)
	if err := script.Write(filepath.Base(job.MediaPath), entries, path); err != nil {
		return "", err
	}
	p.logger.Info(ctx, "Narration script written: %s", path)
	return path, nil
}

// cleanupWorkspace removes temp narration files, logs warning if it fails
func (p *implProcessor) cleanupWorkspace(ctx context.Context, ws *narration.Workspace) {
	files := len(ws.Files())
	if err := ws.Cleanup(); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp files: %v", err)
		return
	}
	p.logger.Debug(ctx, "Cleaned up %d temp files", files)
}
