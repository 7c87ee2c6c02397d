package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/narration-flow/internal/config"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/narration"
	"github.com/nguyentantai21042004/narration-flow/internal/processor"
	"github.com/nguyentantai21042004/narration-flow/internal/progress"
	"github.com/nguyentantai21042004/narration-flow/internal/settings"
	"github.com/nguyentantai21042004/narration-flow/internal/volume"
	"github.com/nguyentantai21042004/narration-flow/internal/watcher"
	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
)

type options struct {
	configPath    string
	envPath       string
	srtPath       string
	mediaPath     string
	intervalsPath string
	saveIntervals string
	saveSettings  bool
	listVoices    bool
	watch         bool
	ducks         duckFlags

	voice           string
	format          string
	narrationVolume int
	baseVolume      int
	rate            int
}

func main() {
	if err := run(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Pipeline configuration file (defaults are used when absent)")
	flag.StringVar(&opts.envPath, "env", ".env", "Environment file path")
	flag.StringVar(&opts.srtPath, "srt", "", "Subtitle (.srt) file to narrate")
	flag.StringVar(&opts.mediaPath, "media", "", "Source video/audio file or http(s) URL")
	flag.StringVar(&opts.intervalsPath, "intervals", "", "YAML file of volume intervals")
	flag.StringVar(&opts.saveIntervals, "save-intervals", "", "Write the effective volume intervals to this YAML file")
	flag.BoolVar(&opts.saveSettings, "save-settings", false, "Persist voice, format, volume and rate choices")
	flag.BoolVar(&opts.listVoices, "list-voices", false, "List TTS voices and exit")
	flag.BoolVar(&opts.watch, "watch", false, "Watch the input folder for new subtitle files")
	flag.Var(&opts.ducks, "duck", "Volume interval START,END,NARR%,BASE% (repeatable), e.g. 00:01:00,000,00:01:05,000,100,20")
	flag.StringVar(&opts.voice, "voice", "", "Voice display name or id")
	flag.StringVar(&opts.format, "format", "", "Output format: mp4 or mp3")
	flag.IntVar(&opts.narrationVolume, "narration-volume", 0, "Narration volume percent (0-200)")
	flag.IntVar(&opts.baseVolume, "base-volume", 0, "Base track volume percent (0-200)")
	flag.IntVar(&opts.rate, "rate", 0, "Narration rate in words per minute (50-400)")
	flag.Parse()

	if err := config.LoadEnv(opts.envPath); err != nil {
		return err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Logging.Level)
	exec := executor.New()

	if opts.listVoices {
		return printVoices(ctx, narration.NewCommandEngine(exec, cfg.TTS.Binary))
	}

	sets, err := settings.Load(cfg.Paths.Settings)
	if err != nil {
		return err
	}
	applyOverrides(&sets, opts)
	if err := sets.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if opts.saveSettings {
		if err := settings.Save(cfg.Paths.Settings, sets); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		log.Info(ctx, "Settings saved to %s", cfg.Paths.Settings)
	}

	feed := progress.NewFeed()
	proc := processor.New(cfg, exec, log, feed)

	if opts.watch {
		return watch(ctx, cfg, proc, sets, feed, log)
	}

	if opts.srtPath == "" || opts.mediaPath == "" {
		return errors.New("provide -srt and -media, or run with -watch")
	}

	intervals, err := collectIntervals(opts)
	if err != nil {
		return err
	}
	if opts.saveIntervals != "" {
		if err := volume.SaveFile(opts.saveIntervals, intervals); err != nil {
			return fmt.Errorf("save intervals: %w", err)
		}
	}

	job := processor.Job{
		SubtitlePath: opts.srtPath,
		MediaPath:    opts.mediaPath,
		Settings:     sets,
		Intervals:    intervals.Intervals(),
	}

	// The worker runs in the background while this goroutine drains its progress feed
	var result processor.Result
	var g errgroup.Group
	done := make(chan struct{})
	g.Go(func() error {
		defer close(done)
		var err error
		result, err = proc.Process(ctx, job)
		return err
	})
	drain(feed, done, printMessages)

	if err := g.Wait(); err != nil {
		return err
	}
	printSummary(result)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg, err := config.LoadDefaults()
		if err != nil {
			return nil, fmt.Errorf("default config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies explicitly set flags over the stored settings
func applyOverrides(s *settings.Settings, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "voice":
			s.Voice = opts.voice
		case "format":
			s.OutputFormat = opts.format
		case "narration-volume":
			s.NarrationVolume = opts.narrationVolume
		case "base-volume":
			s.BaseVolume = opts.baseVolume
		case "rate":
			s.NarrationRate = opts.rate
		}
	})
}

// collectIntervals loads the interval file, then adds -duck values through
// the same overlap checks
func collectIntervals(opts options) (*volume.Set, error) {
	set := volume.NewSet()
	if opts.intervalsPath != "" {
		loaded, err := volume.LoadFile(opts.intervalsPath)
		if err != nil {
			return nil, err
		}
		set = loaded
	}
	for _, iv := range opts.ducks {
		if err := set.Add(iv); err != nil {
			return nil, fmt.Errorf("-duck: %w", err)
		}
	}
	return set, nil
}

func watch(ctx context.Context, cfg *config.Config, proc processor.Processor, sets settings.Settings, feed *progress.Feed, log logger.Logger) error {
	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	handler := func(ctx context.Context, pair watcher.Pair) error {
		job := processor.Job{SubtitlePath: pair.Subtitle, MediaPath: pair.Media, Settings: sets}
		if pair.Intervals != "" {
			set, err := volume.LoadFile(pair.Intervals)
			if err != nil {
				return err
			}
			job.Intervals = set.Intervals()
		}
		result, err := proc.Process(ctx, job)
		if err != nil {
			return err
		}
		printSummary(result)
		return nil
	}

	w, err := watcher.New(cfg.Paths.Input, handler, log)
	if err != nil {
		return err
	}
	defer w.Stop()

	stopDrain := startDrain(feed, printMessages)

	log.Info(ctx, "========================================")
	log.Info(ctx, "Narration pipeline is ready!")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Work)
	log.Info(ctx, "Voice: %q, format: %s, rate: %d wpm", sets.Voice, sets.OutputFormat, sets.NarrationRate)
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	err = w.Start(ctx)
	stopDrain()
	if errors.Is(err, context.Canceled) {
		log.Info(ctx, "Shutdown signal received")
		return nil
	}
	return err
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.Input, cfg.Paths.Work} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// drain hands progress messages to out until done is closed, then flushes the rest
func drain(feed *progress.Feed, done <-chan struct{}, out func([]string)) {
	for {
		select {
		case <-feed.Ready():
			out(feed.Drain())
		case <-done:
			out(feed.Drain())
			return
		}
	}
}

// startDrain runs drain in the background. The returned stop func
// returns only after the final flush has been handed to out.
func startDrain(feed *progress.Feed, out func([]string)) (stop func()) {
	done := make(chan struct{})
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		drain(feed, done, out)
	}()
	return func() {
		close(done)
		<-flushed
	}
}

func printMessages(messages []string) {
	for _, m := range messages {
		color.Cyan("» %s", m)
	}
}

func printVoices(ctx context.Context, engine narration.Engine) error {
	voices, err := engine.Voices(ctx)
	if err != nil {
		return err
	}
	for _, v := range voices {
		color.Set(color.FgYellow)
		fmt.Printf("%-12s", v.ID)
		color.Set(color.FgGreen)
		fmt.Printf("%s\n", v.Name)
	}
	color.Unset()
	return nil
}

func printSummary(r processor.Result) {
	rows := []struct {
		label string
		value string
	}{
		{"captions: ", fmt.Sprintf("%d", r.Captions)},
		{"base duration: ", r.BaseDuration.String()},
		{"narration total: ", r.NarrationTotal.String()},
		{"segments: ", fmt.Sprintf("%d base, %d narration", r.BaseSegments, r.NarrationSegments)},
		{"elapsed: ", r.Elapsed.Round(time.Millisecond).String()},
	}
	fmt.Println()
	for _, row := range rows {
		color.Set(color.FgYellow)
		fmt.Print(row.label)
		color.Set(color.FgGreen)
		fmt.Println(row.value)
	}
	color.Set(color.FgYellow)
	fmt.Print("output: ")
	color.Set(color.FgMagenta)
	fmt.Println(r.OutputPath)
	if r.ScriptPath != "" {
		color.Set(color.FgYellow)
		fmt.Print("script: ")
		color.Set(color.FgMagenta)
		fmt.Println(r.ScriptPath)
	}
	color.Unset()
	fmt.Println()
}
