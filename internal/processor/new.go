package processor

import (
	"github.com/nguyentantai21042004/narration-flow/internal/config"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/media"
	"github.com/nguyentantai21042004/narration-flow/internal/narration"
	"github.com/nguyentantai21042004/narration-flow/internal/progress"
	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
)

type implProcessor struct {
	cfg         *config.Config
	logger      logger.Logger
	sink        progress.Sink
	engine      narration.Engine
	synthesizer narration.Synthesizer
	prober      media.Prober
	composer    media.Composer
	fetcher     media.Fetcher
}

// New creates a Processor whose external tools all run through exec.
// Progress messages for the user go to sink.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger, sink progress.Sink) Processor {
	if sink == nil {
		sink = progress.Discard
	}
	prober := media.NewProber(exec, cfg.FFmpeg.ProbeBinary)
	engine := narration.NewCommandEngine(exec, cfg.TTS.Binary)

	return &implProcessor{
		cfg:         cfg,
		logger:      log,
		sink:        sink,
		engine:      engine,
		synthesizer: narration.NewSynthesizer(engine, prober),
		prober:      prober,
		composer:    media.NewComposer(cfg.FFmpeg, exec, log),
		fetcher:     media.NewFetcher(log),
	}
}
