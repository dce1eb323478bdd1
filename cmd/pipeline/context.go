package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nguyentantai21042004/transcript-flow/internal/audio"
	"github.com/nguyentantai21042004/transcript-flow/internal/combiner"
	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/extract"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/metrics"
	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
	"github.com/nguyentantai21042004/transcript-flow/internal/storage"
	"github.com/nguyentantai21042004/transcript-flow/internal/subtitle"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
	"github.com/nguyentantai21042004/transcript-flow/internal/thumbnail"
	"github.com/nguyentantai21042004/transcript-flow/internal/transcribe"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

type rootFlags struct {
	configPath string
	envFile    string
	logLevel   string
	httpAddr   string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	logger     logger.Logger
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, logger.Logger, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadWithOverrides(c.flags.configPath, config.Overrides{
			EnvFile:  c.flags.envFile,
			LogLevel: c.flags.logLevel,
			HTTPAddr: c.flags.httpAddr,
		})
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
		c.logger = logger.NewWithOptions(logger.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
	})
	return c.config, c.logger, c.configErr
}

// app holds the wired pipeline.
type app struct {
	cfg       *config.Config
	logger    logger.Logger
	combiner  combiner.Combiner
	processor processor.Processor

	thumbnails thumbnail.Generator
}

func (c *commandContext) buildApp(ctx context.Context) (*app, error) {
	cfg, log, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "System: %s/%s, CPU Cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	exec := executor.New()
	audioOpts := audio.Options{
		YtDlpBinary:  cfg.YtDlp.BinaryPath,
		FFmpegBinary: cfg.FFmpeg.BinaryPath,
		AudioFormat:  cfg.YtDlp.AudioFormat,
		SampleRate:   cfg.FFmpeg.SampleRate,
		CookiesPath:  cfg.YtDlp.CookiesPath,
		ExtraArgs:    cfg.YtDlp.ExtraArgs,
	}
	if err := audio.CheckBinaries(audioOpts); err != nil {
		// transcripts still work from subtitles alone
		log.Warn(ctx, "Audio acquisition unavailable: %v", err)
	}

	subs := subtitle.New(subtitle.Options{
		BaseURL:           cfg.Subtitles.BaseURL,
		Timeout:           cfg.Subtitles.Timeout,
		RequestsPerSecond: cfg.Subtitles.RequestsPerSecond,
		MaxRetries:        cfg.Subtitles.MaxRetries,
	}, log)

	loader := transcribe.NewLoader(transcribe.Options{
		Backend: cfg.Whisper.Backend,
		CLI: transcribe.CLIOptions{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.Whisper.ModelPath,
			Model:      cfg.Whisper.Model,
			Language:   cfg.Whisper.Language,
			Prompt:     cfg.Whisper.Prompt,
			Threads:    cfg.Whisper.Threads,
		},
		HTTP: transcribe.HTTPOptions{
			URL:      cfg.Whisper.URL,
			Model:    cfg.Whisper.Model,
			Language: cfg.Whisper.Language,
			Prompt:   cfg.Whisper.Prompt,
			Timeout:  cfg.Whisper.Timeout,
		},
	}, exec)

	comb := combiner.New(combiner.Options{
		Languages: cfg.Subtitles.Languages,
		Threshold: cfg.Overlap.Threshold,
		TempDir:   cfg.Paths.Temp,
	}, subs, audio.New(audioOpts, exec, log), transcribe.New(loader, log), log)

	store, err := storage.New(ctx, cfg.Storage, cfg.Paths.Output, log)
	if err != nil {
		return nil, err
	}

	deps := processor.Deps{
		Combiner: comb,
		Store:    store,
	}
	extractOpts := extract.Options{}
	if len(cfg.Gemini.APIKeys) > 0 {
		gemini := summarizer.New(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
		deps.Summarizer = gemini
		extractOpts.Images = gemini
	} else {
		log.Warn(ctx, "No Gemini API keys configured, digests will have no summary and images no text")
	}
	deps.Extractor = extract.New(extractOpts, log)

	proc := processor.New(processor.Options{
		ArchivedDir:       cfg.Paths.Archived,
		FailedDir:         cfg.Paths.Failed,
		TempDir:           cfg.Paths.Temp,
		MaxConcurrent:     cfg.Performance.MaxConcurrent,
		TranscriptTimeout: cfg.Performance.TranscriptTimeout,
	}, deps, log)

	if err := prometheus.Register(metrics.NewCollector(proc)); err != nil {
		log.Warn(ctx, "Failed to register job collector: %v", err)
	}

	log.Info(ctx, "Pipeline ready: whisper=%s model=%s storage=%s max_concurrent=%d",
		cfg.Whisper.Backend, cfg.Whisper.Model, store.Type(), cfg.Performance.MaxConcurrent)

	return &app{
		cfg:        cfg,
		logger:     log,
		combiner:   comb,
		processor:  proc,
		thumbnails: thumbnail.New(extract.New(extract.Options{}, log), log),
	}, nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
		cfg.Paths.Failed,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
