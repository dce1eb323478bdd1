package audio

import (
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

// Options names the external tools and their settings.
type Options struct {
	YtDlpBinary  string
	FFmpegBinary string
	AudioFormat  string
	SampleRate   int
	CookiesPath  string
	ExtraArgs    []string
}

type implAcquirer struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
}

// New creates an Acquirer backed by yt-dlp and ffmpeg.
func New(opts Options, exec executor.Executor, log logger.Logger) Acquirer {
	if opts.YtDlpBinary == "" {
		opts.YtDlpBinary = "yt-dlp"
	}
	if opts.FFmpegBinary == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.AudioFormat == "" {
		opts.AudioFormat = "mp3"
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	return &implAcquirer{
		opts:     opts,
		executor: exec,
		logger:   log,
	}
}

// CheckBinaries verifies that yt-dlp and ffmpeg can be found.
func CheckBinaries(opts Options) error {
	ytdlp, ffmpeg := opts.YtDlpBinary, opts.FFmpegBinary
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return executor.LookPath(ytdlp, ffmpeg)
}
