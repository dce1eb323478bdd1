package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	YtDlp       YtDlpConfig       `yaml:"ytdlp"`
	Subtitles   SubtitlesConfig   `yaml:"subtitles"`
	Overlap     OverlapConfig     `yaml:"overlap"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	HTTP        HTTPConfig        `yaml:"http"`
	Storage     StorageConfig     `yaml:"storage"`
}

type WhisperConfig struct {
	// Backend selects the speech model: "cli" runs whisper.cpp locally,
	// "http" calls an OpenAI-compatible transcription endpoint.
	Backend    string        `yaml:"backend" env:"WHISPER_BACKEND"`
	ModelPath  string        `yaml:"model_path"`
	BinaryPath string        `yaml:"binary_path"`
	Model      string        `yaml:"model"`
	URL        string        `yaml:"url" env:"WHISPER_URL"`
	Language   string        `yaml:"language"`
	Prompt     string        `yaml:"prompt"`
	Threads    int           `yaml:"threads"`
	UseGPU     bool          `yaml:"use_gpu"`
	Timeout    time.Duration `yaml:"timeout"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	SampleRate int    `yaml:"sample_rate"`
}

type YtDlpConfig struct {
	BinaryPath  string   `yaml:"binary_path"`
	AudioFormat string   `yaml:"audio_format"`
	CookiesPath string   `yaml:"cookies_path"`
	ExtraArgs   []string `yaml:"extra_args"`
}

type SubtitlesConfig struct {
	Languages         []string      `yaml:"languages"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MaxRetries        *int          `yaml:"max_retries"` // nil uses 2, 0 disables retries
}

type OverlapConfig struct {
	Threshold *int `yaml:"threshold"` // nil uses 85
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
	Failed   string `yaml:"failed"`
	Temp     string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type PerformanceConfig struct {
	MaxConcurrent     int           `yaml:"max_concurrent"`
	TranscriptTimeout time.Duration `yaml:"transcript_timeout"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys" env:"GEMINI_API_KEYS" envSeparator:","`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	AuthToken    string        `yaml:"-" env:"HTTP_AUTH_TOKEN"`

	// TaskRetention is how long finished async tasks stay queryable.
	TaskRetention time.Duration `yaml:"task_retention"`
}

type StorageConfig struct {
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Region    string `yaml:"region" env:"S3_REGION"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"-" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"-" env:"S3_SECRET_KEY"`
}

// S3Enabled reports whether outputs go to object storage instead of paths.output.
func (s StorageConfig) S3Enabled() bool {
	return s.Bucket != ""
}

// Overrides holds CLI flag values that take priority over env vars and the YAML file.
type Overrides struct {
	EnvFile  string
	LogLevel string
	HTTPAddr string
}

// Load reads the YAML config at path and applies environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, Overrides{})
}

// LoadWithOverrides reads configuration from the YAML file, a .env file, environment
// variables and CLI overrides, then validates it.
// Priority: CLI flags > environment variables > .env file > YAML > defaults.
func LoadWithOverrides(path string, overrides Overrides) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// .env is optional; real environment variables win over it
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if overrides.LogLevel != "" {
		cfg.Logging.Level = overrides.LogLevel
	}
	if overrides.HTTPAddr != "" {
		cfg.HTTP.Addr = overrides.HTTPAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Whisper.Backend == "" {
		c.Whisper.Backend = "cli"
	}
	switch c.Whisper.Backend {
	case "cli":
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required")
		}
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required")
		}
	case "http":
		if c.Whisper.URL == "" {
			return fmt.Errorf("whisper.url is required for the http backend")
		}
	default:
		return fmt.Errorf("whisper.backend must be \"cli\" or \"http\", got %q", c.Whisper.Backend)
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if t := c.Overlap.Threshold; t != nil && (*t < 0 || *t > 100) {
		return fmt.Errorf("overlap.threshold must be within 0-100, got %d", *t)
	}
	if r := c.Subtitles.MaxRetries; r != nil && *r < 0 {
		return fmt.Errorf("subtitles.max_retries must not be negative, got %d", *r)
	}

	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.Timeout == 0 {
		c.Whisper.Timeout = 10 * time.Minute
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.YtDlp.BinaryPath == "" {
		c.YtDlp.BinaryPath = "yt-dlp"
	}
	if c.YtDlp.AudioFormat == "" {
		c.YtDlp.AudioFormat = "mp3"
	}
	if len(c.Subtitles.Languages) == 0 {
		c.Subtitles.Languages = []string{"ko", "en"}
	}
	if c.Subtitles.BaseURL == "" {
		c.Subtitles.BaseURL = "https://www.youtube.com"
	}
	if c.Subtitles.Timeout == 0 {
		c.Subtitles.Timeout = 15 * time.Second
	}
	if c.Subtitles.RequestsPerSecond == 0 {
		c.Subtitles.RequestsPerSecond = 2
	}
	if c.Subtitles.MaxRetries == nil {
		c.Subtitles.MaxRetries = intPtr(2)
	}
	if c.Overlap.Threshold == nil {
		c.Overlap.Threshold = intPtr(85)
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Failed == "" {
		c.Paths.Failed = "data/failed"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Performance.TranscriptTimeout == 0 {
		c.Performance.TranscriptTimeout = 30 * time.Minute
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 45 * time.Minute
	}
	if c.HTTP.TaskRetention == 0 {
		c.HTTP.TaskRetention = time.Hour
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 120 * time.Second
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}

	return nil
}

func intPtr(v int) *int {
	return &v
}
