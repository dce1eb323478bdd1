package subtitle

import (
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"golang.org/x/time/rate"
)

// Options configures the caption fetcher.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        *int // nil uses the default of 2, 0 disables retries
	HTTPClient        *http.Client
}

type implFetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retry   retryConfig
	logger  logger.Logger
}

// New creates a Fetcher that scrapes caption tracks from the watch page.
func New(opts Options, log logger.Logger) Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.youtube.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	retry := defaultRetryConfig
	if opts.MaxRetries != nil && *opts.MaxRetries >= 0 {
		retry.MaxRetries = *opts.MaxRetries
	}

	return &implFetcher{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		retry:   retry,
		logger:  log,
	}
}
