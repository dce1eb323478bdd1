// Package extract fetches a web page or image and reduces it to readable text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; transcript-flow/1.0)"
	maxBodyBytes = 20 * 1024 * 1024
)

// ErrUnsupportedContent is returned for bodies that are neither HTML, plain text
// nor an image.
var ErrUnsupportedContent = errors.New("unsupported content type")

// Page is the readable content of a URL.
type Page struct {
	URL         string
	Title       string
	Text        string
	ContentType string
	// Image is the lead image URL of an HTML page, or URL itself for an image.
	Image string
	// Data holds the body of an image URL.
	Data []byte
}

// Extractor turns a URL into readable text.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (Page, error)
}

// ImageReader transcribes the text visible in an image.
type ImageReader interface {
	ReadImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Options configures an Extractor.
type Options struct {
	Timeout time.Duration // 0 means 10s
	// Images reads text from image URLs. Without it an image page has no Text.
	Images ImageReader
}

type implExtractor struct {
	client *http.Client
	images ImageReader
	logger logger.Logger
}

// New creates an Extractor.
func New(opts Options, log logger.Logger) Extractor {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &implExtractor{
		client: &http.Client{Timeout: opts.Timeout},
		images: opts.Images,
		logger: log,
	}
}

func (e *implExtractor) Extract(ctx context.Context, rawURL string) (Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return Page{}, fmt.Errorf("invalid page url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "" {
		mediaType = http.DetectContentType(body)
		mediaType, _, _ = mime.ParseMediaType(mediaType)
	}

	page := Page{URL: rawURL, ContentType: mediaType}
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil {
			return Page{}, fmt.Errorf("readability %s: %w", rawURL, err)
		}
		page.Title = strings.TrimSpace(article.Title)
		page.Text = CleanText(article.TextContent)
		page.Image = article.Image
	case strings.HasPrefix(mediaType, "text/"):
		page.Text = CleanText(string(body))
	case strings.HasPrefix(mediaType, "image/"):
		page.Image = rawURL
		page.Data = body
		if e.images == nil {
			break
		}
		text, err := e.images.ReadImage(ctx, body, mediaType)
		if err != nil {
			return Page{}, fmt.Errorf("read image %s: %w", rawURL, err)
		}
		page.Text = CleanText(text)
	default:
		return Page{}, fmt.Errorf("%w: %s", ErrUnsupportedContent, mediaType)
	}

	e.logger.Info(ctx, "Extracted %d characters from %s", len(page.Text), rawURL)
	return page, nil
}
