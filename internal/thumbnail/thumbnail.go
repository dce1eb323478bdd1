// Package thumbnail picks a preview image for a URL: the YouTube still for a
// video, the image itself for an image URL, or a page's lead image.
package thumbnail

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/transcript-flow/internal/extract"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

// ErrNotFound means the URL has no usable preview image.
var ErrNotFound = errors.New("no thumbnail")

type Kind string

const (
	// KindRedirect thumbnails live elsewhere; URL points at them.
	KindRedirect Kind = "redirect"
	// KindImage thumbnails carry their bytes in Data.
	KindImage Kind = "image"
)

// Thumbnail is a preview image, either by reference or by value.
type Thumbnail struct {
	Kind        Kind
	URL         string
	Data        []byte
	ContentType string
}

// Ext returns a file extension for an image thumbnail.
func (t Thumbnail) Ext() string {
	switch t.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

// ForVideo returns the default still of a YouTube video.
func ForVideo(videoID string) Thumbnail {
	return Thumbnail{
		Kind: KindRedirect,
		URL:  fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", videoID),
	}
}

// ForPage returns the thumbnail of an extracted page, if it has one.
func ForPage(p extract.Page) (Thumbnail, bool) {
	switch {
	case len(p.Data) > 0:
		return Thumbnail{Kind: KindImage, URL: p.URL, Data: p.Data, ContentType: p.ContentType}, true
	case p.Image != "":
		return Thumbnail{Kind: KindRedirect, URL: p.Image}, true
	default:
		return Thumbnail{}, false
	}
}

// Generator finds the thumbnail of an arbitrary URL.
type Generator interface {
	Generate(ctx context.Context, rawURL string) (Thumbnail, error)
}

type implGenerator struct {
	extractor extract.Extractor
	logger    logger.Logger
}

// New creates a Generator that fetches non-video URLs through ex.
func New(ex extract.Extractor, log logger.Logger) Generator {
	return &implGenerator{extractor: ex, logger: log}
}

func (g *implGenerator) Generate(ctx context.Context, rawURL string) (Thumbnail, error) {
	if id := videoref.ExtractVideoID(rawURL); id != "" {
		return ForVideo(id), nil
	}

	page, err := g.extractor.Extract(ctx, rawURL)
	if err != nil {
		return Thumbnail{}, err
	}
	thumb, ok := ForPage(page)
	if !ok {
		return Thumbnail{}, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	g.logger.Debug(ctx, "Thumbnail for %s: %s", rawURL, thumb.Kind)
	return thumb, nil
}
