// Package videoref parses the many shapes of a YouTube link into a canonical
// watch URL and its 11-character video identifier.
package videoref

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidReference is returned by Normalize when the URL is not a recognized video link.
var ErrInvalidReference = errors.New("not a valid YouTube video URL")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Reference identifies one video. Construct it with Normalize.
type Reference struct {
	PlatformURL string
	VideoID     string
}

// Normalize extracts the video id from rawURL and returns its canonical reference.
func Normalize(rawURL string) (Reference, error) {
	id := ExtractVideoID(rawURL)
	if id == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, rawURL)
	}
	return Reference{PlatformURL: WatchURL(id), VideoID: id}, nil
}

// WatchURL returns the canonical watch-page URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ExtractVideoID returns the video id in rawURL, or "" when rawURL is not a video link.
func ExtractVideoID(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case segments[0] == "watch" && len(segments) == 1:
			id = u.Query().Get("v")
		case len(segments) >= 2:
			switch segments[0] {
			case "embed", "v", "shorts", "live":
				id = segments[1]
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return ""
	}
	return id
}
