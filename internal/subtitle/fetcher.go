package subtitle

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// playerResponseMarker precedes the player JSON embedded in the watch page.
	playerResponseMarker = "ytInitialPlayerResponse = "

	maxPageBytes      = 6 * 1024 * 1024
	maxTimedTextBytes = 2 * 1024 * 1024
)

type playerResponse struct {
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch implements Fetcher.
func (f *implFetcher) Fetch(ctx context.Context, videoID string, languages []string) (Track, error) {
	page, err := f.get(ctx, f.baseURL+"/watch?v="+videoID, maxPageBytes)
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Err: fmt.Errorf("watch page: %w", err)}
	}

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, fmt.Errorf("%w: video %s", err, videoID)
		}
		return nil, &FetchError{VideoID: videoID, Err: err}
	}

	track, ok := pickTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("%w: video %s has no track in %v", ErrUnavailable, videoID, languages)
	}
	f.logger.Debug(ctx, "Using %s caption track (kind=%q) for %s", track.LanguageCode, track.Kind, videoID)

	body, err := f.get(ctx, track.BaseURL, maxTimedTextBytes)
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Err: fmt.Errorf("timedtext: %w", err)}
	}

	lines, err := parseTimedText(body)
	if err != nil {
		return nil, &FetchError{VideoID: videoID, Err: err}
	}
	return lines, nil
}

func (f *implFetcher) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	resp, err := f.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// parseCaptionTracks pulls the caption track list out of the watch page HTML.
func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	data := extractJSON(page[idx+len(playerResponseMarker):])
	if data == nil {
		return nil, errors.New("unterminated ytInitialPlayerResponse")
	}

	var player playerResponse
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil || len(player.Captions.Renderer.CaptionTracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w (%s)", ErrUnavailable, player.PlayabilityStatus.Reason)
		}
		return nil, ErrUnavailable
	}
	return player.Captions.Renderer.CaptionTracks, nil
}

// extractJSON returns the balanced JSON object at the start of data, or nil.
func extractJSON(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	depth := 0
	inString := false
	escaped := false
	for i, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}
	return nil
}

// pickTrack walks the preferred languages in order; within a language a manually
// authored track wins over an auto-generated one.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		var auto *captionTrack
		for i, t := range tracks {
			if t.LanguageCode != lang || t.BaseURL == "" {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if auto == nil {
				auto = &tracks[i]
			}
		}
		if auto != nil {
			return *auto, true
		}
	}
	return captionTrack{}, false
}

func parseTimedText(body []byte) (Track, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	lines := make(Track, 0, len(tt.Lines))
	for _, l := range tt.Lines {
		// timedtext double-escapes entities such as &amp;#39;
		text := html.UnescapeString(l.Text)
		text = strings.Join(strings.Fields(text), " ")
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines, nil
}
