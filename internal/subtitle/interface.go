package subtitle

import "context"

// Track is an ordered list of caption lines for one video. Empty means no captions.
type Track []string

// Fetcher retrieves the platform-hosted caption track of a video.
type Fetcher interface {
	// Fetch returns the caption lines in the first preferred language that has a track.
	// It returns ErrUnavailable when no track exists in any of the languages and a
	// *FetchError on transport or service faults.
	Fetch(ctx context.Context, videoID string, languages []string) (Track, error)
}
