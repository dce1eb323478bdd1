package combiner

import (
	"encoding/json"
	"time"
)

// Stage is a step of one combined-transcript invocation.
type Stage int

const (
	Normalizing Stage = iota
	FetchingSubtitles
	AcquiringAudio
	Transcribing
	Resolving
	Combining
	Cleanup
	Done
	Failed
)

var stageNames = [...]string{
	Normalizing:       "normalizing",
	FetchingSubtitles: "fetching_subtitles",
	AcquiringAudio:    "acquiring_audio",
	Transcribing:      "transcribing",
	Resolving:         "resolving",
	Combining:         "combining",
	Cleanup:           "cleanup",
	Done:              "done",
	Failed:            "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// MarshalText lets stages appear by name in JSON.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StageOutcome records how one stage ended. A non-nil Err on a stage other than
// Normalizing is a soft failure: the invocation continued with an empty source.
type StageOutcome struct {
	Stage    Stage
	Err      error
	Duration time.Duration
}

func (o StageOutcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Stage      Stage  `json:"stage"`
		Error      string `json:"error,omitempty"`
		DurationMS int64  `json:"duration_ms"`
	}{Stage: o.Stage, DurationMS: o.Duration.Milliseconds()}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// Failed reports whether the stage ended with an error.
func (o StageOutcome) Failed() bool {
	return o.Err != nil
}
