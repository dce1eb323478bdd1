package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

const (
	downloadName  = "audio"
	convertedName = "audio.wav"
)

// Acquire implements Acquirer.
func (a *implAcquirer) Acquire(ctx context.Context, ref videoref.Reference, ws *Workspace) (Artifact, error) {
	downloaded, err := a.download(ctx, ref, ws)
	if err != nil {
		return Artifact{}, err
	}

	wavPath, err := a.convert(ctx, downloaded, ws)
	if err != nil {
		return Artifact{}, &AcquisitionError{URL: ref.PlatformURL, Stage: "convert", Err: err}
	}
	return Artifact{Path: wavPath}, nil
}

// download fetches the best audio stream and lets yt-dlp re-encode it.
func (a *implAcquirer) download(ctx context.Context, ref videoref.Reference, ws *Workspace) (string, error) {
	a.logger.Info(ctx, "Downloading audio: %s", ref.PlatformURL)

	// -x: audio only
	// -o: yt-dlp fills in the extension after re-encoding
	args := []string{
		"--no-config",
		"--no-playlist",
		"--no-progress",
		"-x",
		"--audio-format", a.opts.AudioFormat,
		"-o", ws.Path(downloadName + ".%(ext)s"),
	}
	if a.opts.CookiesPath != "" {
		args = append(args, "--cookies", a.opts.CookiesPath)
	}
	args = append(args, a.opts.ExtraArgs...)
	args = append(args, ref.PlatformURL)

	if _, err := a.executor.Execute(ctx, a.opts.YtDlpBinary, args...); err != nil {
		return "", &AcquisitionError{URL: ref.PlatformURL, Stage: "download", Err: err}
	}

	path := ws.Path(downloadName + "." + a.opts.AudioFormat)
	info, err := os.Stat(path)
	if err != nil {
		return "", &AcquisitionError{URL: ref.PlatformURL, Stage: "verify", Err: err}
	}
	if info.Size() == 0 {
		return "", &AcquisitionError{URL: ref.PlatformURL, Stage: "verify", Err: errors.New("downloaded audio is empty")}
	}

	a.logger.Debug(ctx, "Audio downloaded: %s (%d bytes)", path, info.Size())
	return path, nil
}

// convert transcodes to mono PCM at the configured sample rate.
func (a *implAcquirer) convert(ctx context.Context, input string, ws *Workspace) (string, error) {
	output := ws.Path(convertedName)

	// -vn: drop any video stream
	// -ac 1: Whisper expects mono
	args := []string{
		"-i", input,
		"-vn",
		"-ar", strconv.Itoa(a.opts.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		output,
	}

	if _, err := a.executor.Execute(ctx, a.opts.FFmpegBinary, args...); err != nil {
		return "", fmt.Errorf("ffmpeg convert: %w", err)
	}

	a.logger.Info(ctx, "Audio ready: %s", output)
	return output, nil
}
