package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/transcript-flow/pkg/executor"
)

// CLIOptions configures the whisper.cpp binary.
type CLIOptions struct {
	BinaryPath string
	ModelPath  string
	Model      string
	Language   string
	Prompt     string
	Threads    int
}

// WhisperCLI runs whisper.cpp as a subprocess.
type WhisperCLI struct {
	opts     CLIOptions
	executor executor.Executor
}

// NewWhisperCLI checks that the binary and model file exist and returns a ready model.
func NewWhisperCLI(opts CLIOptions, exec executor.Executor) (*WhisperCLI, error) {
	if err := executor.LookPath(opts.BinaryPath); err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper model: %w", err)
	}
	if opts.Language == "" {
		opts.Language = "auto"
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	return &WhisperCLI{opts: opts, executor: exec}, nil
}

// Name implements Model.
func (w *WhisperCLI) Name() string {
	if w.opts.Model != "" {
		return "whisper.cpp/" + w.opts.Model
	}
	return "whisper.cpp/" + filepath.Base(w.opts.ModelPath)
}

// Transcribe implements Model.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	// whisper.cpp appends .txt to the prefix
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	// -otxt: plain text output
	// -l: "auto" lets the model detect the language
	args := []string{
		"-m", w.opts.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-l", w.opts.Language,
		"-t", strconv.Itoa(w.opts.Threads),
		"--output-file", outputPrefix,
	}
	if w.opts.Prompt != "" {
		args = append(args, "--prompt", w.opts.Prompt)
	}

	if _, err := w.executor.Execute(ctx, w.opts.BinaryPath, args...); err != nil {
		return Result{}, fmt.Errorf("whisper: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}
	_ = os.Remove(txtPath)

	return Result{
		Text:     strings.Join(strings.Fields(string(data)), " "),
		Language: w.opts.Language,
	}, nil
}
