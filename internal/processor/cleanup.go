package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProcessFile processes every URL in a request file, one per line. Blank lines
// and lines starting with '#' are skipped. The file is archived only when every
// URL succeeded. When ctx ends first it stays in the inbox for the next run,
// otherwise it moves to the failed folder.
func (p *implProcessor) ProcessFile(ctx context.Context, path string) error {
	urls, err := readRequestFile(path)
	if err != nil {
		return fmt.Errorf("read request %s: %w", path, err)
	}
	p.logger.Info(ctx, "Request %s: %d URLs", filepath.Base(path), len(urls))

	var errs []error
	for _, u := range urls {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		job, err := p.Process(ctx, u)
		if err != nil {
			p.logger.Error(ctx, "Failed to process %s: %v", u, err)
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		p.logger.Info(ctx, "[DONE] %s -> %s", u, job.Outputs["transcript.txt"])
	}

	switch {
	case ctx.Err() != nil:
		p.logger.Warn(ctx, "Request %s interrupted, left in inbox", filepath.Base(path))
	case len(errs) > 0:
		if err := p.moveTo(ctx, p.opts.FailedDir, path); err != nil {
			p.logger.Warn(ctx, "Failed to move request to failed folder: %v", err)
		}
	default:
		if err := p.moveTo(ctx, p.opts.ArchivedDir, path); err != nil {
			p.logger.Warn(ctx, "Failed to move request to archived folder: %v", err)
		}
	}
	return errors.Join(errs...)
}

func readRequestFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// moveTo moves a handled request file out of the inbox into dir.
// An empty dir leaves the file where it is.
func (p *implProcessor) moveTo(ctx context.Context, dir, path string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	destPath := filepath.Join(dir, filepath.Base(path))

	p.logger.Info(ctx, "Moving request: %s -> %s", path, destPath)

	if err := os.Rename(path, destPath); err != nil {
		return fmt.Errorf("move request: %w", err)
	}
	return nil
}

// cleanupTemp removes a temporary path, logs warning if fails
func (p *implProcessor) cleanupTemp(ctx context.Context, path string) {
	if err := os.RemoveAll(path); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup temp path %s: %v", path, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp path: %s", path)
	}
}
