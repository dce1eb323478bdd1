package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/metrics"
	"github.com/nguyentantai21042004/transcript-flow/internal/summarizer"
	"github.com/nguyentantai21042004/transcript-flow/internal/thumbnail"
	"github.com/nguyentantai21042004/transcript-flow/internal/videoref"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Process orchestrates one URL through transcript, digest and storage.
func (p *implProcessor) Process(ctx context.Context, url string) (Job, error) {
	job := Job{ID: uuid.NewString(), URL: url, StartedAt: time.Now()}
	ctx = logger.WithFields(ctx, p.logger, "job_id", job.ID)

	if err := p.semaphore.acquire(ctx); err != nil {
		return job, err
	}
	defer p.semaphore.release()

	p.logger.Info(ctx, "Starting job for %s", url)

	content, thumb, err := p.collect(ctx, &job)
	if err != nil {
		metrics.JobsTotal.WithLabelValues(job.Kind, "error").Inc()
		return job, err
	}
	if content == "" {
		metrics.JobsTotal.WithLabelValues(job.Kind, "empty").Inc()
		p.logger.Warn(ctx, "Nothing to store for %s", url)
		return job, ErrNoContent
	}
	job.Transcript = content

	if p.deps.Summarizer != nil {
		digest, err := p.deps.Summarizer.Summarize(ctx, url, content)
		switch {
		case err == nil:
			job.Digest = &digest
			if job.Title == "" {
				job.Title = digest.Title
			}
		case errors.Is(err, summarizer.ErrEmptyContent):
		default:
			p.logger.Warn(ctx, "Summary skipped: %v", err)
		}
	}

	if err := p.persist(ctx, &job, thumb); err != nil {
		metrics.JobsTotal.WithLabelValues(job.Kind, "error").Inc()
		return job, fmt.Errorf("persist job %s: %w", job.ID, err)
	}

	job.FinishedAt = time.Now()
	metrics.JobsTotal.WithLabelValues(job.Kind, "ok").Inc()
	p.logger.Info(ctx, "Job finished in %s: %d outputs", job.FinishedAt.Sub(job.StartedAt).Round(time.Millisecond), len(job.Outputs))
	return job, nil
}

// collect fills in the job's kind and returns the text to store along with
// the thumbnail, when one is known.
func (p *implProcessor) collect(ctx context.Context, job *Job) (string, *thumbnail.Thumbnail, error) {
	if id := videoref.ExtractVideoID(job.URL); id != "" {
		job.Kind = KindVideo
		job.VideoID = id
		thumb := thumbnail.ForVideo(id)

		if p.opts.TranscriptTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.opts.TranscriptTimeout)
			defer cancel()
		}
		res, err := p.deps.Combiner.Combine(ctx, job.URL)
		job.Stages = res.Outcomes
		if err != nil {
			return "", nil, err
		}
		return res.Transcript, &thumb, nil
	}

	job.Kind = KindPage
	if p.deps.Extractor == nil {
		return "", nil, fmt.Errorf("%w: %q", videoref.ErrInvalidReference, job.URL)
	}
	page, err := p.deps.Extractor.Extract(ctx, job.URL)
	if err != nil {
		return "", nil, err
	}
	job.Title = page.Title
	if thumb, ok := thumbnail.ForPage(page); ok {
		return page.Text, &thumb, nil
	}
	return page.Text, nil, nil
}

// persist writes transcript.txt, digest.json, report.docx and an image
// thumbnail under the job id.
func (p *implProcessor) persist(ctx context.Context, job *Job, thumb *thumbnail.Thumbnail) error {
	job.Outputs = make(map[string]string)
	store := p.deps.Store

	save := func(name string, data []byte, contentType string) error {
		key := job.ID + "/" + name
		if err := store.Save(ctx, key, data, contentType); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		job.Outputs[name] = store.Location(key)
		return nil
	}

	if err := save("transcript.txt", []byte(job.Transcript), "text/plain; charset=utf-8"); err != nil {
		return err
	}

	if thumb != nil {
		switch thumb.Kind {
		case thumbnail.KindImage:
			name := "thumbnail" + thumb.Ext()
			if err := save(name, thumb.Data, thumb.ContentType); err != nil {
				p.logger.Warn(ctx, "Thumbnail skipped: %v", err)
			} else {
				job.Thumbnail = job.Outputs[name]
			}
		case thumbnail.KindRedirect:
			job.Thumbnail = thumb.URL
		}
	}

	report, err := p.renderReport(ctx, job)
	if err != nil {
		p.logger.Warn(ctx, "Report skipped: %v", err)
	} else if err := save("report.docx", report, docxContentType); err != nil {
		return err
	}

	// digest.json goes last so it lists every other output
	job.FinishedAt = time.Now()
	job.Outputs["digest.json"] = store.Location(job.ID + "/digest.json")
	meta, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}
	return save("digest.json", meta, "application/json")
}

// renderReport builds the docx in the temp dir and returns its bytes.
func (p *implProcessor) renderReport(ctx context.Context, job *Job) ([]byte, error) {
	if err := os.MkdirAll(p.opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	tempDir, err := os.MkdirTemp(p.opts.TempDir, "report-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer p.cleanupTemp(ctx, tempDir)

	digest := summarizer.Digest{Title: job.Title}
	if job.Digest != nil {
		digest = *job.Digest
	}
	path := filepath.Join(tempDir, "report.docx")
	if err := summarizer.WriteDocx(digest, job.Transcript, path); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return os.ReadFile(path)
}
