package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/transcript-flow/internal/api"
	"github.com/nguyentantai21042004/transcript-flow/internal/tasks"
	"github.com/nguyentantai21042004/transcript-flow/internal/watcher"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process request files (.url, .txt) dropped into paths.input",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd)
			defer stop()

			a, err := ctx.buildApp(runCtx)
			if err != nil {
				return err
			}

			w, err := watcher.New(a.cfg.Paths.Input, a.processor.ProcessFile, a.logger, a.cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			a.logger.Info(runCtx, "Monitoring: %s, output: %s. Press Ctrl+C to stop", a.cfg.Paths.Input, a.cfg.Paths.Output)
			if err := w.Start(runCtx); err != nil && runCtx.Err() == nil {
				return err
			}
			a.logger.Info(context.Background(), "Pipeline stopped")
			return nil
		},
	}
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd)
			defer stop()

			a, err := ctx.buildApp(runCtx)
			if err != nil {
				return err
			}

			registry := tasks.New(a.processor.Process, a.cfg.HTTP.TaskRetention, a.logger)
			srv := api.NewServer(a.cfg.HTTP, api.Deps{
				Combiner:   a.combiner,
				Processor:  a.processor,
				Tasks:      registry,
				Thumbnails: a.thumbnails,
			}, version, time.Now(), a.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(runCtx) }()

			var serveErr error
			select {
			case serveErr = <-errCh:
			case <-runCtx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if serveErr == nil {
				serveErr = srv.Shutdown(shutdownCtx)
			}
			if err := registry.Close(shutdownCtx); err != nil {
				a.logger.Warn(shutdownCtx, "Unfinished tasks canceled: %v", err)
			}
			return serveErr
		},
	}
	cmd.Flags().StringVar(&ctx.flags.httpAddr, "addr", "", "Override http.addr")
	return cmd
}

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "transcript <video-url>",
		Short: "Print the combined transcript of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd)
			defer stop()

			a, err := ctx.buildApp(runCtx)
			if err != nil {
				return err
			}

			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), a.combiner.GetCombinedTranscript(runCtx, args[0]))
				return nil
			}

			res, err := a.combiner.Combine(runCtx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.TranscriptResponse{
				VideoID:    res.Reference.VideoID,
				URL:        res.Reference.PlatformURL,
				Transcript: res.Transcript,
				Stages:     res.Outcomes,
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stages and transcript as JSON")
	return cmd
}

func newDigestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "digest <url>...",
		Short: "Transcribe or extract, summarize and store one or more URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signalContext(cmd)
			defer stop()

			a, err := ctx.buildApp(runCtx)
			if err != nil {
				return err
			}

			failed := 0
			for _, u := range args {
				job, err := a.processor.Process(runCtx, u)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "%s: %v\n", u, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", job.ID, job.Kind, job.Outputs["digest.json"])
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d URLs failed", failed, len(args))
			}
			return nil
		},
	}
}
