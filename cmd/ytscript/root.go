package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "ytscript",
	Short: "Fetch YouTube transcripts as [MM:SS] lines",
	Long: `ytscript downloads the captions of YouTube videos and prints them as
timestamped lines. A ScraperAPI proxy is used first when SCRAPERAPI_KEY is set,
with a direct fetch as fallback. The analyze command runs sentiment, generation
or question answering on a transcript through an OpenAI-compatible LLM.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// runner is the part of the transcript pipeline the commands use.
type runner interface {
	Run(ctx context.Context, rawURL, lang string) (*transcript.Transcript, error)
}

type inferer interface {
	Infer(ctx context.Context, modelID string, in inference.Input) (inference.Output, error)
}

// Constructors, replaced in tests.
var (
	newRunner = func(cfg engine.Config) (runner, error) {
		p, err := transcript.New(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	newInferer = func(cfg engine.Config) (inferer, error) {
		e := inference.New(inference.ConfigFrom(cfg))
		if !e.Configured() {
			return nil, inference.ErrNotConfigured
		}
		return e, nil
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
}
