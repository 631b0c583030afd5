package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Print the transcript of one or more videos",
	Long: `Fetch prints each video's transcript as [MM:SS] lines. With several URLs
the transcripts are fetched concurrently and printed in argument order, each
under a "# <video id>" header. A failing video does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

var (
	fetchLanguage string
	fetchJSON     bool
	fetchJobs     int
)

func init() {
	fetchCmd.Flags().StringVarP(&fetchLanguage, "language", "l", "", "caption language code (default: first available track)")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print results as JSON")
	fetchCmd.Flags().IntVarP(&fetchJobs, "jobs", "j", 4, "videos fetched concurrently")

	rootCmd.AddCommand(fetchCmd)
}

// fetchRecord is one --json result.
type fetchRecord struct {
	URL        string             `json:"url"`
	VideoID    string             `json:"video_id,omitempty"`
	Language   string             `json:"language,omitempty"`
	Source     string             `json:"source,omitempty"`
	Synthetic  bool               `json:"synthetic,omitempty"`
	Entries    []transcript.Entry `json:"entries,omitempty"`
	Transcript string             `json:"transcript,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type fetchResult struct {
	url string
	t   *transcript.Transcript
	err error
}

func runFetch(cmd *cobra.Command, args []string) error {
	r, err := newRunner(engine.LoadConfig())
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lang := toolutil.NormLang(fetchLanguage)
	results := toolutil.MapParallel(ctx, args, fetchJobs, func(ctx context.Context, u string) fetchResult {
		t, err := r.Run(ctx, u, lang)
		return fetchResult{url: u, t: t, err: err}
	})

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			slog.Error("transcript failed", slog.String("url", res.url), slog.Any("error", res.err))
		}
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		if err := writeFetchJSON(out, results); err != nil {
			return err
		}
	} else {
		writeFetchText(out, results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d transcripts failed", failed, len(results))
	}
	return nil
}

func writeFetchText(w io.Writer, results []fetchResult) {
	if len(results) == 1 {
		if t := results[0].t; t != nil {
			fmt.Fprintln(w, t.Text)
		}
		return
	}
	first := true
	for _, res := range results {
		if res.t == nil {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		fmt.Fprintf(w, "# %s\n%s\n", res.t.VideoID, res.t.Text)
	}
}

func writeFetchJSON(w io.Writer, results []fetchResult) error {
	records := make([]fetchRecord, 0, len(results))
	for _, res := range results {
		rec := fetchRecord{URL: res.url}
		if res.err != nil {
			rec.Error = res.err.Error()
		} else {
			rec.VideoID = res.t.VideoID.String()
			rec.Language = res.t.Language
			rec.Source = res.t.Source
			rec.Synthetic = res.t.Synthetic
			rec.Entries = res.t.Entries
			rec.Transcript = res.t.Text
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
