package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Run sentiment, generation or question answering on a transcript",
	Long: `Analyze fetches the video's transcript and passes its text to the LLM
configured by LLM_API_BASE, LLM_API_KEY and LLM_MODEL. The transcript is the
text to classify (sentiment), the prompt to continue (generation) or the
context to answer from (qa).`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeTask      string
	analyzeQuestion  string
	analyzeModel     string
	analyzeMaxLength int
	analyzeLanguage  string
	analyzeJSON      bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTask, "task", "t", "", "task: sentiment, generation, qa")
	analyzeCmd.Flags().StringVar(&analyzeQuestion, "question", "", "question for the qa task")
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "model id (default: LLM_MODEL)")
	analyzeCmd.Flags().IntVar(&analyzeMaxLength, "max-length", 0, "maximum generated tokens for the generation task")
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "caption language code")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	_ = analyzeCmd.MarkFlagRequired("task")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	task, err := inference.ParseTask(analyzeTask)
	if err != nil {
		return err
	}

	cfg := engine.LoadConfig()
	infer, err := newInferer(cfg)
	if err != nil {
		return err
	}
	r, err := newRunner(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, err := r.Run(ctx, args[0], toolutil.NormLang(analyzeLanguage))
	if err != nil {
		return err
	}
	in, err := inference.NewInput(task, t.Text, analyzeQuestion, analyzeMaxLength)
	if err != nil {
		return err
	}
	res, err := infer.Infer(ctx, analyzeModel, in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	switch res.Task {
	case inference.TaskSentiment:
		fmt.Fprintf(out, "%s (%.2f)\n", res.Label, res.Score)
	case inference.TaskGeneration:
		fmt.Fprintln(out, res.GeneratedText)
	case inference.TaskQA:
		fmt.Fprintf(out, "%s (%.2f)\n", res.Answer, res.Score)
	}
	return nil
}
