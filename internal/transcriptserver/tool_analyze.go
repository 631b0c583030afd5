package transcriptserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
)

func registerTranscriptAnalyze(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_analyze",
		Description: "Run an inference task on a YouTube transcript or on given text. Tasks: sentiment (POSITIVE/NEGATIVE label with confidence), generation (continue the text, max_length tokens), qa (answer question from the text with confidence). When url is given, the video's transcript is fetched and used as the input text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
		out, err := d.analyze(ctx, input)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		return nil, out, nil
	})
}

func (d Deps) analyze(ctx context.Context, input AnalyzeInput) (AnalyzeOutput, error) {
	task, err := inference.ParseTask(input.Task)
	if err != nil {
		return AnalyzeOutput{}, err
	}
	if d.Inference == nil {
		return AnalyzeOutput{}, inference.ErrNotConfigured
	}

	text := input.Text
	var videoID string
	if strings.TrimSpace(input.URL) != "" {
		t, err := d.load(ctx, input.URL, input.Language)
		if err != nil {
			return AnalyzeOutput{}, err
		}
		text, videoID = t.Text, t.VideoID.String()
	}
	if strings.TrimSpace(text) == "" {
		return AnalyzeOutput{}, errors.New("url or text is required")
	}

	in, err := inference.NewInput(task, text, input.Question, input.MaxLength)
	if err != nil {
		return AnalyzeOutput{}, err
	}
	res, err := d.Inference.Infer(ctx, input.Model, in)
	if err != nil {
		return AnalyzeOutput{}, err
	}
	return AnalyzeOutput{
		Task:          string(res.Task),
		Model:         res.Model,
		VideoID:       videoID,
		Label:         res.Label,
		GeneratedText: res.GeneratedText,
		Answer:        res.Answer,
		Score:         res.Score,
	}, nil
}
