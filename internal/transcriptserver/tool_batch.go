package transcriptserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

const (
	maxBatchURLs     = 20
	batchConcurrency = 4
)

func registerTranscriptBatch(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript_batch",
		Description: "Fetch transcripts for several YouTube videos at once (up to 20). Each URL gets its own result; a failing video reports its error message and does not affect the others.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BatchInput) (*mcp.CallToolResult, BatchOutput, error) {
		out, err := d.batch(ctx, input)
		if err != nil {
			return nil, BatchOutput{}, err
		}
		return nil, out, nil
	})
}

func (d Deps) batch(ctx context.Context, input BatchInput) (BatchOutput, error) {
	if len(input.URLs) == 0 {
		return BatchOutput{}, errors.New("urls is required")
	}
	if len(input.URLs) > maxBatchURLs {
		return BatchOutput{}, fmt.Errorf("too many urls: %d (max %d)", len(input.URLs), maxBatchURLs)
	}

	results := toolutil.MapParallel(ctx, input.URLs, batchConcurrency, func(ctx context.Context, u string) BatchItem {
		t, err := d.load(ctx, u, input.Language)
		if err != nil {
			return BatchItem{URL: u, Error: err.Error(), Retryable: transcript.IsTemporary(err)}
		}
		return BatchItem{
			URL:        u,
			VideoID:    t.VideoID.String(),
			Language:   t.Language,
			Source:     t.Source,
			Synthetic:  t.Synthetic,
			EntryCount: len(t.Entries),
			Transcript: t.Text,
		}
	})

	out := BatchOutput{Results: results}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out, nil
}
