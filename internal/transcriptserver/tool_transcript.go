package transcriptserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

func registerTranscript(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the transcript of a YouTube video as timestamped lines ([MM:SS] text). Tries the configured proxy first and falls back to a direct fetch. Returns the full transcript, a preview, the caption language and which source produced it. Synthetic transcripts carry estimated timestamps.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
		out, err := d.transcript(ctx, input)
		if err != nil {
			return nil, TranscriptOutput{}, err
		}
		return nil, out, nil
	})
}

func (d Deps) transcript(ctx context.Context, input TranscriptInput) (TranscriptOutput, error) {
	if input.URL == "" {
		return TranscriptOutput{}, errors.New("url is required")
	}
	t, err := d.load(ctx, input.URL, input.Language)
	if err != nil {
		return TranscriptOutput{}, err
	}

	limit := input.PreviewChars
	if limit == 0 {
		limit = d.PreviewChars
	}
	return TranscriptOutput{
		VideoID:    t.VideoID.String(),
		Language:   t.Language,
		Source:     t.Source,
		Synthetic:  t.Synthetic,
		EntryCount: len(t.Entries),
		Preview:    toolutil.Preview(t.Text, limit),
		Transcript: t.Text,
	}, nil
}

// load returns the transcript for rawURL from the cache or a pipeline run.
// Only successful runs are cached.
func (d Deps) load(ctx context.Context, rawURL, lang string) (*transcript.Transcript, error) {
	lang = toolutil.NormLang(lang)

	var key string
	if id, err := transcript.ResolveVideoID(rawURL); err == nil {
		key = engine.CacheKey("youtube_transcript", id.String(), toolutil.CacheLang(lang))
		if t, ok := toolutil.CacheLoadJSON[transcript.Transcript](ctx, d.Cache, key); ok {
			slog.Debug("transcript: cache hit", slog.String("video", id.String()))
			return &t, nil
		}
	}

	t, err := d.Pipeline.Run(ctx, rawURL, lang)
	if err != nil {
		return nil, err
	}
	if key != "" {
		toolutil.CacheStoreJSON(ctx, d.Cache, key, *t)
	}
	return t, nil
}
