package transcriptserver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

type fakeRunner struct {
	calls atomic.Int32
	fail  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, rawURL, lang string) (*transcript.Transcript, error) {
	f.calls.Add(1)
	if err, ok := f.fail[rawURL]; ok {
		return nil, err
	}
	id, err := transcript.ResolveVideoID(rawURL)
	if err != nil {
		return nil, &transcript.TranscriptError{Stage: transcript.StageResolve, Cause: err}
	}
	if lang == "" {
		lang = "en"
	}
	entries := []transcript.Entry{{Start: 0, Text: "Hello"}, {Start: 61.5, Text: "world of " + id.String()}}
	return &transcript.Transcript{
		VideoID:  id,
		Language: lang,
		Source:   transcript.SourceDirect,
		Entries:  entries,
		Text:     transcript.Format(entries),
	}, nil
}

type fakeInferer struct {
	mu    sync.Mutex
	model string
	in    inference.Input
}

func (f *fakeInferer) Infer(_ context.Context, modelID string, in inference.Input) (inference.Output, error) {
	f.mu.Lock()
	f.model, f.in = modelID, in
	f.mu.Unlock()
	out := inference.Output{Task: in.Task(), Model: "test-model", Score: 0.9}
	switch v := in.(type) {
	case inference.Sentiment:
		out.Label = "POSITIVE"
	case inference.Generation:
		out.GeneratedText = v.Prompt + " more"
	case inference.QuestionAnswering:
		out.Answer = "world"
	}
	return out, nil
}

func newDeps(t *testing.T, r *fakeRunner) Deps {
	t.Helper()
	c := engine.NewCache("", time.Minute, 100, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return Deps{Pipeline: r, Cache: c, Inference: &fakeInferer{}, PreviewChars: 10}
}

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestTranscriptTool(t *testing.T) {
	r := &fakeRunner{}
	d := newDeps(t, r)

	out, err := d.transcript(context.Background(), TranscriptInput{URL: videoURL})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
	assert.Equal(t, "en", out.Language)
	assert.Equal(t, transcript.SourceDirect, out.Source)
	assert.Equal(t, 2, out.EntryCount)
	assert.Equal(t, "[00:00] Hello\n[01:01] world of dQw4w9WgXcQ", out.Transcript)
	assert.True(t, strings.HasPrefix(out.Preview, "[00:00]"))
	assert.True(t, strings.HasSuffix(out.Preview, "…"))
	assert.LessOrEqual(t, len([]rune(out.Preview)), 11)

	// Same video through another URL form is served from the cache.
	out, err = d.transcript(context.Background(), TranscriptInput{URL: "https://youtu.be/dQw4w9WgXcQ", PreviewChars: -1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, out.Transcript, out.Preview)

	// A different language is a different cache entry.
	out, err = d.transcript(context.Background(), TranscriptInput{URL: videoURL, Language: " DE "})
	require.NoError(t, err)
	assert.Equal(t, "de", out.Language)
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestTranscriptToolErrors(t *testing.T) {
	cause := &transcript.TranscriptError{Stage: transcript.StageExtract, Source: transcript.SourceDirect, Cause: transcript.ErrNoCaptionData}
	r := &fakeRunner{fail: map[string]error{videoURL: cause}}
	d := newDeps(t, r)

	_, err := d.transcript(context.Background(), TranscriptInput{})
	require.EqualError(t, err, "url is required")

	_, err = d.transcript(context.Background(), TranscriptInput{URL: "not a video"})
	require.ErrorIs(t, err, transcript.ErrInvalidURL)

	_, err = d.transcript(context.Background(), TranscriptInput{URL: videoURL})
	require.ErrorIs(t, err, transcript.ErrNoCaptionData)
	assert.Equal(t, cause.Error(), err.Error())

	// Failures are not cached.
	_, _ = d.transcript(context.Background(), TranscriptInput{URL: videoURL})
	assert.Equal(t, int32(3), r.calls.Load())
}

func TestBatchTool(t *testing.T) {
	busy := &transcript.TranscriptError{Stage: transcript.StageFetch, Source: transcript.SourceDirect,
		Cause: &transcript.HTTPStatusError{URL: "https://www.youtube.com/youtubei/v1/player", StatusCode: 503}}
	r := &fakeRunner{fail: map[string]error{"https://youtu.be/aaaaaaaaaaa": busy}}
	d := newDeps(t, r)

	urls := []string{videoURL, "https://youtu.be/aaaaaaaaaaa", "nope", "https://www.youtube.com/shorts/bbbbbbbbbbb"}
	out, err := d.batch(context.Background(), BatchInput{URLs: urls, Language: "en"})
	require.NoError(t, err)
	require.Len(t, out.Results, len(urls))
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 2, out.Failed)

	for i, res := range out.Results {
		assert.Equal(t, urls[i], res.URL, "results keep input order")
	}
	assert.Equal(t, "dQw4w9WgXcQ", out.Results[0].VideoID)
	assert.Empty(t, out.Results[0].Error)
	assert.Contains(t, out.Results[1].Error, "HTTP 503")
	assert.True(t, out.Results[1].Retryable)
	assert.Contains(t, out.Results[2].Error, "invalid video url")
	assert.False(t, out.Results[2].Retryable)
	assert.Equal(t, "bbbbbbbbbbb", out.Results[3].VideoID)
}

func TestBatchToolValidation(t *testing.T) {
	d := newDeps(t, &fakeRunner{})

	_, err := d.batch(context.Background(), BatchInput{})
	require.EqualError(t, err, "urls is required")

	urls := make([]string, maxBatchURLs+1)
	for i := range urls {
		urls[i] = videoURL
	}
	_, err = d.batch(context.Background(), BatchInput{URLs: urls})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many urls")
}

func TestAnalyzeTool(t *testing.T) {
	r := &fakeRunner{}
	d := newDeps(t, r)
	inf := d.Inference.(*fakeInferer)

	tests := []struct {
		name  string
		input AnalyzeInput
		check func(t *testing.T, out AnalyzeOutput)
	}{
		{
			name:  "sentiment on text",
			input: AnalyzeInput{Task: "sentiment", Text: "great video"},
			check: func(t *testing.T, out AnalyzeOutput) {
				assert.Equal(t, "POSITIVE", out.Label)
				assert.Equal(t, inference.Sentiment{Text: "great video"}, inf.in)
				assert.Empty(t, out.VideoID)
			},
		},
		{
			name:  "qa on transcript",
			input: AnalyzeInput{Task: "question-answering", URL: videoURL, Question: "what?", Model: "m1"},
			check: func(t *testing.T, out AnalyzeOutput) {
				assert.Equal(t, "world", out.Answer)
				assert.Equal(t, "qa", out.Task)
				assert.Equal(t, "dQw4w9WgXcQ", out.VideoID)
				assert.Equal(t, "m1", inf.model)
				qa, ok := inf.in.(inference.QuestionAnswering)
				require.True(t, ok)
				assert.True(t, strings.HasPrefix(qa.Context, "[00:00] Hello"))
			},
		},
		{
			name:  "generation with max length",
			input: AnalyzeInput{Task: "generation", Text: "Once", MaxLength: 20},
			check: func(t *testing.T, out AnalyzeOutput) {
				assert.Equal(t, "Once more", out.GeneratedText)
				assert.Equal(t, inference.Generation{Prompt: "Once", MaxLength: 20}, inf.in)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.analyze(context.Background(), tt.input)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestAnalyzeToolErrors(t *testing.T) {
	fetchErr := &transcript.TranscriptError{Stage: transcript.StageFetch, Cause: errors.Join(transcript.ErrProxyUnavailable, transcript.ErrFetchFailed)}
	d := newDeps(t, &fakeRunner{fail: map[string]error{videoURL: fetchErr}})

	_, err := d.analyze(context.Background(), AnalyzeInput{Task: "translate", Text: "x"})
	require.ErrorIs(t, err, inference.ErrUnknownTask)

	_, err = d.analyze(context.Background(), AnalyzeInput{Task: "sentiment"})
	require.EqualError(t, err, "url or text is required")

	_, err = d.analyze(context.Background(), AnalyzeInput{Task: "qa", URL: videoURL, Question: "q"})
	require.ErrorIs(t, err, transcript.ErrProxyUnavailable)

	d.Inference = nil
	_, err = d.analyze(context.Background(), AnalyzeInput{Task: "sentiment", Text: "x"})
	require.ErrorIs(t, err, inference.ErrNotConfigured)
}

func TestRegisterTools(t *testing.T) {
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	RegisterTools(server, newDeps(t, &fakeRunner{}))

	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"youtube_transcript", "youtube_transcript_batch", "transcript_analyze"}, names)

	call, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "youtube_transcript",
		Arguments: map[string]any{"url": videoURL},
	})
	require.NoError(t, err)
	assert.False(t, call.IsError)

	call, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "youtube_transcript",
		Arguments: map[string]any{"url": ""},
	})
	require.NoError(t, err)
	assert.True(t, call.IsError)
}
