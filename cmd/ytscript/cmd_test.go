package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, rawURL, lang string) (*transcript.Transcript, error) {
	id, err := transcript.ResolveVideoID(rawURL)
	if err != nil {
		return nil, &transcript.TranscriptError{Stage: transcript.StageResolve, Cause: err}
	}
	entries := []transcript.Entry{{Start: 1, Text: "hi " + lang}, {Start: 75, Text: "bye"}}
	return &transcript.Transcript{
		VideoID:  id,
		Language: lang,
		Source:   transcript.SourceProxied,
		Entries:  entries,
		Text:     transcript.Format(entries),
	}, nil
}

type stubInferer struct{ got inference.Input }

func (s *stubInferer) Infer(_ context.Context, modelID string, in inference.Input) (inference.Output, error) {
	s.got = in
	return inference.Output{Task: in.Task(), Model: modelID, Label: "NEGATIVE", Answer: "bye", GeneratedText: "more", Score: 0.75}, nil
}

// execute runs the root command with args and fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fetchLanguage, fetchJSON, fetchJobs = "", false, 4
	analyzeTask, analyzeQuestion, analyzeModel, analyzeMaxLength, analyzeLanguage, analyzeJSON = "", "", "", 0, "", false
	verbose, quiet = false, true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func stubConstructors(t *testing.T) *stubInferer {
	t.Helper()
	inf := &stubInferer{}
	prevRunner, prevInferer := newRunner, newInferer
	newRunner = func(engine.Config) (runner, error) { return stubRunner{}, nil }
	newInferer = func(engine.Config) (inferer, error) { return inf, nil }
	t.Cleanup(func() { newRunner, newInferer = prevRunner, prevInferer })
	return inf
}

func TestFetchSingle(t *testing.T) {
	stubConstructors(t)
	out, err := execute(t, "fetch", "https://youtu.be/dQw4w9WgXcQ", "-l", "EN")
	require.NoError(t, err)
	assert.Equal(t, "[00:01] hi en\n[01:15] bye\n", out)
}

func TestFetchMany(t *testing.T) {
	stubConstructors(t)
	out, err := execute(t, "fetch", "https://youtu.be/aaaaaaaaaaa", "https://youtu.be/bbbbbbbbbbb")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# aaaaaaaaaaa\n"))
	assert.Contains(t, out, "\n\n# bbbbbbbbbbb\n")
}

func TestFetchJSONWithFailure(t *testing.T) {
	stubConstructors(t)
	out, err := execute(t, "fetch", "--json", "https://youtu.be/dQw4w9WgXcQ", "not-a-video")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 transcripts failed")

	var records []fetchRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "dQw4w9WgXcQ", records[0].VideoID)
	assert.Equal(t, transcript.SourceProxied, records[0].Source)
	assert.Len(t, records[0].Entries, 2)
	assert.Empty(t, records[0].Error)
	assert.Contains(t, records[1].Error, "invalid video url")
}

func TestFetchRequiresURL(t *testing.T) {
	stubConstructors(t)
	_, err := execute(t, "fetch")
	require.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	inf := stubConstructors(t)

	out, err := execute(t, "analyze", "https://youtu.be/dQw4w9WgXcQ", "--task", "qa", "--question", "how does it end?", "-m", "m1")
	require.NoError(t, err)
	assert.Equal(t, "bye (0.75)\n", out)
	qa, ok := inf.got.(inference.QuestionAnswering)
	require.True(t, ok)
	assert.Equal(t, "how does it end?", qa.Question)
	assert.Contains(t, qa.Context, "[01:15] bye")

	out, err = execute(t, "analyze", "https://youtu.be/dQw4w9WgXcQ", "--task", "sentiment-analysis")
	require.NoError(t, err)
	assert.Equal(t, "NEGATIVE (0.75)\n", out)

	out, err = execute(t, "analyze", "https://youtu.be/dQw4w9WgXcQ", "--task", "generation", "--max-length", "16", "--json")
	require.NoError(t, err)
	var res inference.Output
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, inference.TaskGeneration, res.Task)
	assert.Equal(t, 16, inf.got.(inference.Generation).MaxLength)
}

func TestAnalyzeErrors(t *testing.T) {
	stubConstructors(t)

	_, err := execute(t, "analyze", "https://youtu.be/dQw4w9WgXcQ", "--task", "summarize")
	require.ErrorIs(t, err, inference.ErrUnknownTask)

	_, err = execute(t, "analyze", "not-a-video", "--task", "qa", "--question", "q")
	require.ErrorIs(t, err, transcript.ErrInvalidURL)

	newInferer = func(engine.Config) (inferer, error) { return nil, inference.ErrNotConfigured }
	_, err = execute(t, "analyze", "https://youtu.be/dQw4w9WgXcQ", "--task", "sentiment")
	require.ErrorIs(t, err, inference.ErrNotConfigured)
}
