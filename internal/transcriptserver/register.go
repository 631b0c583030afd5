// Package transcriptserver exposes the transcript pipeline and the inference engine as MCP tools.
package transcriptserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// Runner runs the transcript pipeline for one URL.
type Runner interface {
	Run(ctx context.Context, rawURL, lang string) (*transcript.Transcript, error)
}

// Inferer runs one inference call.
type Inferer interface {
	Infer(ctx context.Context, modelID string, in inference.Input) (inference.Output, error)
}

// Deps are the collaborators shared by all tools. Cache may be nil.
type Deps struct {
	Pipeline     Runner
	Cache        *engine.Cache
	Inference    Inferer
	PreviewChars int
}

// RegisterTools registers youtube_transcript, youtube_transcript_batch and transcript_analyze.
func RegisterTools(server *mcp.Server, d Deps) {
	registerTranscript(server, d)
	registerTranscriptBatch(server, d)
	registerTranscriptAnalyze(server, d)
}
