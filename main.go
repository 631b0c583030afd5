// go_transcript: YouTube transcript MCP server.
//
// Exposes three MCP tools: youtube_transcript, youtube_transcript_batch, transcript_analyze.
// Runs as HTTP MCP server or stdio transport. The ytscript CLI in cmd/ytscript
// drives the same pipeline from a terminal.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/inference"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	cfg := engine.LoadConfig()

	pipeline, err := transcript.New(cfg)
	if err != nil {
		slog.Error("transcript pipeline init failed", slog.Any("error", err))
		os.Exit(1)
	}

	cache := engine.NewCache(cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheCleanupInterval)
	defer cache.Close()

	infer := inference.New(inference.ConfigFrom(cfg))
	if !infer.Configured() {
		slog.Warn("LLM_API_KEY not set, transcript_analyze will fail")
	}

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
		slog.Bool("proxy", cfg.Proxy.Enabled()),
		slog.Bool("verify_tls", cfg.VerifyTLS),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	transcriptserver.RegisterTools(server, transcriptserver.Deps{
		Pipeline:     pipeline,
		Cache:        cache,
		Inference:    infer,
		PreviewChars: cfg.PreviewChars,
	})
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
