package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests   atomic.Int64
	TranscriptErrors     atomic.Int64
	ProxyAttempts        atomic.Int64
	ProxyFailures        atomic.Int64
	DirectAttempts       atomic.Int64
	DirectFailures       atomic.Int64
	ExtractPlayerJSON    atomic.Int64
	ExtractURLScan       atomic.Int64
	ExtractInline        atomic.Int64
	SyntheticTranscripts atomic.Int64
	InferenceCalls       atomic.Int64
	InferenceErrors      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests":   metrics.TranscriptRequests.Load(),
		"transcript_errors":     metrics.TranscriptErrors.Load(),
		"proxy_attempts":        metrics.ProxyAttempts.Load(),
		"proxy_failures":        metrics.ProxyFailures.Load(),
		"direct_attempts":       metrics.DirectAttempts.Load(),
		"direct_failures":       metrics.DirectFailures.Load(),
		"extract_player_json":   metrics.ExtractPlayerJSON.Load(),
		"extract_url_scan":      metrics.ExtractURLScan.Load(),
		"extract_inline":        metrics.ExtractInline.Load(),
		"synthetic_transcripts": metrics.SyntheticTranscripts.Load(),
		"inference_calls":       metrics.InferenceCalls.Load(),
		"inference_errors":      metrics.InferenceErrors.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"transcript_requests", "transcript_errors",
		"proxy_attempts", "proxy_failures",
		"direct_attempts", "direct_failures",
		"extract_player_json", "extract_url_scan", "extract_inline",
		"synthetic_transcripts",
		"inference_calls", "inference_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the transcript sub-package.
func IncrTranscriptRequests()   { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()     { metrics.TranscriptErrors.Add(1) }
func IncrProxyAttempts()        { metrics.ProxyAttempts.Add(1) }
func IncrProxyFailures()        { metrics.ProxyFailures.Add(1) }
func IncrDirectAttempts()       { metrics.DirectAttempts.Add(1) }
func IncrDirectFailures()       { metrics.DirectFailures.Add(1) }
func IncrExtractPlayerJSON()    { metrics.ExtractPlayerJSON.Add(1) }
func IncrExtractURLScan()       { metrics.ExtractURLScan.Add(1) }
func IncrExtractInline()        { metrics.ExtractInline.Add(1) }
func IncrSyntheticTranscripts() { metrics.SyntheticTranscripts.Add(1) }

// Incrementors for the inference sub-package.
func IncrInferenceCalls()  { metrics.InferenceCalls.Add(1) }
func IncrInferenceErrors() { metrics.InferenceErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
