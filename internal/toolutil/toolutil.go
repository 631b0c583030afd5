// Package toolutil provides shared helper functions for go_transcript MCP tools and CLI commands.
package toolutil

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// NormLang normalises a language field: trimmed, lower-case, "" = first available track.
func NormLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// CacheLang is NormLang for cache keys, where "" becomes "auto".
func CacheLang(lang string) string {
	if l := NormLang(lang); l != "" {
		return l
	}
	return "auto"
}

// CacheLoadJSON tries to load a cached value of type T from c.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, c *engine.Cache, key string) (T, bool) {
	var zero T
	cached, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(cached, &out); err != nil {
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in c.
func CacheStoreJSON[T any](ctx context.Context, c *engine.Cache, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, data)
}

// Preview cuts text to limit runes with an ellipsis; limit <= 0 returns text unchanged.
func Preview(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	return engine.TruncateRunes(text, limit, "…")
}

// MapParallel runs fn for every item with at most limit in flight and returns the
// results in input order. fn reports failures in its result, so one item never
// cancels the others.
func MapParallel[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			out[i] = fn(gctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
