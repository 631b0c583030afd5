package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// ProxiedSource fetches the watch page and caption payloads through a forwarding
// proxy. Two modes: a forward proxy set on the client (ProxyURL), or an API
// endpoint that takes the target as a query parameter (TargetURLTemplate).
// Requests are paced by a rate limiter and never retried.
type ProxiedSource struct {
	fetcher  engine.Fetcher
	proxy    engine.ProxyConfig
	limiter  *rate.Limiter
	watchURL string
}

// NewProxiedSource builds a dedicated client routed through the configured proxy.
func NewProxiedSource(proxy engine.ProxyConfig, opts engine.FetcherOptions, browser bool) (*ProxiedSource, error) {
	if !proxy.Enabled() {
		return nil, errors.New("proxied source: no proxy credential configured")
	}
	if proxy.TargetURLTemplate == "" {
		opts.ProxyURL = proxy.ResolvedProxyURL()
	}
	f, err := engine.NewFetcher(opts, browser)
	if err != nil {
		return nil, fmt.Errorf("proxied source: %w", err)
	}
	return newProxiedSource(f, proxy), nil
}

func newProxiedSource(f engine.Fetcher, proxy engine.ProxyConfig) *ProxiedSource {
	limit := rate.Inf
	if proxy.RatePerSecond > 0 {
		limit = rate.Limit(proxy.RatePerSecond)
	}
	return &ProxiedSource{
		fetcher:  f,
		proxy:    proxy,
		limiter:  rate.NewLimiter(limit, 1),
		watchURL: watchPageURL,
	}
}

func (s *ProxiedSource) Name() string { return SourceProxied }

// Fetch returns the watch page HTML; caption data still has to be extracted from it.
func (s *ProxiedSource) Fetch(ctx context.Context, id VideoID, lang string) (*RawCaptionData, error) {
	target := s.watchURL + "?v=" + url.QueryEscape(string(id))
	if lang != "" {
		target += "&hl=" + url.QueryEscape(lang)
	}
	data, err := s.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return &RawCaptionData{Kind: PayloadPage, Body: string(data), Language: lang}, nil
}

// FetchTrack downloads a caption URL through the proxy.
func (s *ProxiedSource) FetchTrack(ctx context.Context, trackURL string) (string, error) {
	data, err := s.get(ctx, trackURL)
	if err != nil {
		return "", fmt.Errorf("timedtext: %w", err)
	}
	return string(data), nil
}

func (s *ProxiedSource) get(ctx context.Context, target string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrProxyUnavailable, err)
	}
	reqURL := s.route(target)
	data, status, err := s.fetcher.Do(ctx, http.MethodGet, reqURL, engine.PageHeaders(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProxyUnavailable, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w: %w", ErrProxyUnavailable, &HTTPStatusError{URL: reqURL, StatusCode: status})
	}
	return data, nil
}

// route rewrites target for API mode; forward-proxy mode sends it unchanged.
func (s *ProxiedSource) route(target string) string {
	if s.proxy.TargetURLTemplate == "" {
		return target
	}
	return strings.NewReplacer(
		"{key}", url.QueryEscape(s.proxy.APIKey),
		"{url}", url.QueryEscape(target),
	).Replace(s.proxy.TargetURLTemplate)
}
