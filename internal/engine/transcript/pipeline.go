package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Pipeline resolves a video URL, fetches caption data (proxied first when a proxy
// is configured, direct as the single fallback), extracts, parses and formats it.
// It holds no mutable state; one Pipeline serves concurrent runs.
type Pipeline struct {
	direct    Source
	proxied   Source // nil when no proxy credential is configured
	extractor *Extractor
	parser    Parser
}

// New builds the pipeline and its HTTP clients from configuration.
func New(cfg engine.Config) (*Pipeline, error) {
	opts := engine.FetcherOptions{Timeout: cfg.HTTPTimeout, VerifyTLS: cfg.VerifyTLS}
	directFetcher, err := engine.NewHTTPFetcher(opts)
	if err != nil {
		return nil, fmt.Errorf("direct client: %w", err)
	}

	var proxied Source
	if cfg.Proxy.Enabled() {
		ps, err := NewProxiedSource(cfg.Proxy, opts, cfg.BrowserTLS)
		if err != nil {
			return nil, err
		}
		proxied = ps
	} else {
		slog.Info("transcript: no proxy credential, using direct source only")
	}

	parser := Parser{ResolveNumericEntities: cfg.ResolveNumericEntities}
	return NewPipeline(NewDirectSource(directFetcher), proxied, NewExtractor(cfg), parser), nil
}

// NewPipeline assembles a pipeline from explicit parts. proxied may be nil; a nil
// extractor enables every extraction strategy.
func NewPipeline(direct, proxied Source, x *Extractor, p Parser) *Pipeline {
	if x == nil {
		x = &Extractor{RawURLScan: true, InlineText: true}
	}
	return &Pipeline{direct: direct, proxied: proxied, extractor: x, parser: p}
}

// FetchTranscript returns the formatted transcript text for rawURL.
func (p *Pipeline) FetchTranscript(ctx context.Context, rawURL, lang string) (string, error) {
	t, err := p.Run(ctx, rawURL, lang)
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

// Run executes one pipeline run. Every failure is a *TranscriptError.
func (p *Pipeline) Run(ctx context.Context, rawURL, lang string) (*Transcript, error) {
	engine.IncrTranscriptRequests()
	log := slog.With(slog.String("run", uuid.NewString()))

	id, err := ResolveVideoID(rawURL)
	if err != nil {
		engine.IncrTranscriptErrors()
		return nil, &TranscriptError{Stage: StageResolve, Cause: err}
	}
	log = log.With(slog.String("video", string(id)))

	var t *Transcript
	err = engine.TrackOperation(ctx, "transcript", func(ctx context.Context) error {
		var runErr error
		t, runErr = p.fetch(ctx, log, id, lang)
		return runErr
	})
	if err != nil {
		engine.IncrTranscriptErrors()
		log.Warn("transcript: run failed", slog.Any("error", err))
		return nil, err
	}
	if t.Synthetic {
		engine.IncrSyntheticTranscripts()
	}
	log.Info("transcript: done",
		slog.String("source", t.Source),
		slog.String("lang", t.Language),
		slog.Int("entries", len(t.Entries)))
	return t, nil
}

func (p *Pipeline) fetch(ctx context.Context, log *slog.Logger, id VideoID, lang string) (*Transcript, error) {
	if p.proxied == nil {
		return p.attempt(ctx, p.direct, id, lang)
	}

	t, proxyErr := p.attempt(ctx, p.proxied, id, lang)
	if proxyErr == nil {
		return t, nil
	}
	log.Warn("transcript: proxied source failed, falling back to direct", slog.Any("error", proxyErr))

	t, directErr := p.attempt(ctx, p.direct, id, lang)
	if directErr == nil {
		return t, nil
	}
	return nil, &TranscriptError{Stage: StageFetch, Cause: errors.Join(proxyErr, directErr)}
}

// attempt runs fetch, extraction and parsing against one source.
func (p *Pipeline) attempt(ctx context.Context, src Source, id VideoID, lang string) (*Transcript, error) {
	proxied := src.Name() == SourceProxied
	if proxied {
		engine.IncrProxyAttempts()
	} else {
		engine.IncrDirectAttempts()
	}
	t, err := p.fromSource(ctx, src, id, lang)
	if err != nil {
		if proxied {
			engine.IncrProxyFailures()
		} else {
			engine.IncrDirectFailures()
		}
	}
	return t, err
}

func (p *Pipeline) fromSource(ctx context.Context, src Source, id VideoID, lang string) (*Transcript, error) {
	fail := func(stage Stage, err error) error {
		return &TranscriptError{Stage: stage, Source: src.Name(), Cause: err}
	}

	raw, err := src.Fetch(ctx, id, lang)
	if err != nil {
		return nil, fail(StageFetch, err)
	}

	kind, payload, language := raw.Kind, raw.Body, raw.Language
	if kind == PayloadPage {
		track, err := p.extractor.Extract(raw.Body, lang)
		if err != nil {
			return nil, fail(StageExtract, err)
		}
		if track.Language != "" {
			language = track.Language
		}
		if track.Inline != "" {
			kind, payload = PayloadInline, track.Inline
		} else {
			body, err := src.FetchTrack(ctx, track.URL)
			if err != nil {
				return nil, fail(StageFetch, err)
			}
			kind, payload = PayloadXML, body
		}
	}

	entries, err := p.parser.Parse(payload, kind)
	if err != nil {
		return nil, fail(StageParse, err)
	}
	return &Transcript{
		VideoID:   id,
		Language:  language,
		Source:    src.Name(),
		Synthetic: kind == PayloadInline,
		Entries:   entries,
		Text:      Format(entries),
	}, nil
}
