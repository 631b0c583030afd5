package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// DirectSource asks the ANDROID Innertube /player endpoint for caption tracks and
// downloads the chosen timedtext XML. Works from non-blocked IP addresses.
type DirectSource struct {
	fetcher   engine.Fetcher
	playerURL string
}

// NewDirectSource returns a DirectSource sending requests through f.
func NewDirectSource(f engine.Fetcher) *DirectSource {
	return &DirectSource{fetcher: f, playerURL: innertubePlayerURL}
}

func (s *DirectSource) Name() string { return SourceDirect }

// Fetch resolves the caption track for id and returns its XML payload.
func (s *DirectSource) Fetch(ctx context.Context, id VideoID, lang string) (*RawCaptionData, error) {
	reqBody, err := newPlayerRequest(id, lang)
	if err != nil {
		return nil, fmt.Errorf("encode player request: %w", err)
	}
	headers := map[string]string{
		"Content-Type":             "application/json",
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	}
	data, status, err := s.fetcher.Do(ctx, http.MethodPost, s.playerURL+"?prettyPrint=false", headers, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: android innertube: %w", ErrFetchFailed, err)
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("android innertube: %w", &HTTPStatusError{URL: s.playerURL, StatusCode: status})
	}

	var resp playerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode player: %w", ErrFetchFailed, err)
	}
	if len(resp.tracks()) == 0 {
		if reason := resp.unplayableReason(); reason != "" {
			return nil, noCaptions(reason)
		}
		return nil, noCaptions("no captions in player response")
	}
	track, err := pickTrack(resp.tracks(), lang)
	if err != nil {
		return nil, err
	}

	payload, err := s.FetchTrack(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	return &RawCaptionData{Kind: PayloadXML, Body: payload, Language: track.LanguageCode}, nil
}

// FetchTrack downloads a timedtext caption URL.
func (s *DirectSource) FetchTrack(ctx context.Context, trackURL string) (string, error) {
	data, status, err := s.fetcher.Do(ctx, http.MethodGet, trackURL, map[string]string{"User-Agent": engine.UserAgentBot}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: timedtext: %w", ErrFetchFailed, err)
	}
	if !isSuccess(status) {
		return "", fmt.Errorf("timedtext: %w", &HTTPStatusError{URL: trackURL, StatusCode: status})
	}
	return string(data), nil
}
