package transcript

import "context"

// Source names reported in Transcript.Source and TranscriptError.Source.
const (
	SourceDirect  = "direct"
	SourceProxied = "proxied"
)

// Source retrieves raw caption data for one video.
// Fetch returns either a timedtext payload or a page that still needs extraction;
// FetchTrack downloads a caption URL found in such a page over the same route.
type Source interface {
	Name() string
	Fetch(ctx context.Context, id VideoID, lang string) (*RawCaptionData, error)
	FetchTrack(ctx context.Context, trackURL string) (string, error)
}
