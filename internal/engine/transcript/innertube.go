package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Innertube API: constants and wire types shared by the direct source and the
// page extractor (watch pages embed the same player response).

const (
	innertubePlayerURL = "https://www.youtube.com/youtubei/v1/player"
	watchPageURL       = "https://www.youtube.com/watch"
	ytAndroidVersion   = "20.10.38"
	ytAndroidUA        = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (t captionTrack) toTrack() CaptionTrack {
	return CaptionTrack{URL: t.BaseURL, Language: t.LanguageCode, Kind: t.Kind}
}

func (r *playerResponse) tracks() []captionTrack {
	if r.Captions == nil {
		return nil
	}
	return r.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

func (r *playerResponse) unplayableReason() string {
	if r.PlayabilityStatus == nil {
		return ""
	}
	if r.PlayabilityStatus.Reason != "" {
		return r.PlayabilityStatus.Reason
	}
	if r.PlayabilityStatus.Status != "OK" {
		return r.PlayabilityStatus.Status
	}
	return ""
}

func newPlayerRequest(id VideoID, lang string) ([]byte, error) {
	hl := "en"
	if lang != "" {
		hl = lang
	}
	return json.Marshal(innertubeReq{
		VideoID: string(id),
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                hl,
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// langRank scores how well a track code fits the requested language: 3 exact,
// 2 regional variant of the hint ("en" gets "en-GB"), 1 base language of the hint
// ("en-US" gets "en"), 0 no match.
func langRank(code, lang string) int {
	switch {
	case strings.EqualFold(code, lang):
		return 3
	case isVariantOf(code, lang):
		return 2
	}
	if base, _, ok := strings.Cut(lang, "-"); ok && strings.EqualFold(code, base) {
		return 1
	}
	return 0
}

func isVariantOf(code, base string) bool {
	return len(code) > len(base) && strings.EqualFold(code[:len(base)], base) && code[len(base)] == '-'
}

func langMatches(code, lang string) bool { return langRank(code, lang) > 0 }

// pickTrack selects a caption track. Without a language the first usable track wins.
// With one: the best-matching manual track, then the best-matching auto-generated
// one, else ErrNoCaptionsAvailable.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, error) {
	if len(tracks) == 0 {
		return captionTrack{}, noCaptions("no caption tracks")
	}
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, noCaptions("all caption tracks require a PoToken")
	}
	if lang == "" {
		return usable[0], nil
	}
	for _, asr := range []bool{false, true} {
		best, bestRank := -1, 0
		for i, t := range usable {
			if (t.Kind == "asr") != asr {
				continue
			}
			if r := langRank(t.LanguageCode, lang); r > bestRank {
				best, bestRank = i, r
			}
		}
		if best >= 0 {
			return usable[best], nil
		}
	}
	return captionTrack{}, noCaptions("no track in language " + lang)
}

func noCaptions(detail string) error {
	return fmt.Errorf("%w: %s", ErrNoCaptionsAvailable, detail)
}
