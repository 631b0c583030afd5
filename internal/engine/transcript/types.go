package transcript

// VideoID is the 11-character platform identifier of a video.
type VideoID string

func (id VideoID) String() string { return string(id) }

// WatchURL returns the canonical watch page URL for the id.
func (id VideoID) WatchURL() string { return watchPageURL + "?v=" + string(id) }

// PayloadKind tells the pipeline what a source handed back.
type PayloadKind int

const (
	PayloadPage   PayloadKind = iota // HTML watch page, needs extraction
	PayloadXML                       // timedtext XML
	PayloadInline                    // literal transcript text without timing
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadPage:
		return "page"
	case PayloadXML:
		return "xml"
	case PayloadInline:
		return "inline"
	}
	return "unknown"
}

// RawCaptionData is the unparsed result of a source fetch.
type RawCaptionData struct {
	Kind     PayloadKind
	Body     string
	Language string
}

// CaptionTrack references a caption resource: a fetchable URL or inline content.
type CaptionTrack struct {
	URL      string
	Inline   string
	Language string
	Kind     string // "asr" = auto-generated
}

// AutoGenerated reports whether the track is speech-recognized.
func (t CaptionTrack) AutoGenerated() bool { return t.Kind == "asr" }

// Entry is one timed caption line. Start is in seconds.
type Entry struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// Transcript is the result of one pipeline run.
type Transcript struct {
	VideoID   VideoID `json:"video_id"`
	Language  string  `json:"language,omitempty"`
	Source    string  `json:"source"`
	Synthetic bool    `json:"synthetic"` // timestamps approximated, not measured
	Entries   []Entry `json:"entries"`
	Text      string  `json:"text"`
}
