package transcriptserver

// TranscriptInput is the input for youtube_transcript.
type TranscriptInput struct {
	URL          string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, shorts, embed or live link)"`
	Language     string `json:"language,omitempty" jsonschema:"Caption language code, e.g. en or de (default: first available track)"`
	PreviewChars int    `json:"preview_chars,omitempty" jsonschema:"Length of the preview in characters (default: 1000, -1 = full transcript)"`
}

// TranscriptOutput is the structured result of youtube_transcript.
type TranscriptOutput struct {
	VideoID    string `json:"video_id"`
	Language   string `json:"language,omitempty"`
	Source     string `json:"source"`
	Synthetic  bool   `json:"synthetic"`
	EntryCount int    `json:"entry_count"`
	Preview    string `json:"preview"`
	Transcript string `json:"transcript"`
}

// BatchInput is the input for youtube_transcript_batch.
type BatchInput struct {
	URLs     []string `json:"urls" jsonschema:"YouTube video URLs (max 20)"`
	Language string   `json:"language,omitempty" jsonschema:"Caption language code applied to every video"`
}

// BatchItem is the outcome for one URL of a batch; Error is set instead of the transcript fields on failure.
type BatchItem struct {
	URL        string `json:"url"`
	VideoID    string `json:"video_id,omitempty"`
	Language   string `json:"language,omitempty"`
	Source     string `json:"source,omitempty"`
	Synthetic  bool   `json:"synthetic,omitempty"`
	EntryCount int    `json:"entry_count,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
}

// BatchOutput is the structured result of youtube_transcript_batch.
type BatchOutput struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// AnalyzeInput is the input for transcript_analyze.
type AnalyzeInput struct {
	Task      string `json:"task" jsonschema:"Inference task: sentiment, generation or qa"`
	Model     string `json:"model,omitempty" jsonschema:"Model id (default: server LLM_MODEL)"`
	URL       string `json:"url,omitempty" jsonschema:"YouTube URL whose transcript text is used as input (sentiment text, generation prompt or QA context)"`
	Text      string `json:"text,omitempty" jsonschema:"Input text when no url is given"`
	Language  string `json:"language,omitempty" jsonschema:"Caption language code when url is given"`
	Question  string `json:"question,omitempty" jsonschema:"Question for the qa task"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"Maximum generated tokens for the generation task"`
}

// AnalyzeOutput is the structured result of transcript_analyze.
type AnalyzeOutput struct {
	Task          string  `json:"task"`
	Model         string  `json:"model"`
	VideoID       string  `json:"video_id,omitempty"`
	Label         string  `json:"label,omitempty"`
	GeneratedText string  `json:"generated_text,omitempty"`
	Answer        string  `json:"answer,omitempty"`
	Score         float64 `json:"score"`
}
