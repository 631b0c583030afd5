package inference

import (
	"errors"
	"fmt"
	"strings"
)

// Task identifies an inference capability.
type Task string

const (
	TaskSentiment  Task = "sentiment"
	TaskGeneration Task = "generation"
	TaskQA         Task = "qa"
)

var (
	ErrUnknownTask   = errors.New("unknown inference task")
	ErrEmptyInput    = errors.New("empty inference input")
	ErrNotConfigured = errors.New("inference backend not configured")
)

// ParseTask accepts the short task names and the pipeline names used by model hubs.
func ParseTask(s string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sentiment", "sentiment-analysis":
		return TaskSentiment, nil
	case "generation", "text-generation":
		return TaskGeneration, nil
	case "qa", "question-answering", "question_answering":
		return TaskQA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
}

// Input is one of Sentiment, Generation or QuestionAnswering.
type Input interface {
	Task() Task
	validate() error
}

// Sentiment classifies Text as POSITIVE or NEGATIVE.
type Sentiment struct {
	Text string
}

// Generation continues Prompt, up to MaxLength tokens (0 = backend default).
type Generation struct {
	Prompt    string
	MaxLength int
}

// QuestionAnswering extracts an answer to Question from Context.
type QuestionAnswering struct {
	Question string
	Context  string
}

func (Sentiment) Task() Task         { return TaskSentiment }
func (Generation) Task() Task        { return TaskGeneration }
func (QuestionAnswering) Task() Task { return TaskQA }

func (in Sentiment) validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrEmptyInput)
	}
	return nil
}

func (in Generation) validate() error {
	if strings.TrimSpace(in.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrEmptyInput)
	}
	if in.MaxLength < 0 {
		return fmt.Errorf("max_length must be >= 0, got %d", in.MaxLength)
	}
	return nil
}

func (in QuestionAnswering) validate() error {
	if strings.TrimSpace(in.Question) == "" {
		return fmt.Errorf("%w: question is required", ErrEmptyInput)
	}
	if strings.TrimSpace(in.Context) == "" {
		return fmt.Errorf("%w: context is required", ErrEmptyInput)
	}
	return nil
}

// NewInput builds the variant for task from flat tool arguments. text is the
// sentiment text, the generation prompt or the QA context.
func NewInput(task Task, text, question string, maxLength int) (Input, error) {
	switch task {
	case TaskSentiment:
		return Sentiment{Text: text}, nil
	case TaskGeneration:
		return Generation{Prompt: text, MaxLength: maxLength}, nil
	case TaskQA:
		return QuestionAnswering{Question: question, Context: text}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
}

// Output is the result of one inference call. Label is set for sentiment,
// GeneratedText for generation and Answer for QA.
type Output struct {
	Task          Task    `json:"task"`
	Model         string  `json:"model"`
	Label         string  `json:"label,omitempty"`
	GeneratedText string  `json:"generated_text,omitempty"`
	Answer        string  `json:"answer,omitempty"`
	Score         float64 `json:"score"`
}
