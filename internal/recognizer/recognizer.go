// Package recognizer defines the speech-recognition collaborator boundary.
// The concrete wire format stays behind the interface so the transcription
// stage only sees timed text spans.
package recognizer

import (
	"context"
	"time"
)

// Span is one stretch of recognized speech.
type Span struct {
	Begin time.Duration `json:"begin_ns"`
	End   time.Duration `json:"end_ns"`
	Text  string        `json:"text"`
}

// Recognizer turns an audio file into ordered speech spans for a language.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath, language string) ([]Span, error)
}
