package speech

import (
	"context"
	"encoding/json"
	"fmt"
)

// Transcription job statuses as reported by the speech service.
const (
	TranscriptionInProgress = "IN_PROGRESS"
	TranscriptionCompleted  = "COMPLETED"
	TranscriptionFailed     = "FAILED"
)

// StartTranscriptionInput names the audio object to transcribe. MediaURI
// points at the object in its bucket's region; JobName must be unique per
// run.
type StartTranscriptionInput struct {
	JobName     string
	MediaURI    string
	MediaFormat string
	Language    string
}

// TranscriptionJob is the observable state of a transcription run.
type TranscriptionJob struct {
	Name          string
	Status        string
	TranscriptURI string
	FailureReason string
}

// Transcriber converts stored audio to text. Transcription is a start-then-
// poll operation; the transcript itself is fetched from the URI the finished
// job reports.
type Transcriber interface {
	StartTranscription(ctx context.Context, in StartTranscriptionInput) error
	GetTranscription(ctx context.Context, jobName string) (*TranscriptionJob, error)
	FetchTranscript(ctx context.Context, transcriptURI string) ([]byte, error)
}

// Synthesizer converts text to spoken audio.
type Synthesizer interface {
	// Synthesize returns MP3 audio for the text using the given voice.
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

type transcriptDocument struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

// ExtractTranscriptText pulls the transcript string out of a transcript
// document ({"results":{"transcripts":[{"transcript":"..."}]}}).
func ExtractTranscriptText(doc []byte) (string, error) {
	var parsed transcriptDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return "", fmt.Errorf("parse transcript document: %w", err)
	}
	if len(parsed.Results.Transcripts) == 0 {
		return "", fmt.Errorf("transcript document has no transcripts")
	}
	return parsed.Results.Transcripts[0].Transcript, nil
}
