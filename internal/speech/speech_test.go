package speech_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ingester/internal/speech"
)

func TestExtractTranscriptText(t *testing.T) {
	doc := []byte(`{"results":{"transcripts":[{"transcript":"hello from the recording"}]}}`)
	text, err := speech.ExtractTranscriptText(doc)
	if err != nil {
		t.Fatalf("ExtractTranscriptText: %v", err)
	}
	if text != "hello from the recording" {
		t.Fatalf("unexpected transcript %q", text)
	}

	if _, err := speech.ExtractTranscriptText([]byte(`{"results":{"transcripts":[]}}`)); err == nil {
		t.Fatal("expected error for empty transcripts")
	}
	if _, err := speech.ExtractTranscriptText([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestStubTranscriptionLifecycle(t *testing.T) {
	ctx := context.Background()
	stub := speech.NewStub("dictated note")

	in := speech.StartTranscriptionInput{
		JobName:     "media-in_incoming_memo.mp3_638000000",
		MediaURI:    "s3://media-in/incoming/memo.mp3",
		MediaFormat: "mp3",
	}
	if err := stub.StartTranscription(ctx, in); err != nil {
		t.Fatalf("StartTranscription: %v", err)
	}
	if err := stub.StartTranscription(ctx, in); err == nil {
		t.Fatal("duplicate job name should be rejected")
	}

	job, err := stub.GetTranscription(ctx, in.JobName)
	if err != nil {
		t.Fatalf("GetTranscription: %v", err)
	}
	if job.Status != speech.TranscriptionCompleted || job.TranscriptURI == "" {
		t.Fatalf("unexpected job: %+v", job)
	}

	doc, err := stub.FetchTranscript(ctx, job.TranscriptURI)
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	text, err := speech.ExtractTranscriptText(doc)
	if err != nil || text != "dictated note" {
		t.Fatalf("transcript = %q, %v", text, err)
	}
}

func TestStubFailedTranscription(t *testing.T) {
	ctx := context.Background()
	stub := speech.NewStub("")
	stub.FailTranscriptions("unsupported codec")

	in := speech.StartTranscriptionInput{JobName: "job-1", MediaURI: "s3://media-in/incoming/memo.wav"}
	if err := stub.StartTranscription(ctx, in); err != nil {
		t.Fatalf("StartTranscription: %v", err)
	}
	job, err := stub.GetTranscription(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetTranscription: %v", err)
	}
	if job.Status != speech.TranscriptionFailed || job.FailureReason != "unsupported codec" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestStubSynthesize(t *testing.T) {
	ctx := context.Background()
	stub := speech.NewStub("")
	audio, err := stub.Synthesize(ctx, "read me aloud", "Joanna")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(audio) == 0 || !strings.Contains(string(audio), "read me aloud") {
		t.Fatalf("unexpected audio payload %q", audio)
	}
	if got := stub.Synthesized(); len(got) != 1 || got[0] != "read me aloud" {
		t.Fatalf("unexpected synthesized log: %v", got)
	}
}

func TestHTTPClientTranscription(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/transcriptions":
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req["jobName"] != "job-1" || req["mediaUri"] == "" {
				t.Errorf("unexpected request: %+v", req)
			}
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/transcriptions/job-1":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"name":          "job-1",
				"status":        speech.TranscriptionCompleted,
				"transcriptUri": "http://" + r.Host + "/transcripts/job-1",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/transcripts/job-1":
			_, _ = w.Write([]byte(`{"results":{"transcripts":[{"transcript":"over http"}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := speech.NewHTTPClient(server.URL, 0, server.Client())
	err := client.StartTranscription(ctx, speech.StartTranscriptionInput{
		JobName:  "job-1",
		MediaURI: "s3://media-in/incoming/memo.mp3",
	})
	if err != nil {
		t.Fatalf("StartTranscription: %v", err)
	}

	job, err := client.GetTranscription(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetTranscription: %v", err)
	}
	if job.Status != speech.TranscriptionCompleted {
		t.Fatalf("unexpected job: %+v", job)
	}

	doc, err := client.FetchTranscript(ctx, job.TranscriptURI)
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if text, err := speech.ExtractTranscriptText(doc); err != nil || text != "over http" {
		t.Fatalf("transcript = %q, %v", text, err)
	}
}

func TestHTTPClientSynthesizeError(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer server.Close()

	client := speech.NewHTTPClient(server.URL, 0, server.Client())
	if _, err := client.Synthesize(ctx, "text", "NoSuchVoice"); err == nil {
		t.Fatal("expected error from 400 response")
	}
}
