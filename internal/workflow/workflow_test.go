package workflow_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"ingester/internal/config"
	"ingester/internal/inference"
	"ingester/internal/jobstate"
	"ingester/internal/logging"
	"ingester/internal/notifications"
	"ingester/internal/speech"
	"ingester/internal/stages"
	"ingester/internal/storage"
	"ingester/internal/testsupport"
	"ingester/internal/workflow"
)

type fixture struct {
	cfg       *config.Config
	store     *storage.MemoryStore
	jobs      *jobstate.Store
	detector  *inference.Stub
	speech    *speech.Stub
	publisher *notifications.Capture
	manager   *workflow.Manager
	trigger   *workflow.Trigger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	f := &fixture{
		cfg:       cfg,
		store:     storage.NewMemoryStore(),
		jobs:      testsupport.MustOpenJobs(t, cfg),
		detector:  inference.NewStub(),
		speech:    speech.NewStub("meeting notes transcript"),
		publisher: notifications.NewCapture(),
	}
	env := stages.Env{
		Config:      cfg,
		Store:       f.store,
		Jobs:        f.jobs,
		Detector:    f.detector,
		Async:       f.detector,
		Transcriber: f.speech,
		Synthesizer: f.speech,
		Publisher:   f.publisher,
		Logger:      logging.NewNop(),
	}
	f.manager = workflow.NewManager(f.jobs, logging.NewNop(),
		stages.NewDetermineMediaType(env),
		stages.NewModerationScan(env),
		stages.NewKeywordScan(env),
		stages.NewCelebrityScan(env),
		stages.NewResumeModeration(env),
		stages.NewResumeKeywords(env),
		stages.NewResumeCelebrities(env),
		stages.NewCreateThumbnail(env),
		stages.NewAudioToText(env),
		stages.NewTextToAudio(env),
		stages.NewCopyAndTag(env),
		stages.NewRemoveInput(env),
		stages.NewNotifyComplete(env),
	)
	f.trigger = workflow.NewTrigger(f.manager, f.jobs, logging.NewNop())
	return f
}

// deliverCompletions replays the stub detector's announced completions as
// notification payloads, as the daemon's completion poller would.
func (f *fixture) deliverCompletions(t *testing.T) int {
	t.Helper()
	completions := f.detector.DrainCompletions()
	for _, c := range completions {
		payload, err := notifications.CompletionMessage{JobID: c.JobID, Status: c.Status}.Encode()
		if err != nil {
			t.Fatalf("encode completion: %v", err)
		}
		if err := f.trigger.HandleCompletion(context.Background(), payload); err != nil {
			t.Fatalf("HandleCompletion: %v", err)
		}
	}
	return len(completions)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/photo.png", pngBytes(t))
	f.detector.SetLabels("incoming/photo.png",
		inference.Label{Name: "Person", Confidence: 95},
		inference.Label{Name: "Beach", Confidence: 88},
	)
	f.detector.SetCelebrities("incoming/photo.png", inference.Label{Name: "Jane Doe", Confidence: 97})

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/photo.png"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}

	if f.store.Exists("media-in", "incoming/photo.png") {
		t.Fatal("input not removed")
	}
	if !f.store.Exists("media-in", "processed/images/thumbs/photo.png") {
		t.Fatal("thumbnail missing")
	}
	tags, err := f.store.Tags(ctx, "media-in", "processed/images/photo.png")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if tags[0].Value != "Person/Beach" || tags[1].Value != "Jane Doe" {
		t.Fatalf("unexpected tags: %+v", tags)
	}

	sent := f.publisher.Sent()
	if len(sent) != 1 || sent[0].Subject != "Ingest completed for media-in::/incoming/photo.png" {
		t.Fatalf("unexpected notifications: %+v", sent)
	}
	if !strings.Contains(sent[0].Message, `"Celebrities":["Jane Doe"]`) {
		t.Fatalf("notification missing state: %q", sent[0].Message)
	}
}

func TestUnsafeImageIsRemovedWithoutOutputs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/photo.jpg", []byte("img"))
	f.detector.SetModeration("incoming/photo.jpg", inference.Label{Name: "Violence", Confidence: 92})

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/photo.jpg"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}

	if f.store.Exists("media-in", "incoming/photo.jpg") {
		t.Fatal("unsafe input not removed")
	}
	keys, err := f.store.List(ctx, "media-in", "processed/")
	if err != nil || len(keys) != 0 {
		t.Fatalf("unsafe media must produce no outputs, got %v, %v", keys, err)
	}
	sent := f.publisher.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Message, `"IsUnsafe":true`) {
		t.Fatalf("unexpected notifications: %+v", sent)
	}
}

func TestVideoFlowSuspendsAndResumesThreeTimes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/clip.mp4", []byte("vid"))
	f.detector.SetLabels("incoming/clip.mp4",
		inference.Label{Name: "Person", Confidence: 93},
		inference.Label{Name: "Car", Confidence: 84},
	)
	f.detector.SetCelebrities("incoming/clip.mp4", inference.Label{Name: "John Roe", Confidence: 90})

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/clip.mp4"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	// Moderation, keywording, and celebrity detection each suspend once.
	for round := 1; round <= 3; round++ {
		if n := f.deliverCompletions(t); n != 1 {
			t.Fatalf("round %d: expected one completion, got %d", round, n)
		}
	}
	if n := f.deliverCompletions(t); n != 0 {
		t.Fatalf("unexpected extra completions: %d", n)
	}

	if f.store.Exists("media-in", "incoming/clip.mp4") {
		t.Fatal("input not removed")
	}
	tags, err := f.store.Tags(ctx, "media-in", "processed/videos/clip.mp4")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if tags[0].Value != "Person/Car" || tags[1].Value != "John Roe" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
	if sent := f.publisher.Sent(); len(sent) != 1 {
		t.Fatalf("expected one completion notification, got %+v", sent)
	}

	// All continuations were consumed.
	pending, err := f.jobs.ListPending(ctx)
	if err != nil || len(pending) != 0 {
		t.Fatalf("pending jobs remain: %+v, %v", pending, err)
	}
}

func TestAudioFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/memo.mp3", []byte("fake-mp3"))

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/memo.mp3"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}

	body, err := f.store.Get(ctx, "media-in", "processed/text-from-audio/memo.txt")
	if err != nil {
		t.Fatalf("Get transcript: %v", err)
	}
	if string(body) != "meeting notes transcript" {
		t.Fatalf("transcript = %q", body)
	}
	if f.store.Exists("media-in", "incoming/memo.mp3") {
		t.Fatal("input not removed")
	}
}

func TestTextFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/note.txt", []byte("hello"))

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/note.txt"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	if !f.store.Exists("media-in", "processed/audio-from-text/note.mp3") {
		t.Fatal("synthesized audio missing")
	}
	if f.store.Exists("media-in", "incoming/note.txt") {
		t.Fatal("input not removed")
	}
}

func TestUnknownMediaIsRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/archive.zip", []byte("zip"))

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/archive.zip"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	if f.store.Exists("media-in", "incoming/archive.zip") {
		t.Fatal("unknown input not removed")
	}
}

func TestFolderMarkerIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/photos_$folder$"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/photos/"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	executions, err := f.jobs.ListExecutions(ctx, 0)
	if err != nil || len(executions) != 0 {
		t.Fatalf("markers must not start executions: %+v, %v", executions, err)
	}
}

func TestDuplicateCompletionIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/clip.mp4", []byte("vid"))

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/clip.mp4"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	completions := f.detector.DrainCompletions()
	if len(completions) != 1 {
		t.Fatalf("expected one completion, got %d", len(completions))
	}
	payload, err := notifications.CompletionMessage{JobID: completions[0].JobID, Status: completions[0].Status}.Encode()
	if err != nil {
		t.Fatalf("encode completion: %v", err)
	}
	if err := f.trigger.HandleCompletion(ctx, payload); err != nil {
		t.Fatalf("HandleCompletion: %v", err)
	}
	before := len(f.jobsExecutions(t))

	// Replayed delivery: continuation already consumed.
	if err := f.trigger.HandleCompletion(ctx, payload); err != nil {
		t.Fatalf("duplicate HandleCompletion: %v", err)
	}
	if after := len(f.jobsExecutions(t)); after != before {
		t.Fatalf("duplicate completion started an execution: %d -> %d", before, after)
	}
}

func (f *fixture) jobsExecutions(t *testing.T) []jobstate.Execution {
	t.Helper()
	executions, err := f.jobs.ListExecutions(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	return executions
}

func TestFailedCompletionAbandonsWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.detector.FailAsyncJobs()
	testsupport.SeedObject(t, f.store, "media-in", "incoming/clip.mp4", []byte("vid"))

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/clip.mp4"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	if n := f.deliverCompletions(t); n != 1 {
		t.Fatalf("expected one completion, got %d", n)
	}

	// Abandoned: input stays in place, continuation consumed, no outputs.
	if !f.store.Exists("media-in", "incoming/clip.mp4") {
		t.Fatal("abandoned workflow must leave input in place")
	}
	pending, err := f.jobs.ListPending(ctx)
	if err != nil || len(pending) != 0 {
		t.Fatalf("continuation not consumed: %+v, %v", pending, err)
	}
	if sent := f.publisher.Sent(); len(sent) != 0 {
		t.Fatalf("abandoned workflow must not notify: %+v", sent)
	}
}

func TestMalformedCompletionLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/clip.mp4", []byte("vid"))

	if err := f.trigger.HandleNewObject(ctx, "media-in", "incoming/clip.mp4"); err != nil {
		t.Fatalf("HandleNewObject: %v", err)
	}
	if err := f.trigger.HandleCompletion(ctx, []byte(`{"Status":"SUCCEEDED"}`)); err == nil {
		t.Fatal("expected error for payload without job id")
	}

	pending, err := f.jobs.ListPending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("continuation must survive a malformed delivery: %+v, %v", pending, err)
	}
}
