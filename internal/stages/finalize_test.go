package stages_test

import (
	"context"
	"strings"
	"testing"

	"ingester/internal/stages"
	"ingester/internal/state"
	"ingester/internal/testsupport"
)

func TestCopyAndTagImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/photo.jpg", []byte("img"))

	st := state.New("media-in", "incoming/photo.jpg")
	st.ContentType = state.ContentImage
	st.AddKeyword("Beach")
	st.AddKeyword("Person")
	st.AddCelebrity("Jane Doe")
	st.OutputObjectKey = "processed/images/thumbs/photo.jpg"
	if err := stages.NewCopyAndTag(f.env).Execute(ctx, st); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	tags, err := f.store.Tags(ctx, "media-in", "processed/images/photo.jpg")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Key != "Keywords" || tags[0].Value != "Beach/Person" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
	if tags[1].Key != "Celebrities" || tags[1].Value != "Jane Doe" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
	// The thumbnail remains the recorded output artifact.
	if st.OutputObjectKey != "processed/images/thumbs/photo.jpg" {
		t.Fatalf("output key overwritten: %q", st.OutputObjectKey)
	}
}

func TestCopyAndTagVideoSetsOutputKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/clip.mp4", []byte("vid"))

	st := state.New("media-in", "incoming/clip.mp4")
	st.ContentType = state.ContentVideo
	if err := stages.NewCopyAndTag(f.env).Execute(ctx, st); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if st.OutputObjectKey != "processed/videos/clip.mp4" {
		t.Fatalf("output key = %q", st.OutputObjectKey)
	}
	if !f.store.Exists("media-in", "processed/videos/clip.mp4") {
		t.Fatal("video copy missing")
	}
}

func TestCopyAndTagSkipsOtherContentTypes(t *testing.T) {
	f := newFixture(t)
	st := state.New("media-in", "incoming/note.txt")
	st.ContentType = state.ContentText
	if err := stages.NewCopyAndTag(f.env).Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if f.store.Exists("media-in", "processed/images/note.txt") || f.store.Exists("media-in", "processed/videos/note.txt") {
		t.Fatal("text must not be copied")
	}
}

func TestRemoveInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testsupport.SeedObject(t, f.store, "media-in", "incoming/photo.jpg", []byte("img"))

	st := state.New("media-in", "incoming/photo.jpg")
	if err := stages.NewRemoveInput(f.env).Execute(ctx, st); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if f.store.Exists("media-in", "incoming/photo.jpg") {
		t.Fatal("input object still present")
	}
	// Removing an already-removed object is a no-op.
	if err := stages.NewRemoveInput(f.env).Execute(ctx, st); err != nil {
		t.Fatalf("repeat Execute: %v", err)
	}
}

func TestNotifyComplete(t *testing.T) {
	f := newFixture(t)
	st := state.New("media-in", "incoming/photo.jpg")
	st.ContentType = state.ContentImage
	st.AddKeyword("Beach")
	if err := stages.NewNotifyComplete(f.env).Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	sent := f.publisher.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sent))
	}
	if sent[0].Topic != f.cfg.Notifications.IngestCompletedTopic {
		t.Fatalf("topic = %q", sent[0].Topic)
	}
	if sent[0].Subject != "Ingest completed for media-in::/incoming/photo.jpg" {
		t.Fatalf("subject = %q", sent[0].Subject)
	}
	if !strings.Contains(sent[0].Message, `"Keywords":["Beach"]`) {
		t.Fatalf("message missing state payload: %q", sent[0].Message)
	}
}

func TestNotifyCompleteLongSubjectFallsBack(t *testing.T) {
	f := newFixture(t)
	longKey := "incoming/" + strings.Repeat("a", 120) + ".jpg"
	st := state.New("media-in", longKey)
	st.ContentType = state.ContentImage
	if err := stages.NewNotifyComplete(f.env).Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	sent := f.publisher.Sent()
	if len(sent) != 1 || sent[0].Subject != "Ingest completed" {
		t.Fatalf("expected fallback subject, got %+v", sent)
	}
}

func TestNotifyCompleteWithoutTopicSkips(t *testing.T) {
	f := newFixture(t)
	f.cfg.Notifications.IngestCompletedTopic = ""
	st := state.New("media-in", "incoming/photo.jpg")
	st.ContentType = state.ContentImage
	if err := stages.NewNotifyComplete(f.env).Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sent := f.publisher.Sent(); len(sent) != 0 {
		t.Fatalf("expected no notification, got %+v", sent)
	}
}
