package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ingester/internal/logging"
	"ingester/internal/services"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", logging.String("object", "media-in::/a.jpg"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"object":"media-in::/a.jpg"`) {
		t.Fatalf("structured field missing: %s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WithComponent(logger, "moderation").Info("stage started", logging.String("job_id", "job-1"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{"[moderation]", "stage started", "job_id=job-1"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line missing %q: %s", want, line)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := services.WithObject(context.Background(), "media-in::/clip.mp4")
	ctx = services.WithStage(ctx, "ModerationScan")
	ctx = services.WithExecution(ctx, "clipmp4123")
	logging.WithContext(ctx, logger).Info("working")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{`"object":"media-in::/clip.mp4"`, `"stage":"ModerationScan"`, `"execution":"clipmp4123"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("context field missing %q: %s", want, line)
		}
	}
}
