package classify_test

import (
	"testing"

	"ingester/internal/classify"
	"ingester/internal/state"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key     string
		want    state.ContentType
		wantExt string
	}{
		{key: "vacation.jpg", want: state.ContentImage, wantExt: "jpg"},
		{key: "folder/photo.jpeg", want: state.ContentImage, wantExt: "jpeg"},
		{key: "icon.png", want: state.ContentImage, wantExt: "png"},
		{key: "loop.gif", want: state.ContentImage, wantExt: "gif"},
		{key: "song.mp3", want: state.ContentAudio, wantExt: "mp3"},
		{key: "voice.wav", want: state.ContentAudio, wantExt: "wav"},
		{key: "clip.mp4", want: state.ContentVideo, wantExt: "mp4"},
		{key: "note.txt", want: state.ContentText, wantExt: "txt"},
		{key: "archive.zip", want: state.ContentUnknown, wantExt: "zip"},
		{key: "README", want: state.ContentUnknown, wantExt: ""},
		{key: "PHOTO.JPG", want: state.ContentImage, wantExt: "jpg"},
		{key: "nested/dir/movie.MP4", want: state.ContentVideo, wantExt: "mp4"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			got, ext := classify.Classify(tc.key)
			if got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.key, got, tc.want)
			}
			if ext != tc.wantExt {
				t.Fatalf("Classify(%q) extension = %q, want %q", tc.key, ext, tc.wantExt)
			}
		})
	}
}

func TestModeratable(t *testing.T) {
	for _, ext := range []string{"jpg", "jpeg", "png", "PNG"} {
		if !classify.Moderatable(ext) {
			t.Fatalf("expected %q to be moderatable", ext)
		}
	}
	for _, ext := range []string{"gif", "mp4", "txt", ""} {
		if classify.Moderatable(ext) {
			t.Fatalf("expected %q to not be moderatable", ext)
		}
	}
}
