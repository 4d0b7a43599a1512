package state_test

import (
	"strings"
	"testing"

	"ingester/internal/state"
)

func TestAddKeywordDeduplicatesCaseInsensitively(t *testing.T) {
	st := state.New("media-in", "vacation.jpg")
	st.AddKeyword("Beach")
	st.AddKeyword("beach")
	st.AddKeyword("BEACH")
	st.AddKeyword("Person")

	if got := len(st.Keywords); got != 2 {
		t.Fatalf("expected 2 keywords, got %d: %v", got, st.Keywords)
	}
	if st.Keywords[0] != "Beach" || st.Keywords[1] != "Person" {
		t.Fatalf("discovery order not preserved: %v", st.Keywords)
	}
}

func TestAddKeywordRespectsCap(t *testing.T) {
	st := state.New("media-in", "clip.mp4")
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for _, label := range labels {
		st.AddKeyword(label)
	}
	if got := len(st.Keywords); got != state.MaxKeywordsOrCelebrities {
		t.Fatalf("expected cap of %d, got %d", state.MaxKeywordsOrCelebrities, got)
	}
}

func TestAddCelebritySkipsBlankEntries(t *testing.T) {
	st := state.New("media-in", "clip.mp4")
	st.AddCelebrity("  ")
	st.AddCelebrity("Jane Doe")
	if len(st.Celebrities) != 1 || st.Celebrities[0] != "Jane Doe" {
		t.Fatalf("unexpected celebrities: %v", st.Celebrities)
	}
}

func TestHasPersonIndicator(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     bool
	}{
		{name: "person", keywords: []string{"Beach", "Person"}, want: true},
		{name: "human mixed case", keywords: []string{"HUMAN"}, want: true},
		{name: "no indicator", keywords: []string{"Beach", "Sky"}, want: false},
		{name: "empty", keywords: nil, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := state.New("b", "k")
			for _, kw := range tc.keywords {
				st.AddKeyword(kw)
			}
			if got := st.HasPersonIndicator(); got != tc.want {
				t.Fatalf("HasPersonIndicator() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateEnforcesPendingInvariant(t *testing.T) {
	st := state.New("media-in", "clip.mp4")
	if err := st.Validate(); err != nil {
		t.Fatalf("fresh state should validate: %v", err)
	}

	st.PendingScanResults = state.PendingModeration
	if err := st.Validate(); err == nil {
		t.Fatal("pending scan without job id should fail validation")
	}

	st.PendingJobId = "job-123"
	if err := st.Validate(); err != nil {
		t.Fatalf("pending scan with job id should validate: %v", err)
	}

	st.ClearPending()
	if st.Suspended() {
		t.Fatal("ClearPending should clear suspension")
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("cleared state should validate: %v", err)
	}
}

func TestEncodeUsesSymbolicEnumNames(t *testing.T) {
	st := state.New("media-in", "clip.mp4")
	st.ContentType = state.ContentVideo
	st.SetPending(state.PendingModeration, "job-123")

	data, err := st.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded := string(data)
	for _, want := range []string{`"ContentType":"Video"`, `"PendingScanResults":"Moderation"`, `"PendingJobId":"job-123"`} {
		if !strings.Contains(encoded, want) {
			t.Fatalf("encoded state missing %s: %s", want, encoded)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	st := state.New("media-in", "vacation.jpg")
	st.ContentType = state.ContentImage
	st.Extension = "jpg"
	st.AddKeyword("Beach")
	st.AddCelebrity("Jane Doe")

	data, err := st.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := state.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.ContentType != state.ContentImage || decoded.Extension != "jpg" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if len(decoded.Keywords) != 1 || decoded.Keywords[0] != "Beach" {
		t.Fatalf("keywords lost in round trip: %v", decoded.Keywords)
	}
}

func TestDecodeRejectsInconsistentSnapshot(t *testing.T) {
	if _, err := state.Decode([]byte(`{"Bucket":"b","InputObjectKey":"k","PendingScanResults":"Moderation"}`)); err == nil {
		t.Fatal("expected invariant failure for pending scan without job id")
	}
}

func TestCloneDoesNotAliasSlices(t *testing.T) {
	st := state.New("b", "k")
	st.AddKeyword("Beach")
	cp := st.Clone()
	cp.AddKeyword("Sky")
	if len(st.Keywords) != 1 {
		t.Fatalf("clone mutated original: %v", st.Keywords)
	}
}
