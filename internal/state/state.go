package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ContentType categorizes the object being processed, derived from its file
// extension during the first workflow stage. Values serialize as their
// symbolic names so persisted snapshots stay readable and stable.
type ContentType string

const (
	ContentImage   ContentType = "Image"
	ContentText    ContentType = "Text"
	ContentAudio   ContentType = "Audio"
	ContentVideo   ContentType = "Video"
	ContentUnknown ContentType = "Unknown"
)

var contentTypeSet = map[ContentType]struct{}{
	ContentImage:   {},
	ContentText:    {},
	ContentAudio:   {},
	ContentVideo:   {},
	ContentUnknown: {},
}

// ParseContentType converts a string into a known ContentType.
func ParseContentType(value string) (ContentType, bool) {
	ct := ContentType(strings.TrimSpace(value))
	_, ok := contentTypeSet[ct]
	return ct, ok
}

// PendingScan identifies which asynchronous inference job, if any, the
// workflow is suspended on.
type PendingScan string

const (
	PendingNone               PendingScan = "None"
	PendingModeration         PendingScan = "Moderation"
	PendingKeywording         PendingScan = "Keywording"
	PendingCelebrityDetection PendingScan = "CelebrityDetection"
)

var pendingScanSet = map[PendingScan]struct{}{
	PendingNone:               {},
	PendingModeration:         {},
	PendingKeywording:         {},
	PendingCelebrityDetection: {},
}

// ParsePendingScan converts a string into a known PendingScan.
func ParsePendingScan(value string) (PendingScan, bool) {
	ps := PendingScan(strings.TrimSpace(value))
	_, ok := pendingScanSet[ps]
	return ps, ok
}

// MaxKeywordsOrCelebrities caps the keyword and celebrity lists so the
// copy-and-tag stage stays within object tagging limits downstream.
const MaxKeywordsOrCelebrities = 10

// State is the continuation record passed between workflow stages. It is the
// only thing persisted at a suspend point, so everything a resumed execution
// needs to continue must live here.
type State struct {
	// Bucket and InputObjectKey identify the source object that triggered
	// the workflow. Stable for the object's lifetime in this pipeline.
	Bucket         string `json:"Bucket"`
	InputObjectKey string `json:"InputObjectKey"`

	// ContentType is set once by the media type stage and never reverts to
	// Unknown after a successful classification.
	ContentType ContentType `json:"ContentType"`

	// Extension is the lower-cased, trimmed file extension used for
	// classification and later format branching.
	Extension string `json:"Extension,omitempty"`

	// PendingScanResults is non-None exactly when an async inference job is
	// outstanding; PendingJobId then holds the external job handle.
	PendingScanResults PendingScan `json:"PendingScanResults"`
	PendingJobId       string      `json:"PendingJobId,omitempty"`

	// IsUnsafe is sticky once set; downstream conversion and tagging are
	// skipped for unsafe content.
	IsUnsafe bool `json:"IsUnsafe"`

	// OutputObjectKey is the most recently produced derived artifact
	// (thumbnail, transcript, synthesized audio). Overwritten per stage.
	OutputObjectKey string `json:"OutputObjectKey,omitempty"`

	// Keywords and Celebrities hold detected labels and names in discovery
	// order, unique case-insensitively, capped at MaxKeywordsOrCelebrities.
	Keywords    []string `json:"Keywords"`
	Celebrities []string `json:"Celebrities"`
}

// New builds the initial state for a newly arrived object.
func New(bucket, inputObjectKey string) *State {
	return &State{
		Bucket:             bucket,
		InputObjectKey:     inputObjectKey,
		ContentType:        ContentUnknown,
		PendingScanResults: PendingNone,
		Keywords:           []string{},
		Celebrities:        []string{},
	}
}

var foldCaser = cases.Fold()

func foldKey(value string) string {
	return foldCaser.String(strings.TrimSpace(value))
}

func appendUnique(list []string, value string) []string {
	if strings.TrimSpace(value) == "" || len(list) >= MaxKeywordsOrCelebrities {
		return list
	}
	key := foldKey(value)
	for _, existing := range list {
		if foldKey(existing) == key {
			return list
		}
	}
	return append(list, value)
}

// AddKeyword appends a keyword preserving discovery order. Duplicates
// (case-insensitive) and entries beyond the cap are dropped.
func (s *State) AddKeyword(keyword string) {
	s.Keywords = appendUnique(s.Keywords, keyword)
}

// AddCelebrity appends a celebrity name with the same dedup and cap policy
// as AddKeyword.
func (s *State) AddCelebrity(name string) {
	s.Celebrities = appendUnique(s.Celebrities, name)
}

// HasPersonIndicator reports whether the keywords suggest human presence,
// which gates the celebrity detection stage.
func (s *State) HasPersonIndicator() bool {
	for _, kw := range s.Keywords {
		switch foldKey(kw) {
		case "person", "human":
			return true
		}
	}
	return false
}

// SetPending marks the state as suspended on an async job.
func (s *State) SetPending(scan PendingScan, jobID string) {
	s.PendingScanResults = scan
	s.PendingJobId = jobID
}

// ClearPending resets the suspension markers after a resume stage has
// collected the async job's results.
func (s *State) ClearPending() {
	s.PendingScanResults = PendingNone
	s.PendingJobId = ""
}

// Suspended reports whether the workflow is waiting on an async job.
func (s *State) Suspended() bool {
	return s.PendingScanResults != PendingNone && s.PendingScanResults != ""
}

// Clone returns a deep copy; snapshots written to the job-state store must
// not alias the running execution's slices.
func (s *State) Clone() *State {
	cp := *s
	cp.Keywords = append([]string(nil), s.Keywords...)
	cp.Celebrities = append([]string(nil), s.Celebrities...)
	return &cp
}

// Validate checks the record's invariants before it is persisted or handed
// to another execution.
func (s *State) Validate() error {
	if strings.TrimSpace(s.Bucket) == "" {
		return errors.New("state: bucket is empty")
	}
	if strings.TrimSpace(s.InputObjectKey) == "" {
		return errors.New("state: input object key is empty")
	}
	pendingJob := strings.TrimSpace(s.PendingJobId) != ""
	if s.Suspended() != pendingJob {
		return fmt.Errorf("state: pending scan %q and job id %q are inconsistent", s.PendingScanResults, s.PendingJobId)
	}
	if len(s.Keywords) > MaxKeywordsOrCelebrities {
		return fmt.Errorf("state: %d keywords exceeds cap of %d", len(s.Keywords), MaxKeywordsOrCelebrities)
	}
	if len(s.Celebrities) > MaxKeywordsOrCelebrities {
		return fmt.Errorf("state: %d celebrities exceeds cap of %d", len(s.Celebrities), MaxKeywordsOrCelebrities)
	}
	return nil
}

// Encode serializes the state to its JSON wire format.
func (s *State) Encode() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Decode deserializes a state snapshot and validates its invariants.
func Decode(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if st.ContentType == "" {
		st.ContentType = ContentUnknown
	}
	if st.PendingScanResults == "" {
		st.PendingScanResults = PendingNone
	}
	if st.Keywords == nil {
		st.Keywords = []string{}
	}
	if st.Celebrities == nil {
		st.Celebrities = []string{}
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

// Describe renders the bucket/key pair the way log lines reference objects.
func (s *State) Describe() string {
	return fmt.Sprintf("%s::/%s", s.Bucket, s.InputObjectKey)
}
