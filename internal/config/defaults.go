package config

import (
	"os"
	"path/filepath"
)

const (
	defaultThumbnailMaxDimension = 1024
	defaultModerationConfidence  = 60.0
	defaultKeywordConfidence     = 70.0
)

// Default returns the baseline configuration before any file overrides.
func Default() Config {
	base := defaultBaseDir()
	return Config{
		Paths: Paths{
			StoreRoot: filepath.Join(base, "store"),
			DataDir:   filepath.Join(base, "data"),
			LogDir:    filepath.Join(base, "logs"),
			WorkDir:   filepath.Join(base, "work"),
		},
		Ingest: Ingest{
			Bucket:          "media-in",
			InputRootPath:   "incoming",
			OutputsRootPath: "processed",
		},
		Inference: Inference{
			MinModerationConfidence: defaultModerationConfidence,
			MinKeywordConfidence:    defaultKeywordConfidence,
			ServiceRole:             "ingester-inference",
			RequestTimeout:          30,
		},
		Speech: Speech{
			VoiceID:                   "Joanna",
			TranscribePollInterval:    5,
			TranscribePollMaxInterval: 60,
			TranscribePollBudget:      900,
			RequestTimeout:            30,
		},
		Outputs: Outputs{
			ThumbnailMaxDimension: defaultThumbnailMaxDimension,
		},
		Notifications: Notifications{
			AsyncCompletedTopic:  "ingester-async-completed",
			IngestCompletedTopic: "ingester-ingest-completed",
			RequestTimeout:       10,
		},
		Workflow: Workflow{
			InboxPollInterval:      5,
			CompletionPollInterval: 5,
			ErrorRetryInterval:     15,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ingester")
	}
	return filepath.Join(home, ".local", "share", "ingester")
}
