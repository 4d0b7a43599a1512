package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands paths, applies fallbacks for zero values, and validates
// the result. Called by Load after file overrides are applied.
func (c *Config) Normalize() error {
	defaults := Default()

	c.Paths.StoreRoot = expandPath(c.Paths.StoreRoot)
	c.Paths.DataDir = expandPath(c.Paths.DataDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)
	c.Paths.WorkDir = expandPath(c.Paths.WorkDir)

	c.Ingest.InputRootPath = strings.Trim(strings.TrimSpace(c.Ingest.InputRootPath), "/")
	c.Ingest.OutputsRootPath = strings.Trim(strings.TrimSpace(c.Ingest.OutputsRootPath), "/")

	if c.Inference.RequestTimeout <= 0 {
		c.Inference.RequestTimeout = defaults.Inference.RequestTimeout
	}
	if c.Speech.RequestTimeout <= 0 {
		c.Speech.RequestTimeout = defaults.Speech.RequestTimeout
	}
	if c.Speech.TranscribePollInterval <= 0 {
		c.Speech.TranscribePollInterval = defaults.Speech.TranscribePollInterval
	}
	if c.Speech.TranscribePollMaxInterval < c.Speech.TranscribePollInterval {
		c.Speech.TranscribePollMaxInterval = c.Speech.TranscribePollInterval
	}
	if c.Speech.TranscribePollBudget <= 0 {
		c.Speech.TranscribePollBudget = defaults.Speech.TranscribePollBudget
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaults.Notifications.RequestTimeout
	}
	if c.Workflow.InboxPollInterval <= 0 {
		c.Workflow.InboxPollInterval = defaults.Workflow.InboxPollInterval
	}
	if c.Workflow.CompletionPollInterval <= 0 {
		c.Workflow.CompletionPollInterval = defaults.Workflow.CompletionPollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaults.Workflow.ErrorRetryInterval
	}
	if c.Outputs.ThumbnailMaxDimension <= 0 {
		c.Outputs.ThumbnailMaxDimension = defaults.Outputs.ThumbnailMaxDimension
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return c.Validate()
}

// Validate checks configuration consistency without mutating it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StoreRoot) == "" {
		return fmt.Errorf("config: paths.store_root must be set")
	}
	if strings.TrimSpace(c.Ingest.Bucket) == "" {
		return fmt.Errorf("config: ingest.bucket must be set")
	}
	if c.Ingest.InputRootPath == c.Ingest.OutputsRootPath {
		return fmt.Errorf("config: ingest input and outputs root paths must differ")
	}
	if c.Inference.MinModerationConfidence < 0 || c.Inference.MinModerationConfidence > 100 {
		return fmt.Errorf("config: inference.min_moderation_confidence must be between 0 and 100")
	}
	if c.Inference.MinKeywordConfidence < 0 || c.Inference.MinKeywordConfidence > 100 {
		return fmt.Errorf("config: inference.min_keyword_confidence must be between 0 and 100")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Clean(path)
}
