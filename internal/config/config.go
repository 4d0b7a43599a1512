package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StoreRoot is the object store root; buckets are directories below it.
	StoreRoot string `toml:"store_root"`
	// DataDir holds the job-state database.
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	// WorkDir is scratch space for downloaded media during conversion stages.
	WorkDir string `toml:"work_dir"`
}

// Ingest describes where new media arrives and where processed outputs go.
type Ingest struct {
	Bucket          string `toml:"bucket"`
	InputRootPath   string `toml:"input_root_path"`
	OutputsRootPath string `toml:"outputs_root_path"`
}

// Inference contains configuration for the detection services.
type Inference struct {
	// Endpoint of the inference HTTP API. Empty selects the in-process
	// stub backend.
	Endpoint                string  `toml:"endpoint"`
	MinModerationConfidence float64 `toml:"min_moderation_confidence"`
	MinKeywordConfidence    float64 `toml:"min_keyword_confidence"`
	// ServiceRole is passed to async job starts so the service can publish
	// completion notifications on our behalf.
	ServiceRole    string `toml:"service_role"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Speech contains transcription and synthesis configuration.
type Speech struct {
	Endpoint string `toml:"endpoint"`
	VoiceID  string `toml:"voice_id"`
	// Transcription polling: initial interval, backoff ceiling, and total
	// wall-clock budget, all in seconds.
	TranscribePollInterval    int `toml:"transcribe_poll_interval"`
	TranscribePollMaxInterval int `toml:"transcribe_poll_max_interval"`
	TranscribePollBudget      int `toml:"transcribe_poll_budget"`
	RequestTimeout            int `toml:"request_timeout"`
}

// Outputs contains derived-artifact settings.
type Outputs struct {
	ThumbnailMaxDimension int `toml:"thumbnail_max_dimension"`
}

// Notifications contains the notification bus configuration.
type Notifications struct {
	Endpoint             string `toml:"endpoint"`
	AsyncCompletedTopic  string `toml:"async_completed_topic"`
	IngestCompletedTopic string `toml:"ingest_completed_topic"`
	RequestTimeout       int    `toml:"request_timeout"`
}

// Workflow contains daemon timing configuration, in seconds.
type Workflow struct {
	InboxPollInterval      int `toml:"inbox_poll_interval"`
	CompletionPollInterval int `toml:"completion_poll_interval"`
	ErrorRetryInterval     int `toml:"error_retry_interval"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the ingester.
//
// Sections by subsystem:
//   - Paths: object store root, database, log, and scratch directories
//   - Ingest: inbox bucket and input/output key roots
//   - Inference: moderation/label/celebrity detection thresholds and endpoint
//   - Speech: transcription polling and speech synthesis voice
//   - Outputs: thumbnail sizing
//   - Notifications: completion topics and bus endpoint
//   - Workflow: daemon polling intervals
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Ingest        Ingest        `toml:"ingest"`
	Inference     Inference     `toml:"inference"`
	Speech        Speech        `toml:"speech"`
	Outputs       Outputs       `toml:"outputs"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the expected location of the user config file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ingester", "config.toml"), nil
}

// Load reads configuration from path (or the default location when empty).
// A missing file is not an error; defaults are returned and the second
// return reports the resolved path while the third reports whether a file
// was actually read.
func Load(path string) (*Config, string, bool, error) {
	resolved := path
	if resolved == "" {
		var err error
		resolved, err = DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := cfg.Normalize(); err != nil {
				return nil, resolved, false, err
			}
			return &cfg, resolved, false, nil
		}
		return nil, resolved, false, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, resolved, true, err
	}
	return &cfg, resolved, true, nil
}

// WriteSample writes the annotated sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StoreRoot, c.Paths.DataDir, c.Paths.LogDir, c.Paths.WorkDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
