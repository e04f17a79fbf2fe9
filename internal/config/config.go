package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	StoreDir  string `toml:"store_dir"`
	ReportDir string `toml:"report_dir"`
}

// Compare contains the tunable policy constants for one comparison run.
type Compare struct {
	// FingerprintWindowSeconds buckets message timestamps before hashing so
	// cross-device clock skew does not split identical messages.
	FingerprintWindowSeconds int `toml:"fingerprint_window_seconds"`

	// TimelineMatchWindowSeconds is the bucket size used when pairing events
	// across devices.
	TimelineMatchWindowSeconds int `toml:"timeline_match_window_seconds"`
	// TimelineSimilarityThreshold is the content similarity two same-window
	// events must exceed to be linked.
	TimelineSimilarityThreshold float64 `toml:"timeline_similarity_threshold"`

	// GapThresholdMinutes is the minimum silence flagged as a gap.
	GapThresholdMinutes int `toml:"gap_threshold_minutes"`
	// GapMediumHours / GapHighHours escalate gaps that overlap active hours.
	GapMediumHours int `toml:"gap_medium_hours"`
	GapHighHours   int `toml:"gap_high_hours"`
	// OvernightMediumHours escalates gaps that fall outside active hours.
	OvernightMediumHours int `toml:"overnight_medium_hours"`
	// ActiveHoursStart/End bound the daily window in which silence is
	// suspicious (24h clock, start inclusive, end exclusive).
	ActiveHoursStart int `toml:"active_hours_start"`
	ActiveHoursEnd   int `toml:"active_hours_end"`

	// EditSimilarityFloor/Ceiling bound the band (exclusive on both ends)
	// within which two same-thread messages are reported as an edit. Below
	// the floor they are unrelated; at or above the ceiling they are the
	// same message.
	EditSimilarityFloor   float64 `toml:"edit_similarity_floor"`
	EditSimilarityCeiling float64 `toml:"edit_similarity_ceiling"`

	// ScreenshotCandidateThreshold is the minimum similarity for an original
	// message to count as the screenshot's source candidate.
	ScreenshotCandidateThreshold float64 `toml:"screenshot_candidate_threshold"`
	// ScreenshotAuthenticThreshold is the similarity a screenshot must exceed
	// (with zero word discrepancies) to be reported authentic.
	ScreenshotAuthenticThreshold float64 `toml:"screenshot_authentic_threshold"`
	// ScreenshotCriticalConfidence and ScreenshotMaxWordDiscrepancies tier a
	// mismatch up to critical severity.
	ScreenshotCriticalConfidence   float64 `toml:"screenshot_critical_confidence"`
	ScreenshotMaxWordDiscrepancies int     `toml:"screenshot_max_word_discrepancies"`

	// DeletedRecencyDays escalates one-sided messages newer than this.
	DeletedRecencyDays int `toml:"deleted_recency_days"`
	// EscalationKeywords escalate one-sided messages to high severity.
	EscalationKeywords []string `toml:"escalation_keywords"`

	// MaxContactOverlaps / MaxThreadMatches cap the per-item lists embedded
	// in the serialized report; full counts are always retained.
	MaxContactOverlaps int `toml:"max_contact_overlaps"`
	MaxThreadMatches   int `toml:"max_thread_matches"`
}

// OCR contains configuration for the tesseract text extraction client.
type OCR struct {
	Binary         string `toml:"binary"`
	Languages      string `toml:"languages"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxConcurrent  int    `toml:"max_concurrent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for crosscheck.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Compare Compare `toml:"compare"`
	OCR     OCR     `toml:"ocr"`
	Logging Logging `toml:"logging"`
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/crosscheck/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The second return is the resolved
// path; the third reports whether a file actually existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StoreDir, err = ExpandPath(c.Paths.StoreDir); err != nil {
		return fmt.Errorf("paths.store_dir: %w", err)
	}
	if c.Paths.ReportDir, err = ExpandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.OCR.Binary = strings.TrimSpace(c.OCR.Binary)
	if c.OCR.Binary == "" {
		c.OCR.Binary = defaultOCRBinary
	}
	c.OCR.Languages = strings.TrimSpace(c.OCR.Languages)
	if c.OCR.Languages == "" {
		c.OCR.Languages = defaultOCRLanguages
	}

	if len(c.Compare.EscalationKeywords) == 0 {
		c.Compare.EscalationKeywords = defaultEscalationKeywords()
	}
	for i, keyword := range c.Compare.EscalationKeywords {
		c.Compare.EscalationKeywords[i] = strings.ToLower(strings.TrimSpace(keyword))
	}
	return nil
}

// EnsureDirectories creates the directories the CLI writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StoreDir, c.Paths.ReportDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory and returns
// an absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	abs, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return abs, nil
}
