package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCompare(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCompare() error {
	cmp := c.Compare
	if cmp.FingerprintWindowSeconds < 1 || cmp.FingerprintWindowSeconds > 60 {
		return errors.New("compare.fingerprint_window_seconds must be between 1 and 60")
	}
	if cmp.TimelineMatchWindowSeconds <= 0 {
		return errors.New("compare.timeline_match_window_seconds must be positive")
	}
	if cmp.GapThresholdMinutes <= 0 {
		return errors.New("compare.gap_threshold_minutes must be positive")
	}
	if cmp.GapHighHours <= cmp.GapMediumHours {
		return errors.New("compare.gap_high_hours must be greater than compare.gap_medium_hours")
	}
	if cmp.ActiveHoursStart < 0 || cmp.ActiveHoursStart > 23 {
		return errors.New("compare.active_hours_start must be between 0 and 23")
	}
	if cmp.ActiveHoursEnd <= cmp.ActiveHoursStart || cmp.ActiveHoursEnd > 24 {
		return errors.New("compare.active_hours_end must be after active_hours_start and at most 24")
	}
	for name, value := range map[string]float64{
		"compare.timeline_similarity_threshold":  cmp.TimelineSimilarityThreshold,
		"compare.edit_similarity_floor":          cmp.EditSimilarityFloor,
		"compare.edit_similarity_ceiling":        cmp.EditSimilarityCeiling,
		"compare.screenshot_candidate_threshold": cmp.ScreenshotCandidateThreshold,
		"compare.screenshot_authentic_threshold": cmp.ScreenshotAuthenticThreshold,
		"compare.screenshot_critical_confidence": cmp.ScreenshotCriticalConfidence,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if cmp.EditSimilarityCeiling <= cmp.EditSimilarityFloor {
		return errors.New("compare.edit_similarity_ceiling must be greater than compare.edit_similarity_floor")
	}
	if cmp.DeletedRecencyDays <= 0 {
		return errors.New("compare.deleted_recency_days must be positive")
	}
	if cmp.MaxContactOverlaps <= 0 || cmp.MaxThreadMatches <= 0 {
		return errors.New("compare report caps must be positive")
	}
	return nil
}

func (c *Config) validateOCR() error {
	if c.OCR.TimeoutSeconds <= 0 {
		return errors.New("ocr.timeout_seconds must be positive")
	}
	if c.OCR.MaxConcurrent <= 0 {
		return errors.New("ocr.max_concurrent must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
