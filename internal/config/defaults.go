package config

const (
	defaultLogDir    = "~/.local/share/crosscheck/logs"
	defaultStoreDir  = "~/.local/share/crosscheck/store"
	defaultReportDir = "~/.local/share/crosscheck/reports"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultOCRBinary     = "tesseract"
	defaultOCRLanguages  = "eng"
	defaultOCRTimeout    = 30
	defaultOCRConcurrent = 2

	defaultFingerprintWindowSeconds   = 5
	defaultTimelineMatchWindowSeconds = 10
	defaultGapThresholdMinutes        = 360
	defaultGapMediumHours             = 12
	defaultGapHighHours               = 24
	defaultOvernightMediumHours       = 48
	defaultActiveHoursStart           = 8
	defaultActiveHoursEnd             = 22
	defaultDeletedRecencyDays         = 7
	defaultMaxContactOverlaps         = 50
	defaultMaxThreadMatches           = 100
)

func defaultEscalationKeywords() []string {
	return []string{
		"threat", "threaten", "hurt", "kill", "afraid", "scared",
		"lawyer", "attorney", "court", "custody", "judge", "police",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			StoreDir:  defaultStoreDir,
			ReportDir: defaultReportDir,
		},
		Compare: Compare{
			FingerprintWindowSeconds:       defaultFingerprintWindowSeconds,
			TimelineMatchWindowSeconds:     defaultTimelineMatchWindowSeconds,
			TimelineSimilarityThreshold:    0.9,
			GapThresholdMinutes:            defaultGapThresholdMinutes,
			GapMediumHours:                 defaultGapMediumHours,
			GapHighHours:                   defaultGapHighHours,
			OvernightMediumHours:           defaultOvernightMediumHours,
			ActiveHoursStart:               defaultActiveHoursStart,
			ActiveHoursEnd:                 defaultActiveHoursEnd,
			EditSimilarityFloor:            0.5,
			EditSimilarityCeiling:          0.99,
			ScreenshotCandidateThreshold:   0.7,
			ScreenshotAuthenticThreshold:   0.95,
			ScreenshotCriticalConfidence:   0.5,
			ScreenshotMaxWordDiscrepancies: 3,
			DeletedRecencyDays:             defaultDeletedRecencyDays,
			EscalationKeywords:             defaultEscalationKeywords(),
			MaxContactOverlaps:             defaultMaxContactOverlaps,
			MaxThreadMatches:               defaultMaxThreadMatches,
		},
		OCR: OCR{
			Binary:         defaultOCRBinary,
			Languages:      defaultOCRLanguages,
			TimeoutSeconds: defaultOCRTimeout,
			MaxConcurrent:  defaultOCRConcurrent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
