// --- START OF FINAL REVISED FILE pkg/transformer/constants.go ---
package transformer

import "time"

// Default values for configuration options. These seed the viper defaults
// in the CLI configuration loader.
const (
	// DefaultBaseName is the suggested filename base when no filename is known.
	DefaultBaseName = "transformed_code"
	// DefaultProvider is the model provider used when none is configured.
	DefaultProvider = "anthropic"
	// DefaultMode is the transformation mode when none is given.
	DefaultMode = ModeTranslate
	// DefaultDetector is the language detector implementation.
	DefaultDetector = DetectorRules
	// DefaultConcurrency is the number of concurrent batch transformations.
	// 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultOnErrorMode is the batch behavior on per-file failures.
	DefaultOnErrorMode = OnErrorContinue
	// DefaultOutputFormat is the CLI output format.
	DefaultOutputFormat = OutputFormatText
	// DefaultCacheEnabled is the default state of the response cache.
	DefaultCacheEnabled = false
	// DefaultCleanDocument is the default state of document clean-up.
	DefaultCleanDocument = false
	// DefaultMaxFileSizeMB bounds archive entries considered for transformation.
	DefaultMaxFileSizeMB = 10
	// DefaultOutputRoot is where batch runs are created.
	DefaultOutputRoot = ".code-transformer/output"
	// DefaultWatchDebounceString is the default debounce for watch mode.
	DefaultWatchDebounceString = "300ms"
	// DefaultWatchDebounceDuration is the parsed default debounce.
	DefaultWatchDebounceDuration = 300 * time.Millisecond
	// DefaultModelTimeout bounds a single model request.
	DefaultModelTimeout = 5 * time.Minute
)

// ReportSchemaVersion is the version of the JSON batch report structure.
const ReportSchemaVersion = "1.0"

// Skip reasons used in BatchReport.
const (
	SkipReasonBinary          = "binary_file"
	SkipReasonIgnored         = "ignored_pattern"
	SkipReasonUnknownLanguage = "unknown_language"
	SkipReasonSameLanguage    = "already_target_language"
	SkipReasonEmpty           = "empty_file"
)

// --- END OF FINAL REVISED FILE pkg/transformer/constants.go ---
