// --- START OF FINAL REVISED FILE pkg/transformer/options.go ---
package transformer

import (
	"log/slog"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer/encoding"
	"github.com/stackvity/code-transformer/pkg/transformer/language"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/prompt"
)

// CacheConfig holds settings for the on-disk response cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Format  string `mapstructure:"format"`
}

// BatchConfig holds settings for archive transformations.
type BatchConfig struct {
	Concurrency    int         `mapstructure:"concurrency"`
	OnErrorMode    OnErrorMode `mapstructure:"onError"`
	IgnorePatterns []string    `mapstructure:"ignore"`
	IncludeUnknown bool        `mapstructure:"includeUnknown"`
	OutputRoot     string      `mapstructure:"outputRoot"`
	MaxFileSizeMB  int64       `mapstructure:"maxFileSizeMB"`
}

// WatchConfig holds settings related to watch mode.
type WatchConfig struct {
	Debounce string `mapstructure:"debounce"`
}

// Hooks defines callbacks for progress during transformations.
// Implementations MUST be thread-safe as methods may be called concurrently
// from batch workers.
type Hooks interface {
	// OnFragment receives each streamed model fragment in emission order.
	OnFragment(requestID string, fragment string) error
	// OnFileStatusUpdate reports the state of one file in a batch run.
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	// OnRunComplete receives the final report of a batch run.
	OnRunComplete(report BatchReport) error
}

// NoOpHooks provides a default, do-nothing implementation of Hooks.
type NoOpHooks struct{}

// OnFragment implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFragment(requestID string, fragment string) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error { // minimal comment
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report BatchReport) error { return nil }

// Options holds all configuration for a Transformer.
type Options struct {
	// --- Application Info ---
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"`
	ProfileName    string `mapstructure:"-"`

	// --- Behavior & Control ---
	Verbose      bool         `mapstructure:"verbose"`
	TuiEnabled   bool         `mapstructure:"tuiEnabled"`
	OutputFormat OutputFormat `mapstructure:"outputFormat"`
	Mode         Mode         `mapstructure:"mode"`

	// --- Model ---
	Model model.Config `mapstructure:"model"`
	Cache CacheConfig  `mapstructure:"cache"`

	// --- Input Handling ---
	Detector                 DetectorKind      `mapstructure:"detector"`
	LanguageMappingsOverride map[string]string `mapstructure:"languageMappings"`
	CleanDocument            bool              `mapstructure:"cleanDocument"`
	DefaultEncoding          string            `mapstructure:"defaultEncoding"`
	PromptTemplatePath       string            `mapstructure:"promptTemplate"`

	// --- Workflow Features ---
	Batch         BatchConfig   `mapstructure:"batch"`
	WatchConfig   WatchConfig   `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"-"` // Derived from WatchConfig.Debounce

	// --- Injected Dependencies ---
	EventHooks       Hooks             `mapstructure:"-"` // Optional: defaults to NoOpHooks
	Logger           slog.Handler      `mapstructure:"-"` // Optional: defaults to a discarding handler
	ModelClient      model.Client      `mapstructure:"-"` // Required for Transform calls
	LanguageDetector language.Detector `mapstructure:"-"` // Optional: built from Detector
	PromptBuilder    prompt.Builder    `mapstructure:"-"` // Optional: built from PromptTemplatePath
	Decoder          encoding.Decoder  `mapstructure:"-"` // Optional: built from DefaultEncoding
	Clock            func() time.Time  `mapstructure:"-"` // Optional: defaults to time.Now
}

// --- END OF FINAL REVISED FILE pkg/transformer/options.go ---
