// --- START OF FINAL REVISED FILE internal/cli/config/config.go ---
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/code-transformer/pkg/transformer"
	"github.com/stackvity/code-transformer/pkg/transformer/cache"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stackvity/code-transformer/pkg/transformer/model/providers"
)

const (
	EnvPrefix         = "CODETRANSFORMER"
	DefaultConfigName = "code-transformer"
)

// flagBindings maps configuration keys to the command-line flags that
// override them.
var flagBindings = map[string]string{
	"verbose":              "verbose",
	"outputFormat":         "output-format",
	"mode":                 "mode",
	"detector":             "detector",
	"cleanDocument":        "clean",
	"defaultEncoding":      "encoding",
	"promptTemplate":       "prompt-template",
	"model.provider":       "provider",
	"model.name":           "model",
	"model.baseURL":        "base-url",
	"model.maxTokens":      "max-tokens",
	"model.temperature":    "temperature",
	"model.timeout":        "timeout",
	"cache.enabled":        "cache",
	"cache.path":           "cache-path",
	"batch.concurrency":    "concurrency",
	"batch.onError":        "on-error",
	"batch.ignore":         "ignore",
	"batch.includeUnknown": "include-unknown",
	"batch.outputRoot":     "output-root",
	"watch.debounce":       "watch-debounce",
}

// apiKeyEnv lists the conventional environment variables consulted, in
// order, when no API key is configured for a provider.
var apiKeyEnv = map[string][]string{
	model.ProviderAnthropic:  {"ANTHROPIC_API_KEY"},
	model.ProviderOpenRouter: {"OPENROUTER_API_KEY"},
	model.ProviderGemini:     {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// RegisterFlags defines every flag that LoadAndValidate binds onto flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (default searches ./code-transformer.yaml, ~/.config/code-transformer/, ~/.code-transformer/)")
	flags.String("profile", "", "Configuration profile to apply")
	flags.BoolP("verbose", "v", false, "Enable verbose (debug) logging")
	flags.Bool("no-tui", false, "Disable the interactive progress view")
	flags.String("output-format", string(transformer.DefaultOutputFormat), "Output format: text, json or yaml")
	flags.String("mode", string(transformer.DefaultMode), "Transformation mode: translate or modernize")
	flags.String("detector", string(transformer.DefaultDetector), "Language detector: rules or enry")
	flags.Bool("clean", transformer.DefaultCleanDocument, "Strip page headers and numbers from pasted documents")
	flags.String("encoding", "", "Fallback input encoding when detection is uncertain (e.g. windows-1252)")
	flags.String("prompt-template", "", "Custom full form prompt template file")
	flags.String("provider", transformer.DefaultProvider, "Model provider: anthropic, openrouter, ollama or gemini")
	flags.String("model", "", "Model name (provider default when empty)")
	flags.String("base-url", "", "Override the provider base URL")
	flags.Int("max-tokens", 0, "Maximum tokens in the model reply (provider default when 0)")
	flags.Float64("temperature", 0, "Sampling temperature")
	flags.Duration("timeout", transformer.DefaultModelTimeout, "Timeout for a single model request")
	flags.Bool("cache", transformer.DefaultCacheEnabled, "Cache model responses on disk")
	flags.String("cache-path", "", "Response cache file (default in the user cache directory)")
	flags.Int("concurrency", transformer.DefaultConcurrency, "Concurrent transformations in batch mode (0 = number of CPUs)")
	flags.String("on-error", string(transformer.DefaultOnErrorMode), "Batch behavior on file errors: continue or stop")
	flags.StringArray("ignore", []string{}, "Batch ignore pattern (repeatable)")
	flags.Bool("include-unknown", false, "Also transform batch files with unknown extensions")
	flags.String("output-root", transformer.DefaultOutputRoot, "Directory receiving batch run directories")
	flags.String("watch-debounce", transformer.DefaultWatchDebounceString, "Debounce for --watch")
}

// LoadAndValidate loads configuration from all sources (defaults, file,
// profile, env, flags), validates the merged configuration and sets up the
// logger. Returns the populated Options struct or an error.
func LoadAndValidate(cfgFile, profileName, appVersion string, verbose bool, flags *pflag.FlagSet) (transformer.Options, *slog.Logger, error) {
	var opts transformer.Options
	v := viper.New()

	// Temporary logger for errors raised before the final level is known.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		} else {
			tempLogger.Debug("User home directory unavailable; searching the working directory only", slog.String("error", err.Error()))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", used), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
	}

	// --- Apply Profile ---
	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		profile := v.Sub(profileKey)
		if profile == nil {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("profile '%s' not found in config file '%s'", profileName, configPath)
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		if err := v.MergeConfigMap(profile.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	for key, name := range flagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", name))
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			tempLogger.Error("Error binding flag", slog.String("flag", name), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", name, err)
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	// Extension keys contain the key delimiter, so read the raw map.
	opts.LanguageMappingsOverride = v.GetStringMapString("languageMappings")

	// Explicit boolean flags always win.
	if verbose {
		opts.Verbose = true
	}
	if flags.Changed("no-tui") {
		if noTui, _ := flags.GetBool("no-tui"); noTui {
			opts.TuiEnabled = false
		}
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	debounce, err := time.ParseDuration(opts.WatchConfig.Debounce)
	if err != nil {
		if flags.Changed("watch-debounce") {
			err = fmt.Errorf("%w: invalid watch debounce duration '%s': %w", transformer.ErrConfigValidation, opts.WatchConfig.Debounce, err)
			logger.Error(err.Error(), slog.String("key", "watch.debounce"))
			return opts, logger, err
		}
		logger.Warn("Could not parse watch.debounce string, using default",
			slog.String("value", opts.WatchConfig.Debounce),
			slog.Duration("default", transformer.DefaultWatchDebounceDuration))
		debounce = transformer.DefaultWatchDebounceDuration
	}
	if debounce < 0 {
		err = fmt.Errorf("%w: invalid negative watch debounce duration '%s' for key 'watch.debounce'", transformer.ErrConfigValidation, opts.WatchConfig.Debounce)
		logger.Error(err.Error())
		return opts, logger, err
	}
	opts.WatchDebounce = debounce

	if err := validateAndDeriveOptions(&opts, logger); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.String("provider", opts.Model.Provider),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	// --- Behavior & Control ---
	v.SetDefault("verbose", false)
	v.SetDefault("tuiEnabled", true)
	v.SetDefault("outputFormat", string(transformer.DefaultOutputFormat))
	v.SetDefault("mode", string(transformer.DefaultMode))

	// --- Model ---
	v.SetDefault("model.provider", transformer.DefaultProvider)
	v.SetDefault("model.name", "")
	v.SetDefault("model.baseURL", "")
	v.SetDefault("model.apiKey", "")
	v.SetDefault("model.maxTokens", 0)
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.timeout", transformer.DefaultModelTimeout)

	v.SetDefault("cache.enabled", transformer.DefaultCacheEnabled)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.format", cache.DefaultFormat)

	// --- Input Handling ---
	v.SetDefault("detector", string(transformer.DefaultDetector))
	v.SetDefault("languageMappings", map[string]string{})
	v.SetDefault("cleanDocument", transformer.DefaultCleanDocument)
	v.SetDefault("defaultEncoding", "")
	v.SetDefault("promptTemplate", "")

	// --- Workflow Features ---
	v.SetDefault("batch.concurrency", transformer.DefaultConcurrency)
	v.SetDefault("batch.onError", string(transformer.DefaultOnErrorMode))
	v.SetDefault("batch.ignore", []string{})
	v.SetDefault("batch.includeUnknown", false)
	v.SetDefault("batch.outputRoot", transformer.DefaultOutputRoot)
	v.SetDefault("batch.maxFileSizeMB", transformer.DefaultMaxFileSizeMB)
	v.SetDefault("watch.debounce", transformer.DefaultWatchDebounceString)
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions performs semantic validation on the populated
// Options struct and calculates derived fields. It wraps errors with
// transformer.ErrConfigValidation.
func validateAndDeriveOptions(opts *transformer.Options, logger *slog.Logger) error {
	fail := func(key, format string, args ...any) error {
		err := fmt.Errorf("%w: "+format, append([]any{transformer.ErrConfigValidation}, args...)...)
		logger.Error(err.Error(), slog.String("key", key))
		return err
	}

	// === Enum String Validations ===
	allowedOutputFormat := []transformer.OutputFormat{transformer.OutputFormatText, transformer.OutputFormatJSON, transformer.OutputFormatYAML}
	if !isValidEnumValue(opts.OutputFormat, allowedOutputFormat) {
		return fail("outputFormat", "invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: %v", opts.OutputFormat, allowedOutputFormat)
	}
	allowedOnError := []transformer.OnErrorMode{transformer.OnErrorContinue, transformer.OnErrorStop}
	if !isValidEnumValue(opts.Batch.OnErrorMode, allowedOnError) {
		return fail("batch.onError", "invalid value '%s' for key 'batch.onError' (flag --on-error). Allowed: %v", opts.Batch.OnErrorMode, allowedOnError)
	}
	allowedDetector := []transformer.DetectorKind{transformer.DetectorRules, transformer.DetectorEnry}
	if !isValidEnumValue(opts.Detector, allowedDetector) {
		return fail("detector", "invalid value '%s' for key 'detector' (flag --detector). Allowed: %v", opts.Detector, allowedDetector)
	}
	mode, err := transformer.ParseMode(string(opts.Mode))
	if err != nil {
		return fail("mode", "invalid value '%s' for key 'mode' (flag --mode)", opts.Mode)
	}
	opts.Mode = mode

	opts.Model.Provider = strings.ToLower(strings.TrimSpace(opts.Model.Provider))
	if known := providers.Default().Names(); !slices.Contains(known, opts.Model.Provider) {
		return fail("model.provider", "invalid value '%s' for key 'model.provider' (flag --provider). Allowed: %v", opts.Model.Provider, known)
	}
	allowedCacheFormat := []string{cache.FormatGob, cache.FormatJSON}
	if !isValidEnumValue(opts.Cache.Format, allowedCacheFormat) {
		return fail("cache.format", "invalid value '%s' for key 'cache.format'. Allowed: %v", opts.Cache.Format, allowedCacheFormat)
	}

	// === Numeric Range Validations ===
	if opts.Batch.Concurrency < 0 {
		return fail("batch.concurrency", "invalid value '%d' for key 'batch.concurrency' (flag --concurrency). Must be >= 0", opts.Batch.Concurrency)
	}
	if opts.Batch.MaxFileSizeMB < 0 {
		return fail("batch.maxFileSizeMB", "invalid value '%d' for key 'batch.maxFileSizeMB'. Must be >= 0", opts.Batch.MaxFileSizeMB)
	}
	if opts.Model.MaxTokens < 0 {
		return fail("model.maxTokens", "invalid value '%d' for key 'model.maxTokens' (flag --max-tokens). Must be >= 0", opts.Model.MaxTokens)
	}
	if opts.Model.Temperature < 0 || opts.Model.Temperature > 2 {
		return fail("model.temperature", "invalid value '%g' for key 'model.temperature' (flag --temperature). Must be between 0 and 2", opts.Model.Temperature)
	}
	if opts.Model.Timeout < 0 {
		return fail("model.timeout", "invalid negative value '%s' for key 'model.timeout'", opts.Model.Timeout)
	}

	// === Paths ===
	if opts.PromptTemplatePath != "" {
		abs, err := filepath.Abs(opts.PromptTemplatePath)
		if err != nil {
			return fail("promptTemplate", "cannot resolve prompt template path '%s': %w", opts.PromptTemplatePath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fail("promptTemplate", "prompt template '%s' does not exist or cannot be accessed: %w", abs, err)
		}
		if info.IsDir() {
			return fail("promptTemplate", "prompt template path '%s' is a directory, not a file", abs)
		}
		opts.PromptTemplatePath = abs
	}
	if opts.Cache.Enabled && opts.Cache.Path == "" {
		opts.Cache.Path = defaultCachePath()
		logger.Debug("cache.path not set, defaulting", slog.String("path", opts.Cache.Path))
	}

	// === Derived Values ===
	if opts.Model.APIKey == "" {
		for _, name := range apiKeyEnv[opts.Model.Provider] {
			if key := os.Getenv(name); key != "" {
				opts.Model.APIKey = key
				logger.Debug("Using API key from environment", slog.String("variable", name))
				break
			}
		}
	}
	if opts.Verbose && opts.TuiEnabled {
		logger.Debug("Verbose mode enabled, TUI disabled")
		opts.TuiEnabled = false
	}

	logger.Debug("Final derived settings validated",
		slog.String("mode", string(opts.Mode)),
		slog.String("detector", string(opts.Detector)),
		slog.Int("concurrency", opts.Batch.Concurrency),
		slog.Bool("cacheEnabled", opts.Cache.Enabled),
		slog.Duration("watchDebounceDuration", opts.WatchDebounce),
		slog.Bool("tuiEnabledEffective", opts.TuiEnabled),
	)
	return nil
}

// defaultCachePath places the cache under the user cache directory, or the
// working directory when none is available.
func defaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, DefaultConfigName, cache.FileName)
	}
	return cache.FileName
}

// --- END OF FINAL REVISED FILE internal/cli/config/config.go ---
