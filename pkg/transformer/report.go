// --- START OF FINAL REVISED FILE pkg/transformer/report.go ---
package transformer

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// BatchReport summarizes the result of a single TransformArchive run.
type BatchReport struct {
	Summary        BatchSummary  `json:"summary" yaml:"summary"`
	ProcessedFiles []FileInfo    `json:"processedFiles" yaml:"processedFiles"`
	SkippedFiles   []SkippedInfo `json:"skippedFiles" yaml:"skippedFiles"`
	Errors         []ErrorInfo   `json:"errors" yaml:"errors"`
}

// BatchSummary contains aggregated statistics for a TransformArchive run.
type BatchSummary struct {
	ArchivePath        string    `json:"archivePath" yaml:"archivePath"`
	RunDir             string    `json:"runDir" yaml:"runDir"`
	OutputArchive      string    `json:"outputArchive,omitempty" yaml:"outputArchive,omitempty"`
	TargetLanguage     string    `json:"targetLanguage" yaml:"targetLanguage"`
	Mode               Mode      `json:"mode" yaml:"mode"`
	ProfileUsed        string    `json:"profileUsed,omitempty" yaml:"profileUsed,omitempty"`
	ConfigFilePath     string    `json:"configFilePath,omitempty" yaml:"configFilePath,omitempty"`
	TotalFiles         int       `json:"totalFiles" yaml:"totalFiles"`
	ProcessedCount     int       `json:"processedCount" yaml:"processedCount"`
	SkippedCount       int       `json:"skippedCount" yaml:"skippedCount"`
	WarningCount       int       `json:"warningCount" yaml:"warningCount"`
	ErrorCount         int       `json:"errorCount" yaml:"errorCount"`
	FatalErrorOccurred bool      `json:"fatalError" yaml:"fatalError"`
	DurationSeconds    float64   `json:"durationSeconds" yaml:"durationSeconds"`
	Concurrency        int       `json:"concurrency" yaml:"concurrency"`
	Timestamp          time.Time `json:"timestamp" yaml:"timestamp"`
	SchemaVersion      string    `json:"schemaVersion,omitempty" yaml:"schemaVersion,omitempty"`
}

// FileInfo details a single archive entry that was transformed and written.
type FileInfo struct {
	Path           string `json:"path" yaml:"path"`
	OutputPath     string `json:"outputPath" yaml:"outputPath"`
	SourceLanguage string `json:"sourceLanguage" yaml:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage" yaml:"targetLanguage"`
	SizeBytes      int64  `json:"sizeBytes" yaml:"sizeBytes"`
	DurationMs     int64  `json:"durationMs" yaml:"durationMs"`
	Explanation    string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// SkippedInfo details an archive entry that was intentionally not transformed.
type SkippedInfo struct {
	Path    string `json:"path" yaml:"path"`
	Reason  string `json:"reason" yaml:"reason"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

// ErrorInfo details an error encountered while transforming one archive entry.
// IsFatal is set when the error stopped the run (onError=stop).
type ErrorInfo struct {
	Path    string `json:"path" yaml:"path"`
	Error   string `json:"error" yaml:"error"`
	IsFatal bool   `json:"isFatal" yaml:"isFatal"`
}

// reportAggregator collects per-file results from concurrent batch workers.
type reportAggregator struct {
	mu           sync.Mutex
	processed    []FileInfo
	skipped      []SkippedInfo
	errors       []ErrorInfo
	warningCount int
}

func newReportAggregator() *reportAggregator { // minimal comment
	return &reportAggregator{
		processed: make([]FileInfo, 0, 64),
		skipped:   make([]SkippedInfo, 0, 16),
		errors:    make([]ErrorInfo, 0, 8),
	}
}

func (a *reportAggregator) addProcessed(info FileInfo) {
	a.mu.Lock()
	a.processed = append(a.processed, info)
	a.mu.Unlock()
}

func (a *reportAggregator) addSkipped(info SkippedInfo) {
	a.mu.Lock()
	a.skipped = append(a.skipped, info)
	a.mu.Unlock()
}

// addError records a per-file error. Extraction failures count as warnings
// as well, since the model replied but without usable code.
func (a *reportAggregator) addError(info ErrorInfo, warning bool) {
	a.mu.Lock()
	a.errors = append(a.errors, info)
	if warning {
		a.warningCount++
	}
	a.mu.Unlock()
}

// firstFatalError returns the first error marked fatal, or nil.
func (a *reportAggregator) firstFatalError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.errors {
		if e.IsFatal {
			return fmt.Errorf("fatal error transforming file '%s': %s", e.Path, e.Error)
		}
	}
	return nil
}

// report compiles the final BatchReport. Entries are sorted by path so the
// report does not depend on worker scheduling.
func (a *reportAggregator) report(summary BatchSummary, start, end time.Time) BatchReport {
	a.mu.Lock()
	processed := append([]FileInfo(nil), a.processed...)
	skipped := append([]SkippedInfo(nil), a.skipped...)
	errs := append([]ErrorInfo(nil), a.errors...)
	warnings := a.warningCount
	a.mu.Unlock()

	sort.Slice(processed, func(i, j int) bool { return processed[i].Path < processed[j].Path })
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })

	summary.ProcessedCount = len(processed)
	summary.SkippedCount = len(skipped)
	summary.ErrorCount = len(errs)
	summary.WarningCount = warnings
	summary.DurationSeconds = end.Sub(start).Seconds()
	summary.Timestamp = end.UTC()
	summary.SchemaVersion = ReportSchemaVersion

	return BatchReport{
		Summary:        summary,
		ProcessedFiles: processed,
		SkippedFiles:   skipped,
		Errors:         errs,
	}
}

// --- END OF FINAL REVISED FILE pkg/transformer/report.go ---
