// --- START OF NEW FILE pkg/transformer/batch.go ---
package transformer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stackvity/code-transformer/pkg/transformer/archive"
	"github.com/stackvity/code-transformer/pkg/transformer/language"
	"github.com/stackvity/code-transformer/pkg/util"
)

// BatchRequest describes one archive transformation.
type BatchRequest struct {
	ArchivePath    string
	TargetLanguage string
	Mode           Mode
	Instructions   string
	// OutputRoot overrides Options.Batch.OutputRoot.
	OutputRoot string
}

// batchJob is one archive entry scheduled for transformation.
type batchJob struct {
	file    archive.File
	source  string
	outPath string
}

// TransformArchive extracts a zip archive into a fresh run directory,
// transforms every eligible file concurrently and zips the results.
//
// Per-file failures are collected in the report. With OnErrorStop the first
// failure cancels the remaining work and is returned wrapped; the output
// archive is then not created. The returned report is always populated,
// also when an error is returned after extraction started.
func (t *Transformer) TransformArchive(ctx context.Context, req BatchRequest) (BatchReport, error) {
	target := strings.TrimSpace(req.TargetLanguage)
	if strings.TrimSpace(req.ArchivePath) == "" {
		return BatchReport{}, fmt.Errorf("%w: archive path is empty", ErrInvalidRequest)
	}
	if target == "" {
		return BatchReport{}, fmt.Errorf("%w: target language is empty", ErrInvalidRequest)
	}
	rawMode := string(req.Mode)
	if rawMode == "" {
		rawMode = string(t.opts.Mode)
	}
	mode, err := ParseMode(rawMode)
	if err != nil {
		return BatchReport{}, err
	}
	if t.client == nil {
		return BatchReport{}, ErrMissingCollaborator
	}

	root := req.OutputRoot
	if root == "" {
		root = t.opts.Batch.OutputRoot
	}
	if root == "" {
		root = DefaultOutputRoot
	}
	concurrency := t.opts.Batch.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	stopOnError := t.opts.Batch.OnErrorMode == OnErrorStop

	start := t.now()
	logger := t.logger.With(slog.String("archive", req.ArchivePath))
	aggregator := newReportAggregator()
	summary := BatchSummary{
		ArchivePath:    req.ArchivePath,
		TargetLanguage: target,
		Mode:           mode,
		ProfileUsed:    t.opts.ProfileName,
		ConfigFilePath: t.opts.ConfigFilePath,
		Concurrency:    concurrency,
	}

	finish := func(fatal bool) BatchReport {
		summary.FatalErrorOccurred = fatal
		report := aggregator.report(summary, start, t.now())
		logger.Info("Archive transformation finished",
			slog.Int("processed", report.Summary.ProcessedCount),
			slog.Int("skipped", report.Summary.SkippedCount),
			slog.Int("errors", report.Summary.ErrorCount),
			slog.Bool("fatalErrorOccurred", fatal))
		if hookErr := t.hooks.OnRunComplete(report); hookErr != nil {
			logger.Warn("OnRunComplete hook returned an error", slog.String("error", hookErr.Error()))
		}
		return report
	}

	rd, err := archive.NewRunDir(root, start)
	if err != nil {
		return BatchReport{}, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	summary.RunDir = rd.Root

	extractor := &archive.Extractor{Decoder: t.decoder, MaxFileSize: t.opts.Batch.MaxFileSizeMB << 20}
	files, err := extractor.Extract(req.ArchivePath, rd.Source)
	if err != nil {
		logger.Error("Archive extraction failed", slog.String("error", err.Error()))
		return finish(true), fmt.Errorf("%w: %w", ErrArchive, err)
	}
	summary.TotalFiles = len(files)
	logger.Info("Archive extracted", slog.Int("files", len(files)), slog.String("runDir", rd.Root))

	jobs := t.planBatch(files, target, mode, aggregator)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return t.runBatchJob(gctx, job, target, mode, req.Instructions, rd.Transformed, stopOnError, aggregator)
		})
	}
	groupErr := g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Info("Archive transformation cancelled", slog.String("reason", ctxErr.Error()))
		return finish(true), ctxErr
	}
	if groupErr != nil {
		firstFatal := aggregator.firstFatalError()
		if firstFatal == nil {
			firstFatal = groupErr
		}
		return finish(true), fmt.Errorf("archive transformation stopped: %w", firstFatal)
	}

	if err := archive.Zip(rd.Transformed, rd.ArchivePath); err != nil {
		return finish(true), fmt.Errorf("%w: %w", ErrArchive, err)
	}
	summary.OutputArchive = rd.ArchivePath
	return finish(false), nil
}

// planBatch classifies extracted files in archive order, recording skips and
// assigning each remaining file a unique output path.
func (t *Transformer) planBatch(files []archive.File, target string, mode Mode, aggregator *reportAggregator) []batchJob {
	skip := func(rel, reason, details string) {
		aggregator.addSkipped(SkippedInfo{Path: rel, Reason: reason, Details: details})
		t.fileStatus(rel, StatusSkipped, reason, 0)
	}

	taken := make(map[string]bool, len(files))
	var jobs []batchJob
	for _, f := range files {
		if pattern, ignored := util.MatchesIgnore(t.opts.Batch.IgnorePatterns, f.RelPath); ignored {
			skip(f.RelPath, SkipReasonIgnored, "Matched pattern: "+pattern)
			continue
		}
		if f.Content == nil {
			skip(f.RelPath, SkipReasonBinary, "binary, undecodable or above the size limit")
			continue
		}
		if strings.TrimSpace(*f.Content) == "" {
			skip(f.RelPath, SkipReasonEmpty, "")
			continue
		}

		source := t.detector.Detect("", f.RelPath)
		if source == language.Unknown {
			if !t.opts.Batch.IncludeUnknown {
				skip(f.RelPath, SkipReasonUnknownLanguage, "no language for extension "+strconv.Quote(f.Ext))
				continue
			}
			source = ""
		}
		if mode == ModeTranslate && strings.EqualFold(source, target) {
			skip(f.RelPath, SkipReasonSameLanguage, source)
			continue
		}

		jobs = append(jobs, batchJob{
			file:    f,
			source:  source,
			outPath: uniqueOutputPath(taken, f.RelPath, target),
		})
		t.fileStatus(f.RelPath, StatusPending, "", 0)
	}
	return jobs
}

// uniqueOutputPath places the suggested filename next to rel and appends
// _1, _2, ... to the stem when an earlier file already claimed the name.
func uniqueOutputPath(taken map[string]bool, rel, target string) string {
	dir := path.Dir(rel)
	name := SuggestFileName(path.Base(rel), target)
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := path.Join(dir, name)
	for i := 1; taken[candidate]; i++ {
		candidate = path.Join(dir, stem+"_"+strconv.Itoa(i)+ext)
	}
	taken[candidate] = true
	return candidate
}

// runBatchJob transforms and writes one file. It returns a non-nil error
// only when the failure must stop the run.
func (t *Transformer) runBatchJob(ctx context.Context, job batchJob, target string, mode Mode, instructions, outDir string, stopOnError bool, aggregator *reportAggregator) error {
	rel := job.file.RelPath
	jobStart := t.now()
	t.fileStatus(rel, StatusProcessing, "", 0)

	fail := func(err error, fatal bool, warning bool) error {
		elapsed := t.now().Sub(jobStart)
		aggregator.addError(ErrorInfo{Path: rel, Error: err.Error(), IsFatal: fatal}, warning)
		t.fileStatus(rel, StatusFailed, err.Error(), elapsed)
		t.logger.Warn("File transformation failed", slog.String("path", rel), slog.String("error", err.Error()))
		if fatal {
			return err
		}
		return nil
	}

	result, err := t.Transform(ctx, Request{
		Code:           *job.file.Content,
		TargetLanguage: target,
		SourceLanguage: job.source,
		Mode:           mode,
		Instructions:   instructions,
		FileName:       rel,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Cancelled by a sibling failure or the caller; not this file's fault.
			t.fileStatus(rel, StatusFailed, err.Error(), t.now().Sub(jobStart))
			return err
		}
		return fail(err, stopOnError, false)
	}
	if result.ExtractionFailed() {
		return fail(errors.New("model reply contained no code block"), false, true)
	}

	if err := archive.WriteFiles(outDir, []archive.OutputFile{{RelPath: job.outPath, Code: result.TransformedCode}}); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrWriteFailed, err), stopOnError, false)
	}

	elapsed := t.now().Sub(jobStart)
	aggregator.addProcessed(FileInfo{
		Path:           rel,
		OutputPath:     job.outPath,
		SourceLanguage: result.SourceLanguage,
		TargetLanguage: result.TargetLanguage,
		SizeBytes:      int64(len(*job.file.Content)),
		DurationMs:     elapsed.Milliseconds(),
		Explanation:    result.Explanation,
	})
	t.fileStatus(rel, StatusSuccess, job.outPath, elapsed)
	return nil
}

func (t *Transformer) fileStatus(rel string, status Status, message string, d time.Duration) {
	if err := t.hooks.OnFileStatusUpdate(rel, status, message, d); err != nil {
		t.logger.Debug("OnFileStatusUpdate hook failed", slog.String("path", rel), slog.String("hookError", err.Error()))
	}
}

// --- END OF NEW FILE pkg/transformer/batch.go ---
