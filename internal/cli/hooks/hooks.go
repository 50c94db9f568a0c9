// --- START OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
package hooks

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stackvity/code-transformer/pkg/transformer"
)

// --- TUI Message Structs ---

// FileStatusUpdateMsg signals a change in a file's processing status.
type FileStatusUpdateMsg struct {
	Path     string
	Status   transformer.Status
	Message  string
	Duration time.Duration
}

// RunCompleteMsg signals the completion of an archive run.
type RunCompleteMsg struct{ Report transformer.BatchReport }

// --- Hook Implementation ---

// CLIHooks implements the transformer.Hooks interface, bridging library
// events to the CLI's UI layer (TUI, logger, streamed output).
type CLIHooks struct {
	logger         *slog.Logger
	tuiEnabled     bool
	verboseEnabled bool
	tuiProgram     TUIProgram
	fragments      io.Writer  // Receives streamed model output; nil discards it
	mu             sync.Mutex // Serializes writes to fragments
}

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
type TUIProgram interface {
	Send(msg tea.Msg)
}

var _ TUIProgram = (*tea.Program)(nil)

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

// Send implements TUIProgram.
func (n *NoOpTUIProgram) Send(msg tea.Msg) {}

// NewCLIHooks creates a new CLIHooks instance. Pass nil for tuiProg when no
// TUI runs, and nil for fragments to drop streamed output.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verboseEnabled bool, tuiProg TUIProgram, fragments io.Writer) transformer.Hooks {
	if tuiProg == nil {
		tuiProg = &NoOpTUIProgram{}
	}
	return &CLIHooks{
		logger:         logger,
		tuiEnabled:     tuiEnabled,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		fragments:      fragments,
	}
}

// OnFragment copies each streamed fragment to the configured writer.
func (h *CLIHooks) OnFragment(requestID string, fragment string) error {
	if h.fragments == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.fragments, fragment)
	return err
}

// OnFileStatusUpdate handles events when a file's processing status changes.
// This method MUST be thread-safe.
func (h *CLIHooks) OnFileStatusUpdate(path string, status transformer.Status, message string, duration time.Duration) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(FileStatusUpdateMsg{
			Path:     path,
			Status:   status,
			Message:  message,
			Duration: duration,
		})
		return nil
	}

	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "File status updated"
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			logKey := "message"
			if status == transformer.StatusFailed {
				logKey = "error"
			}
			attrs = append(attrs, slog.String(logKey, message))
		}
		switch status {
		case transformer.StatusSuccess, transformer.StatusSkipped:
			logLevel = slog.LevelInfo
		case transformer.StatusFailed:
			logLevel = slog.LevelError
			logMsg = "File transformation failed"
		}
		h.logger.Log(context.Background(), logLevel, logMsg, attrs...)
		return nil
	}

	// Quiet mode: only failures and completions are worth a line.
	switch status {
	case transformer.StatusFailed:
		h.logger.Error("File transformation failed", "path", path, "error", message)
	case transformer.StatusSuccess:
		h.logger.Info("File transformed", "path", path, "output", message)
	}
	return nil
}

// OnRunComplete forwards the final report to the TUI. Text summaries are
// printed by the command once the run returns.
func (h *CLIHooks) OnRunComplete(report transformer.BatchReport) error {
	if h.tuiEnabled {
		h.tuiProgram.Send(RunCompleteMsg{Report: report})
	}
	return nil
}

// --- END OF FINAL REVISED FILE internal/cli/hooks/hooks.go ---
