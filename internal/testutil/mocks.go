// --- START OF FINAL REVISED FILE internal/testutil/mocks.go ---
// Package testutil provides mock implementations for interfaces defined in the
// code-transformer core library (pkg/transformer and subpackages). These mocks
// facilitate unit testing by isolating components.
package testutil

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/stackvity/code-transformer/pkg/transformer"
	"github.com/stackvity/code-transformer/pkg/transformer/prompt"
	"github.com/stretchr/testify/mock"
)

// MockModelClient provides a mock implementation of the model.Client interface.
// Configure expectations with .On("Stream", ctx, prompt).Return(fragments []string, err error).
// The fragments are yielded in order; a non-nil err is yielded after them.
type MockModelClient struct {
	mock.Mock
}

// Stream mocks the Stream method.
func (m *MockModelClient) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	args := m.Called(ctx, prompt)
	fragments, _ := args.Get(0).([]string)
	streamErr := args.Error(1)
	return func(yield func(string, error) bool) {
		for _, f := range fragments {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}
}

// MockLanguageDetector provides a mock implementation of the language.Detector interface.
type MockLanguageDetector struct {
	mock.Mock
}

// Detect mocks the Detect method.
func (m *MockLanguageDetector) Detect(content string, fileName string) string {
	args := m.Called(content, fileName)
	return args.String(0)
}

// MockPromptBuilder provides a mock implementation of the prompt.Builder interface.
type MockPromptBuilder struct {
	mock.Mock
}

// Build mocks the Build method.
func (m *MockPromptBuilder) Build(data prompt.Data) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

// BuildSimple mocks the BuildSimple method.
func (m *MockPromptBuilder) BuildSimple(data prompt.Data) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

// System mocks the System method.
func (m *MockPromptBuilder) System() string {
	args := m.Called()
	return args.String(0)
}

// MockHooks provides a mock implementation of the transformer.Hooks interface.
// Configure expectations using testify/mock methods (e.g., .On("OnFileStatusUpdate", ...).Return(...)).
// See transformer.Hooks for the interface contract and thread-safety requirements.
type MockHooks struct {
	mock.Mock
}

// OnFragment mocks the OnFragment method.
func (m *MockHooks) OnFragment(requestID string, fragment string) error {
	args := m.Called(requestID, fragment)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status transformer.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report transformer.BatchReport) error {
	args := m.Called(report)
	return args.Error(0)
}

// RecordingHooks is a thread-safe transformer.Hooks that records every call.
type RecordingHooks struct {
	mu        sync.Mutex
	Fragments []string
	Statuses  map[string][]transformer.Status
	Reports   []transformer.BatchReport
}

// NewRecordingHooks creates an empty RecordingHooks.
func NewRecordingHooks() *RecordingHooks {
	return &RecordingHooks{Statuses: make(map[string][]transformer.Status)}
}

// OnFragment implements transformer.Hooks.
func (h *RecordingHooks) OnFragment(_ string, fragment string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Fragments = append(h.Fragments, fragment)
	return nil
}

// OnFileStatusUpdate implements transformer.Hooks.
func (h *RecordingHooks) OnFileStatusUpdate(path string, status transformer.Status, _ string, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Statuses[path] = append(h.Statuses[path], status)
	return nil
}

// OnRunComplete implements transformer.Hooks.
func (h *RecordingHooks) OnRunComplete(report transformer.BatchReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Reports = append(h.Reports, report)
	return nil
}

// LastStatus returns the most recent status recorded for path.
func (h *RecordingHooks) LastStatus(path string) transformer.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.Statuses[path]
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// --- END OF FINAL REVISED FILE internal/testutil/mocks.go ---
