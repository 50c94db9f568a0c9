package transformer_test

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stackvity/code-transformer/internal/testutil"
	"github.com/stackvity/code-transformer/pkg/transformer"
	"github.com/stackvity/code-transformer/pkg/transformer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const jsReply = "**Transformed Code:**\n```javascript\nconsole.log(\"hi\");\n```\n\n**Explanation:**\nReplaced print with console.log.\n"

// fakeClient streams fixed fragments and records every prompt it receives.
type fakeClient struct {
	fragments []string
	err       error
	calls     atomic.Int32
	mu        sync.Mutex
	prompts   []string
}

func newFakeClient(reply ...string) *fakeClient {
	return &fakeClient{fragments: reply}
}

func (c *fakeClient) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	c.calls.Add(1)
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return func(yield func(string, error) bool) {
		for _, f := range c.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if c.err != nil {
			yield("", c.err)
		}
	}
}

func (c *fakeClient) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

func newTransformer(t *testing.T, opts transformer.Options) *transformer.Transformer {
	t.Helper()
	tr, err := transformer.New(opts)
	require.NoError(t, err)
	return tr
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name string
		opts transformer.Options
	}{
		{name: "Unknown detector", opts: transformer.Options{Detector: "magic"}},
		{name: "Unknown onError", opts: transformer.Options{Batch: transformer.BatchConfig{OnErrorMode: "retry"}}},
		{name: "Negative concurrency", opts: transformer.Options{Batch: transformer.BatchConfig{Concurrency: -1}}},
		{name: "Unknown mode", opts: transformer.Options{Mode: "refactor"}},
		{name: "Missing template", opts: transformer.Options{PromptTemplatePath: filepath.Join(t.TempDir(), "none.tmpl")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transformer.New(tc.opts)
			assert.ErrorIs(t, err, transformer.ErrConfigValidation)
		})
	}

	tr, err := transformer.New(transformer.Options{Detector: transformer.DetectorEnry})
	require.NoError(t, err)
	assert.Equal(t, "Makefile", tr.Detector().Detect("all:\n\techo hi\n", "Makefile"))
	assert.NotEmpty(t, tr.SystemPrompt())
}

func TestTransform_InvalidRequestMakesNoCall(t *testing.T) {
	client := newFakeClient(jsReply)
	tr := newTransformer(t, transformer.Options{ModelClient: client})

	testCases := []struct {
		name string
		req  transformer.Request
	}{
		{name: "Empty code", req: transformer.Request{Code: "", TargetLanguage: "JavaScript"}},
		{name: "Whitespace code", req: transformer.Request{Code: " \n\t ", TargetLanguage: "JavaScript"}},
		{name: "Empty target", req: transformer.Request{Code: "print(1)", TargetLanguage: "  "}},
		{name: "Unknown mode", req: transformer.Request{Code: "print(1)", TargetLanguage: "Go", Mode: "shrink"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tr.Transform(context.Background(), tc.req)
			assert.ErrorIs(t, err, transformer.ErrInvalidRequest)
		})
	}
	assert.Zero(t, client.calls.Load())
}

func TestTransform_MissingCollaborator(t *testing.T) {
	tr := newTransformer(t, transformer.Options{})

	_, err := tr.Transform(context.Background(), transformer.Request{Code: "print(1)", TargetLanguage: "Go"})
	assert.ErrorIs(t, err, transformer.ErrMissingCollaborator)

	// Validation comes first.
	_, err = tr.Transform(context.Background(), transformer.Request{TargetLanguage: "Go"})
	assert.ErrorIs(t, err, transformer.ErrInvalidRequest)
}

func TestTransform_FullForm(t *testing.T) {
	client := newFakeClient(strings.SplitAfter(jsReply, "\n")...)
	hooks := testutil.NewRecordingHooks()
	tr := newTransformer(t, transformer.Options{ModelClient: client, EventHooks: hooks})

	result, err := tr.Transform(context.Background(), transformer.Request{
		Code:           "print('hi')",
		TargetLanguage: "JavaScript",
		Instructions:   "use ES modules",
		FileName:       "script.py",
	})
	require.NoError(t, err)

	assert.Equal(t, `console.log("hi");`, result.TransformedCode)
	assert.Equal(t, "Replaced print with console.log.", result.Explanation)
	assert.Equal(t, "Python", result.SourceLanguage)
	assert.Equal(t, "JavaScript", result.TargetLanguage)
	assert.Equal(t, "script.js", result.SuggestedFileName)
	assert.False(t, result.ExtractionFailed())

	assert.EqualValues(t, 1, client.calls.Load())
	p := client.lastPrompt()
	assert.Contains(t, p, "TRANSLATE CODE TRANSFORMATION")
	assert.Contains(t, p, "SOURCE LANGUAGE: Python")
	assert.Contains(t, p, "TARGET LANGUAGE: JavaScript")
	assert.Contains(t, p, "SPECIAL INSTRUCTIONS: use ES modules")
	assert.Contains(t, p, "ORIGINAL FILE: script.py")
	assert.Contains(t, p, "```python\nprint('hi')\n```")

	assert.Equal(t, jsReply, strings.Join(hooks.Fragments, ""), "fragments reach hooks in emission order")
}

func TestTransform_ExplicitSourceAndModernize(t *testing.T) {
	client := newFakeClient("```java\nvar x = List.of();\n```")
	detector := new(testutil.MockLanguageDetector)
	tr := newTransformer(t, transformer.Options{ModelClient: client, LanguageDetector: detector})

	result, err := tr.Transform(context.Background(), transformer.Request{
		Code:           "List x = new ArrayList();",
		TargetLanguage: "Java",
		SourceLanguage: "Java",
		Mode:           "Modernize",
	})
	require.NoError(t, err)
	detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)

	assert.Equal(t, "var x = List.of();", result.TransformedCode)
	assert.Equal(t, "transformed_code.java", result.SuggestedFileName)
	assert.Contains(t, client.lastPrompt(), "MODERNIZE CODE TRANSFORMATION")
	assert.NotContains(t, client.lastPrompt(), "SPECIAL INSTRUCTIONS")
}

func TestTransform_ExtractionFailureSentinel(t *testing.T) {
	client := newFakeClient("I cannot convert this code.")
	tr := newTransformer(t, transformer.Options{ModelClient: client})

	result, err := tr.Transform(context.Background(), transformer.Request{Code: "x", TargetLanguage: "Go"})
	require.NoError(t, err)
	assert.True(t, result.ExtractionFailed())
	assert.Equal(t, transformer.ExtractionFailureSentinel, result.TransformedCode)
	assert.Equal(t, "I cannot convert this code.", result.Explanation)
}

func TestTransform_CollaboratorErrorUnmodified(t *testing.T) {
	boom := errors.New("rate limited")
	client := newFakeClient("```go\npartial")
	client.err = boom
	tr := newTransformer(t, transformer.Options{ModelClient: client})

	result, err := tr.Transform(context.Background(), transformer.Request{Code: "x", TargetLanguage: "Go"})
	assert.Same(t, boom, err)
	assert.Equal(t, transformer.Result{}, result)
}

func TestTransform_CancelledMidStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := model.ClientFunc(func(ctx context.Context, _ string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			if !yield("```go\n", nil) {
				return
			}
			cancel()
			// A misbehaving client that keeps going after cancellation.
			yield("func main() {}\n```", nil)
		}
	})
	tr := newTransformer(t, transformer.Options{ModelClient: client})

	_, err := tr.Transform(ctx, transformer.Request{Code: "x", TargetLanguage: "Go"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransform_PromptRenderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{ .NoSuchField }}"), 0o644))
	client := newFakeClient(jsReply)
	tr := newTransformer(t, transformer.Options{ModelClient: client, PromptTemplatePath: path})

	_, err := tr.Transform(context.Background(), transformer.Request{Code: "x", TargetLanguage: "Go"})
	assert.ErrorIs(t, err, transformer.ErrPromptRender)
	assert.Zero(t, client.calls.Load())
}

func TestTransform_CleanDocument(t *testing.T) {
	client := newFakeClient(jsReply)
	tr := newTransformer(t, transformer.Options{ModelClient: client, CleanDocument: true})

	_, err := tr.Transform(context.Background(), transformer.Request{
		Code:           "Page 1 of 2\nprint('hi')\n\f12\n",
		TargetLanguage: "JavaScript",
		SourceLanguage: "Python",
	})
	require.NoError(t, err)
	assert.Contains(t, client.lastPrompt(), "```python\nprint('hi')\n```")
}

func TestTransform_ConcurrentUse(t *testing.T) {
	client := newFakeClient(jsReply)
	tr := newTransformer(t, transformer.Options{ModelClient: client})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := tr.Transform(context.Background(), transformer.Request{Code: "print(1)", TargetLanguage: "JavaScript", FileName: "a.py"})
			assert.NoError(t, err)
			assert.Equal(t, "a.js", result.SuggestedFileName)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 8, client.calls.Load())
}

func TestTransformSimple(t *testing.T) {
	client := newFakeClient(jsReply)
	tr := newTransformer(t, transformer.Options{ModelClient: client})

	result, err := tr.TransformSimple(context.Background(), transformer.SimpleRequest{
		Code:           "def greet(name): return name",
		TargetLanguage: "JavaScript",
	})
	require.NoError(t, err)
	assert.Equal(t, `console.log("hi");`, result.TransformedCode)
	assert.Equal(t, "Replaced print with console.log.", result.Explanation)
	assert.Equal(t, "transformed_code.js", result.FileName)
	assert.Contains(t, client.lastPrompt(), "```python\n")

	_, err = tr.TransformSimple(context.Background(), transformer.SimpleRequest{Code: "x"})
	assert.ErrorIs(t, err, transformer.ErrInvalidRequest)
}

func TestSuggestFileName(t *testing.T) {
	testCases := []struct {
		fileName string
		target   string
		expected string
	}{
		{"script.py", "JavaScript", "script.js"},
		{"src/app/Main.java", "Kotlin", "Main.kt"},
		{"archive.tar.gz", "Go", "archive.tar.go"},
		{"Makefile", "Shell", "Makefile.sh"},
		{"", "Python", "transformed_code.py"},
		// Directories are dropped and a dotfile has no stem, so it takes the default base.
		{".bashrc", "Python", "transformed_code.py"},
		{"config/.env", "Go", "transformed_code.go"},
		{"notes.md", "Klingon", "notes.txt"},
	}
	for _, tc := range testCases {
		t.Run(tc.fileName+"->"+tc.target, func(t *testing.T) {
			assert.Equal(t, tc.expected, transformer.SuggestFileName(tc.fileName, tc.target))
		})
	}
}

func TestDecodeInput(t *testing.T) {
	tr := newTransformer(t, transformer.Options{})

	text, err := tr.DecodeInput([]byte("print('hi')\n"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", text)

	_, err = tr.DecodeInput([]byte{0x00, 0x01, 0x02, 0x00, 0x00, 0xff, 0x00, 0x00})
	assert.ErrorIs(t, err, transformer.ErrBinaryInput)
}

func TestParseMode(t *testing.T) {
	m, err := transformer.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, transformer.ModeTranslate, m)

	m, err = transformer.ParseMode(" MODERNIZE ")
	require.NoError(t, err)
	assert.Equal(t, transformer.ModeModernize, m)

	_, err = transformer.ParseMode("refactor")
	assert.ErrorIs(t, err, transformer.ErrInvalidRequest)
}
