// --- START OF FINAL REVISED FILE cmd/code-transformer/root.go ---
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stackvity/code-transformer/internal/cli"
	"github.com/stackvity/code-transformer/internal/cli/config"
	"github.com/stackvity/code-transformer/pkg/transformer"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// clientFactory builds the model collaborator. nil selects the provider
	// registry; tests substitute a fake.
	clientFactory cli.ClientFactory
)

// newRootCmd builds the command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "code-transformer",
		Short: "Translates and modernizes source code with a language model.",
		Long: `code-transformer converts source code between programming languages, or
modernizes it within the same language, by prompting a language model and
extracting the transformed code and an explanation from its reply.

It features:
  - Rule based or linguist based source language detection.
  - Anthropic, OpenRouter, Ollama and Gemini providers with streamed replies.
  - Whole-archive transformation with an interactive progress view.
  - An on-disk response cache and a watch mode for iterative edits.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newTransformCmd(),
		newSimpleCmd(),
		newDetectCmd(),
		newBatchCmd(),
	)
	return root
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error { // minimal comment
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}

// loadOptions resolves configuration for cmd from its (inherited) flags.
func loadOptions(cmd *cobra.Command) (transformer.Options, *slog.Logger, error) {
	flags := cmd.Flags()
	cfgFile, _ := flags.GetString("config")
	profileName, _ := flags.GetString("profile")
	verbose, _ := flags.GetBool("verbose")
	return config.LoadAndValidate(cfgFile, profileName, version, verbose, flags)
}

// readInput returns the contents of the file named by args, or stdin when
// no file is given, along with the file name used for detection.
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read input file: %w", err)
	}
	return data, args[0], nil
}

// writeOutput stores transformed code under dir. A reply without a code
// block is never written.
func writeOutput(dir, name, code string) (string, error) {
	if code == transformer.ExtractionFailureSentinel {
		return "", fmt.Errorf("%w: the model reply contained no code block", transformer.ErrWriteFailed)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create '%s': %w", transformer.ErrWriteFailed, dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(code+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("%w: '%s': %w", transformer.ErrWriteFailed, path, err)
	}
	return path, nil
}

// --- END OF FINAL REVISED FILE cmd/code-transformer/root.go ---
