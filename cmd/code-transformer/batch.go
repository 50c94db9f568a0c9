// --- START OF NEW FILE cmd/code-transformer/batch.go ---
package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stackvity/code-transformer/internal/cli"
	"github.com/stackvity/code-transformer/internal/cli/hooks"
	"github.com/stackvity/code-transformer/internal/cli/render"
	"github.com/stackvity/code-transformer/internal/cli/ui"
	"github.com/stackvity/code-transformer/pkg/transformer"
)

func newBatchCmd() *cobra.Command {
	var target, instructions string
	cmd := &cobra.Command{
		Use:   "batch <archive.zip>",
		Short: "Transform every source file in a zip archive and package the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			opts, logger, err := loadOptions(cmd)
			if err != nil {
				return err
			}

			useTUI := opts.TuiEnabled &&
				opts.OutputFormat == transformer.OutputFormatText &&
				render.IsTerminal(os.Stderr)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var prog *tea.Program
			var tuiProg hooks.TUIProgram
			if useTUI {
				prog = tea.NewProgram(ui.NewModel(version, target), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
				tuiProg = prog
			}
			opts.EventHooks = hooks.NewCLIHooks(logger, useTUI, opts.Verbose, tuiProg, nil)

			session, err := cli.NewSession(ctx, opts, clientFactory, logger)
			if err != nil {
				return err
			}
			defer func() { err = session.CloseWith(err) }()

			req := transformer.BatchRequest{
				ArchivePath:    args[0],
				TargetLanguage: target,
				Instructions:   instructions,
			}

			var report transformer.BatchReport
			var runErr error
			if prog == nil {
				report, runErr = session.Transformer.TransformArchive(ctx, req)
			} else {
				done := make(chan struct{})
				go func() {
					defer close(done)
					report, runErr = session.Transformer.TransformArchive(ctx, req)
					prog.Quit()
				}()
				if _, tuiErr := prog.Run(); tuiErr != nil {
					logger.Debug("Progress view exited", slog.Any("error", tuiErr))
				}
				// Quitting the view early stops the run.
				cancel()
				<-done
			}

			if report.Summary.ArchivePath != "" {
				if err := render.NewPrinter(cmd.OutOrStdout(), opts.OutputFormat, false).Report(report); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Required. Target language label")
	cmd.Flags().StringVar(&instructions, "instructions", "", "Additional instructions for the model")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// --- END OF NEW FILE cmd/code-transformer/batch.go ---
