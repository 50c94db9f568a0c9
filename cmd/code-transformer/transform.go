// --- START OF NEW FILE cmd/code-transformer/transform.go ---
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/stackvity/code-transformer/internal/cli"
	"github.com/stackvity/code-transformer/internal/cli/hooks"
	"github.com/stackvity/code-transformer/internal/cli/render"
	"github.com/stackvity/code-transformer/internal/cli/watch"
	"github.com/stackvity/code-transformer/pkg/transformer"
)

type transformFlags struct {
	target       string
	source       string
	instructions string
	write        bool
	outDir       string
	stream       bool
	watch        bool
}

func newTransformCmd() *cobra.Command {
	f := &transformFlags{}
	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Transform one source file (reads stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, args, f)
		},
	}
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "Required. Target language label (e.g. JavaScript, Go)")
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Source language label (detected when empty)")
	cmd.Flags().StringVar(&f.instructions, "instructions", "", "Additional instructions for the model")
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "Write the transformed code to --out-dir using the suggested file name")
	cmd.Flags().StringVar(&f.outDir, "out-dir", ".", "Directory for --write")
	cmd.Flags().BoolVar(&f.stream, "stream", false, "Print the model reply as it streams (text output only)")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Re-run whenever the input file changes")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runTransform(cmd *cobra.Command, args []string, f *transformFlags) (err error) {
	opts, logger, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if f.watch && len(args) == 0 {
		return fmt.Errorf("%w: --watch requires a file argument", transformer.ErrConfigValidation)
	}
	if f.stream && opts.OutputFormat != transformer.OutputFormatText {
		return fmt.Errorf("%w: --stream is only supported with text output", transformer.ErrConfigValidation)
	}

	out := cmd.OutOrStdout()
	var fragments io.Writer
	if f.stream {
		fragments = out
	}
	opts.EventHooks = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, fragments)

	ctx := cmd.Context()
	session, err := cli.NewSession(ctx, opts, clientFactory, logger)
	if err != nil {
		return err
	}
	defer func() { err = session.CloseWith(err) }()

	printer := render.NewPrinter(out, opts.OutputFormat, render.IsTerminal(out))
	run := func(ctx context.Context) error {
		data, name, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		code, err := session.Transformer.DecodeInput(data)
		if err != nil {
			return err
		}
		res, err := session.Transformer.Transform(ctx, transformer.Request{
			Code:           code,
			TargetLanguage: f.target,
			SourceLanguage: f.source,
			Instructions:   f.instructions,
			FileName:       name,
		})
		if err != nil {
			return err
		}
		if f.stream {
			fmt.Fprintln(out)
		} else if err := printer.Result(res); err != nil {
			return err
		}
		if f.write {
			path, err := writeOutput(f.outDir, res.SuggestedFileName, res.TransformedCode)
			if err != nil {
				return err
			}
			logger.Info("Wrote transformed code", slog.String("path", path))
		}
		return nil
	}

	if err := run(ctx); err != nil {
		if !f.watch || errors.Is(err, context.Canceled) {
			return err
		}
		logger.Error("Transformation failed; waiting for changes", slog.Any("error", err))
	}
	if !f.watch {
		return nil
	}

	w, err := watch.New(args[0], opts.WatchDebounce, opts.Logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, run)
}

// --- END OF NEW FILE cmd/code-transformer/transform.go ---
