// --- START OF NEW FILE cmd/code-transformer/simple.go ---
package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/stackvity/code-transformer/internal/cli"
	"github.com/stackvity/code-transformer/internal/cli/hooks"
	"github.com/stackvity/code-transformer/internal/cli/render"
	"github.com/stackvity/code-transformer/pkg/transformer"
)

func newSimpleCmd() *cobra.Command {
	var target, instructions, outDir string
	var write bool
	cmd := &cobra.Command{
		Use:   "simple [file]",
		Short: "Transform code with the simplified prompt; the source language is detected from content only",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			opts, logger, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			opts.EventHooks = hooks.NewCLIHooks(logger, false, opts.Verbose, nil, nil)

			session, err := cli.NewSession(cmd.Context(), opts, clientFactory, logger)
			if err != nil {
				return err
			}
			defer func() { err = session.CloseWith(err) }()

			data, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			code, err := session.Transformer.DecodeInput(data)
			if err != nil {
				return err
			}
			res, err := session.Transformer.TransformSimple(cmd.Context(), transformer.SimpleRequest{
				Code:           code,
				TargetLanguage: target,
				Instructions:   instructions,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := render.NewPrinter(out, opts.OutputFormat, render.IsTerminal(out)).SimpleResult(res); err != nil {
				return err
			}
			if write {
				path, err := writeOutput(outDir, res.FileName, res.TransformedCode)
				if err != nil {
					return err
				}
				logger.Info("Wrote transformed code", slog.String("path", path))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Required. Target language label")
	cmd.Flags().StringVar(&instructions, "instructions", "", "Additional instructions for the model")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the transformed code to --out-dir")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for --write")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// --- END OF NEW FILE cmd/code-transformer/simple.go ---
