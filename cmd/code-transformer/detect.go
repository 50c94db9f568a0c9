// --- START OF NEW FILE cmd/code-transformer/detect.go ---
package main

import (
	"github.com/spf13/cobra"
	"github.com/stackvity/code-transformer/internal/cli/render"
	"github.com/stackvity/code-transformer/pkg/transformer"
	"github.com/stackvity/code-transformer/pkg/transformer/encoding"
	"github.com/stackvity/code-transformer/pkg/transformer/language"
)

func newDetectCmd() *cobra.Command {
	var nameHint string
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Print the detected language of a file (or stdin) and its canonical extension",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, _, err := loadOptions(cmd)
			if err != nil {
				return err
			}
			data, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if name == "" {
				name = nameHint
			}
			content, err := encoding.NewDecoder(opts.DefaultEncoding).DecodeText(data)
			if err != nil {
				return err
			}

			label := transformer.NewDetector(opts.Detector, opts.LanguageMappingsOverride).Detect(content, name)
			return render.NewPrinter(cmd.OutOrStdout(), opts.OutputFormat, false).Detection(render.Detection{
				Language:  label,
				Extension: language.ExtensionFor(label),
			})
		},
	}
	cmd.Flags().StringVar(&nameHint, "name", "", "File name hint used when reading stdin")
	return cmd
}

// --- END OF NEW FILE cmd/code-transformer/detect.go ---
