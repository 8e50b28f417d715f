package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"dekereke/internal/record"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var template string
	var asJSON bool
	var onlyMissing bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Preview generated base filenames for records",
		Long: "Generate derives a base filename per record from a template with\n" +
			"{Field} placeholders, e.g. \"{Reference}_{Gloss}\". The record store is\n" +
			"external, so the result is a preview for the operator to apply there.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := record.LoadSet(cfg.Paths.RecordsFile)
			if err != nil {
				return err
			}

			generated := set.PreviewGenerated(template)
			if onlyMissing {
				filtered := generated[:0]
				for _, g := range generated {
					if set.Records[g.Index].BaseFilename == "" {
						filtered = append(filtered, g)
					}
				}
				generated = filtered
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(generated)
			}

			rows := make([][]string, 0, len(generated))
			for _, g := range generated {
				rows = append(rows, []string{g.Reference, set.Records[g.Index].BaseFilename, g.Name})
			}
			fmt.Fprintln(out, renderTable([]string{"Reference", "Current base", "Generated base"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "{Reference}_{Gloss}", "Filename template with {Field} placeholders")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&onlyMissing, "only-missing", false, "Only records without a base filename")
	return cmd
}
