package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSuggestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Rank orphaned files against missing recordings",
		Long: "Suggest scores each orphaned file against every missing expected\n" +
			"recording and prints the top candidates. Suggestions are advisory:\n" +
			"nothing is renamed until an approvals file accepting them is applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, _, err := ctx.runPass(ctx.runContext(cmd.Context()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(pass.Candidates) == 0 {
				fmt.Fprintln(out, "No suggestions: nothing orphaned matches anything missing.")
				return nil
			}

			rows := make([][]string, 0, len(pass.Candidates))
			for _, cand := range pass.Candidates {
				rows = append(rows, []string{
					cand.Orphan,
					cand.Artifact.Filename,
					cand.Artifact.Reference,
					cand.Artifact.Field,
					fmt.Sprintf("%.2f", cand.Score),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Orphan", "Suggested name", "Reference", "Field", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
