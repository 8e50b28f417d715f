package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <filename>",
		Short: "Show the operation history of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			name := args[0]
			path := name
			if !filepath.IsAbs(path) {
				path = filepath.Join(cfg.Paths.AudioDir, name)
			}

			ident, entries, err := store.HistoryByPath(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "identity %s\ncurrent path %s\n\n", ident.ID, ident.CurrentPath)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No operations recorded.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				linked := ""
				if e.Reference != "" {
					linked = e.Reference + " / " + e.Field
				}
				rows = append(rows, []string{
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.Operation,
					filepath.Base(e.OldPath),
					filepath.Base(e.NewPath),
					linked,
					e.Reason,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Operation", "From", "To", "Record", "Reason"}, rows, nil))
			return nil
		},
	}
}
