package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dekereke/internal/record"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Inspect the record export for problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := record.LoadSet(cfg.Paths.RecordsFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%d record(s), fields: %s\n\n",
				len(set.Records), strings.Join(set.FieldNames(), ", "))

			duplicates := set.DuplicateReferences()
			if len(duplicates) > 0 {
				rows := make([][]string, 0, len(duplicates))
				for _, ref := range sortedKeys(duplicates) {
					rows = append(rows, []string{ref, strconv.Itoa(len(duplicates[ref]))})
				}
				printSection(out, "Duplicate references")
				fmt.Fprintln(out, renderTable([]string{"Reference", "Records"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			empties := set.EmptyBaseFilenames()
			if len(empties) > 0 {
				printSection(out, "Records without a base filename")
				for _, i := range empties {
					fmt.Fprintf(out, "  %s\n", set.Records[i].Reference)
				}
				fmt.Fprintln(out)
			}

			if len(duplicates) == 0 && len(empties) == 0 {
				fmt.Fprintln(out, "No problems found.")
			}
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
