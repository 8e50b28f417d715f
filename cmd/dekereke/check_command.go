package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dekereke/internal/engine"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var showMatched bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Reconcile the audio folder against the record export",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, _, err := ctx.runPass(ctx.runContext(cmd.Context()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cls := pass.Classification

			summary := renderTable(
				[]string{"Status", "Count"},
				[][]string{
					{"Matched", strconv.Itoa(len(cls.Matched))},
					{"Missing", strconv.Itoa(len(cls.Missing))},
					{"Orphaned", strconv.Itoa(len(cls.Orphaned))},
					{"Unexpected", strconv.Itoa(len(cls.Unexpected))},
					{"Duplicates", strconv.Itoa(len(cls.Duplicates))},
					{"Ambiguous", strconv.Itoa(len(cls.Ambiguities))},
				},
				[]columnAlignment{alignLeft, alignRight},
			)
			fmt.Fprintln(out, summary)

			if showMatched && len(cls.Matched) > 0 {
				rows := make([][]string, 0, len(cls.Matched))
				for _, m := range cls.Matched {
					rows = append(rows, []string{m.Artifact.Reference, m.Artifact.Field, m.ActualFile})
				}
				printSection(out, "Matched")
				fmt.Fprintln(out, renderTable([]string{"Reference", "Field", "File"}, rows, nil))
			}

			if len(cls.Missing) > 0 {
				rows := make([][]string, 0, len(cls.Missing))
				for _, art := range cls.Missing {
					rows = append(rows, []string{art.Reference, art.Field, art.Filename, art.Content})
				}
				printSection(out, "Missing recordings")
				fmt.Fprintln(out, renderTable([]string{"Reference", "Field", "Expected file", "Content"}, rows, nil))
			}

			if len(cls.Orphaned) > 0 {
				printSection(out, "Orphaned files")
				for _, name := range cls.Orphaned {
					fmt.Fprintf(out, "  %s\n", name)
				}
				fmt.Fprintln(out)
			}

			if len(cls.Unexpected) > 0 {
				rows := make([][]string, 0, len(cls.Unexpected))
				for _, u := range cls.Unexpected {
					rows = append(rows, []string{u.Filename, u.Reference, strings.Join(u.Fields, ", ")})
				}
				printSection(out, "Files present but not expected")
				fmt.Fprintln(out, renderTable([]string{"File", "Reference", "Fields"}, rows, nil))
			}

			if len(cls.Duplicates) > 0 {
				rows := make([][]string, 0, len(cls.Duplicates))
				for _, d := range cls.Duplicates {
					rows = append(rows, []string{d.Filename, d.MatchedFile, d.Reference})
				}
				printSection(out, "Duplicate recordings (pair already satisfied)")
				fmt.Fprintln(out, renderTable([]string{"File", "Matched by", "Reference"}, rows, nil))
			}

			if len(cls.Ambiguities) > 0 {
				printSection(out, "Ambiguous files (resolve before planning)")
				for _, amb := range cls.Ambiguities {
					fmt.Fprintf(out, "  %s: bases %s\n", amb.Filename, strings.Join(amb.Candidates, ", "))
				}
				fmt.Fprintln(out)
			}

			for _, adv := range cls.Advisories {
				fmt.Fprintf(out, "note: %s and %s differ only in extension case\n", adv.BaseFilename, adv.ActualFile)
			}
			printIssues(out, pass.Issues)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMatched, "matched", false, "Also list matched files")
	return cmd
}

func printIssues(out io.Writer, issues engine.RecordIssues) {
	refs := make([]string, 0, len(issues.DuplicateReferences))
	for ref := range issues.DuplicateReferences {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		fmt.Fprintf(out, "warning: reference %s appears on %d records\n", ref, len(issues.DuplicateReferences[ref]))
	}
	if n := len(issues.EmptyBaseFilenames); n > 0 {
		fmt.Fprintf(out, "warning: %d record(s) have no base filename\n", n)
	}
}
