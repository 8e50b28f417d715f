package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dekereke/internal/engine"
	"dekereke/internal/plan"
	"dekereke/internal/textutil"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var approvalsPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build and display the operation queue without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, cfg, err := ctx.runPass(ctx.runContext(cmd.Context()))
			if err != nil {
				return err
			}
			built, _, err := buildPlan(approvalsPath, pass, cfg.Matching.CaseSensitive, pass.Snapshot.Files)
			if err != nil {
				return err
			}
			printPlan(cmd, built)
			return nil
		},
	}

	cmd.Flags().StringVarP(&approvalsPath, "approvals", "a", "", "Path to the approvals TOML file (required)")
	_ = cmd.MarkFlagRequired("approvals")
	return cmd
}

// buildPlan loads and resolves the approvals file once, returning the
// resolved requests alongside the plan so callers never parse it twice.
func buildPlan(approvalsPath string, pass *engine.Pass, caseSensitive bool, existing []string) (plan.Plan, plan.Requests, error) {
	approvals, err := loadApprovals(approvalsPath)
	if err != nil {
		return plan.Plan{}, plan.Requests{}, err
	}
	req, err := resolveRequests(approvals, pass)
	if err != nil {
		return plan.Plan{}, plan.Requests{}, err
	}
	built, err := plan.Build(req, existing, textutil.Caser{Sensitive: caseSensitive})
	return built, req, err
}

func printPlan(cmd *cobra.Command, built plan.Plan) {
	out := cmd.OutOrStdout()

	if len(built.Operations) > 0 {
		rows := make([][]string, 0, len(built.Operations))
		for _, op := range built.Operations {
			rows = append(rows, []string{string(op.Kind), op.From, op.To, op.Reference, op.Field, op.Reason})
		}
		printSection(out, "Planned operations")
		fmt.Fprintln(out, renderTable([]string{"Kind", "From", "To", "Reference", "Field", "Reason"}, rows, nil))
	} else {
		fmt.Fprintln(out, "No operations planned.")
	}

	for _, d := range built.Dropped {
		fmt.Fprintf(out, "dropped: %s %s (%s)\n", d.Operation.Kind, d.Operation.From, d.Reason)
	}
	for _, r := range built.Rejected {
		fmt.Fprintf(out, "rejected: %s %s (%s)\n", r.Operation.Kind, r.Operation.From, r.Reason)
	}
}
