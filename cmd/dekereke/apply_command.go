package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dekereke/internal/execute"
	"dekereke/internal/preflight"
	"dekereke/internal/reconcile"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var approvalsPath string
	var skipPreflight bool
	var withBackup bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute the approved operation queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !skipPreflight {
				results := preflight.Run(cfg)
				if !preflight.Passed(results) {
					for _, r := range results {
						if !r.Passed {
							fmt.Fprintf(out, "preflight failed: %s: %s\n", r.Name, r.Detail)
						}
					}
					return fmt.Errorf("preflight checks failed")
				}
			}

			runCtx := ctx.runContext(cmd.Context())
			pass, cfg, err := ctx.runPass(runCtx)
			if err != nil {
				return err
			}
			built, req, err := buildPlan(approvalsPath, pass, cfg.Matching.CaseSensitive, pass.Snapshot.Files)
			if err != nil {
				return err
			}
			printPlan(cmd, built)
			if len(built.Operations) == 0 {
				return nil
			}

			if withBackup {
				backupPath, err := createBackup(cfg, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "backup created at %s\n", backupPath)
			}

			// Recompute the unresolved report with the approved exclusions
			// taken out, so the written to-do list matches the new state.
			unresolved := reconcile.UnresolvedByRecord(pass.Classification.Missing, excludedKeys(req, pass))

			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			report, err := execute.New(cfg, store, logger).Run(runCtx, built, unresolved)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "completed %d, failed %d, skipped %d\n",
				len(report.Completed), len(report.Failed), len(report.Skipped))
			for _, f := range report.Failed {
				fmt.Fprintf(out, "failed: %s %s: %s\n", f.Operation.Kind, f.Operation.From, f.Err)
			}
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "skipped: %s %s (%s)\n", s.Operation.Kind, s.Operation.From, s.Reason)
			}
			if report.Cancelled {
				fmt.Fprintf(out, "cancelled with %d operation(s) not attempted\n", len(report.Remaining))
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d operation(s) failed", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&approvalsPath, "approvals", "a", "", "Path to the approvals TOML file (required)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before executing")
	cmd.Flags().BoolVar(&withBackup, "backup", false, "Copy the audio folder to a timestamped backup before executing")
	_ = cmd.MarkFlagRequired("approvals")
	return cmd
}
