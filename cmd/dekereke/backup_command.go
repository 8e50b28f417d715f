package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"dekereke/internal/config"
	"dekereke/internal/fileutil"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var destParent string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy the audio folder to a timestamped backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			backupPath, err := createBackup(cfg, destParent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup created at %s\n", backupPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&destParent, "dest", "d", "", "Directory to place the backup in (default: next to the audio folder)")
	return cmd
}

// createBackup copies the whole audio folder to
// <parent>/<folder>_backup_<timestamp>. parent defaults to the audio
// folder's own parent directory.
func createBackup(cfg *config.Config, parent string) (string, error) {
	audioDir := cfg.Paths.AudioDir
	if _, err := os.Stat(audioDir); err != nil {
		return "", fmt.Errorf("audio folder: %w", err)
	}
	if parent == "" {
		parent = filepath.Dir(audioDir)
	}
	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(parent, fmt.Sprintf("%s_backup_%s", filepath.Base(audioDir), stamp))
	if err := fileutil.CopyTree(audioDir, backupPath); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	return backupPath, nil
}
