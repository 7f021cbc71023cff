package cmd

import (
	"fmt"

	"github.com/grovetools/vault/backup"
	"github.com/grovetools/vault/cli"
	"github.com/grovetools/vault/errors"
	"github.com/spf13/cobra"
)

// NewRestoreCmd creates the `restore` command
func NewRestoreCmd() *cobra.Command {
	var localOnly, remoteOnly bool

	cmd := &cobra.Command{
		Use:   "restore <timestamp>",
		Short: "Replace the live session stores with a backup's content",
		Long: `Restore the backup identified by its timestamp. The current live
state is safety-backed-up first, then each live directory is renamed
aside and the backup's content is copied in. The previous state is
never deleted.

The operation requires typing an exact confirmation phrase that
includes the timestamp.

Examples:
  vault backup list
  vault restore 20260823-101500
  vault restore 20260823-101500 --local-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			if localOnly && remoteOnly {
				return handler.Handle(errors.New(errors.ErrCodeInvalidInput,
					"--local-only and --remote-only are mutually exclusive"))
			}

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}
			logger := cli.GetLogger(cmd)
			logger.Debugf("restoring backup %s", args[0])

			if remoteOnly && cfg.Remote.Host == "" {
				return handler.Handle(errors.New(errors.ErrCodeInvalidInput,
					"--remote-only requires remote.host in vault.yml"))
			}

			restoreOpts := backup.RestoreOptions{
				Local:  !remoteOnly,
				Remote: !localOnly && cfg.Remote.Host != "",
			}

			confirmer := &backup.StdioConfirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			r := backup.NewRestorer(cfg, newRunner(cfg), confirmer)

			result, err := r.Restore(cmd.Context(), args[0], restoreOpts)
			if err != nil {
				return handler.Handle(err)
			}

			out := cmd.OutOrStdout()
			cli.Successf(out, "Restore of backup %s complete", result.Timestamp)
			if restoreOpts.Local {
				fmt.Fprintf(out, "  local:  %d sessions restored to %s\n",
					result.LocalCount, cfg.Local.SessionsRoot)
				if result.LocalMovedTo != "" {
					fmt.Fprintf(out, "          previous state preserved at %s\n", result.LocalMovedTo)
				}
			}
			if restoreOpts.Remote {
				fmt.Fprintf(out, "  remote: %d sessions restored to %s:%s\n",
					result.RemoteCount, cfg.Remote.Host, cfg.Remote.SessionsRoot)
				if result.RemoteMovedTo != "" {
					fmt.Fprintf(out, "          previous state preserved at %s:%s\n",
						cfg.Remote.Host, result.RemoteMovedTo)
				}
			}
			fmt.Fprintf(out, "  pre-restore safety backup: %s\n", result.PreRestoreBackup.Timestamp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local-only", false, "Restore only the local session store")
	cmd.Flags().BoolVar(&remoteOnly, "remote-only", false, "Restore only the remote session store")
	return cmd
}
