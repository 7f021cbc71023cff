package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/grovetools/vault/backup"
	"github.com/grovetools/vault/cli"
	"github.com/spf13/cobra"
)

// NewBackupCmd creates the `backup` command group
func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create and inspect verified session backups",
	}

	cmd.AddCommand(newBackupCreateCmd())
	cmd.AddCommand(newBackupListCmd())
	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the local and remote session stores and verify the copies",
		Long: `Count the live session stores, copy them into timestamped backup
directories, recount the copies, and sample session files for integrity.
A manifest is written only when every check passes.

Example:
  vault backup create`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}
			logger := cli.GetLogger(cmd)
			logger.Debugf("backing up %s", cfg.Local.SessionsRoot)

			o := backup.NewOrchestrator(cfg, newRunner(cfg))
			m, err := o.CreateBackup(cmd.Context())
			if err != nil {
				return handler.Handle(err)
			}

			if opts.JSONOutput {
				data, err := json.MarshalIndent(m, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			out := cmd.OutOrStdout()
			cli.Successf(out, "Backup %s complete", m.Timestamp)
			fmt.Fprintf(out, "  local:  %d sessions, %s  %s\n",
				m.Local.SessionCount, humanize.Bytes(uint64(m.Local.SizeBytes)), m.Local.Path)
			if m.Remote.Path != "" {
				fmt.Fprintf(out, "  remote: %d sessions, %s  %s:%s\n",
					m.Remote.SessionCount, humanize.Bytes(uint64(m.Remote.SizeBytes)),
					m.Remote.Host, m.Remote.Path)
			}
			fmt.Fprintf(out, "  restore with: %s\n", m.RestoreCommand)
			return nil
		},
	}
	return cmd
}

func newBackupListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			manifests, err := backup.NewManifestStore(cfg.Backup.ManifestDir).List()
			if err != nil {
				return handler.Handle(err)
			}

			if opts.JSONOutput {
				data, err := json.MarshalIndent(manifests, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if len(manifests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups found. Run 'vault backup create' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tCREATED\tLOCAL\tREMOTE\tVERIFIED\tRESTORE COMMAND")
			for _, m := range manifests {
				localCol := fmt.Sprintf("%d (%s)", m.Local.SessionCount, humanize.Bytes(uint64(m.Local.SizeBytes)))
				remoteCol := "-"
				if m.Remote.Path != "" {
					remoteCol = fmt.Sprintf("%d (%s)", m.Remote.SessionCount, humanize.Bytes(uint64(m.Remote.SizeBytes)))
				}
				verified := "no"
				if m.IntegrityVerified {
					verified = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					m.Timestamp, m.CreatedAt.Format("2006-01-02 15:04"),
					localCol, remoteCol, verified, m.RestoreCommand)
			}
			return w.Flush()
		},
	}
	return cmd
}
