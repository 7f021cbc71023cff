package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/vault/cli"
	"github.com/grovetools/vault/sessions"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the `migrate` command
func NewMigrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Merge a legacy session store into the canonical tree",
		Long: `Walk the legacy session store, rename machine-specific directory
names to their canonical form, and copy session files into the target
tree. Files already present with the same name and size are skipped,
so the migration can be re-run safely after fixing failures.

Examples:
  vault migrate --dry-run
  vault migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}
			logger := cli.GetLogger(cmd)
			logger.Debugf("migrating %s into %s", cfg.Migration.LegacyRoot, cfg.Migration.TargetRoot)

			resolver := sessions.NewResolver(cfg.Migration.HomePrefixes)
			m := sessions.NewMigrator(resolver, cfg.SessionExtensions, dryRun)

			result, runErr := m.Run(cfg.Migration.LegacyRoot, cfg.Migration.TargetRoot)
			if result == nil {
				return handler.Handle(runErr)
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				if dryRun {
					cli.Headingf(out, "Migration plan (dry run)")
				} else {
					cli.Headingf(out, "Migration report")
				}
				for _, d := range result.Dirs {
					if !d.Recognized {
						cli.Warnf(out, "%s: unrecognized name, kept as-is (%d files)", d.Source, d.Files)
						continue
					}
					fmt.Fprintf(out, "  %s -> %s  (%d copied, %d skipped)\n",
						d.Source, d.Canonical, d.Copied, d.Skipped)
				}
				fmt.Fprintf(out, "\n%d copied, %d skipped, %d failed\n",
					result.FilesCopied, result.FilesSkipped, result.FilesFailed)
				for _, f := range result.Failures {
					cli.Warnf(out, "failed: %s: %v", f.Source, f.Err)
				}
			}

			if runErr != nil {
				return handler.Handle(runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and report without copying anything")
	return cmd
}
