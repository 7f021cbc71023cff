package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/vault/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeUserCancelled:
		fmt.Fprintf(os.Stderr, "Restore cancelled. No changes were made.\n")
		return err

	case errors.ErrCodeManifestNotFound:
		if vaultErr, ok := err.(*errors.VaultError); ok {
			fmt.Fprintf(os.Stderr, "%s No backup found for timestamp '%v'\n",
				StyleError.Render("Error:"), vaultErr.Details["timestamp"])
		}
		fmt.Fprintf(os.Stderr, "Run 'vault backup list' to see available backups.\n")
		return err

	case errors.ErrCodeManifestCorrupt:
		fmt.Fprintf(os.Stderr, "%s The backup manifest exists but cannot be parsed.\n",
			StyleError.Render("Error:"))
		fmt.Fprintf(os.Stderr, "The backup data may still be intact; inspect the manifest file by hand.\n")
		return err

	case errors.ErrCodeBackupNotFound:
		if vaultErr, ok := err.(*errors.VaultError); ok {
			fmt.Fprintf(os.Stderr, "%s Backup data is missing from disk: %v\n",
				StyleError.Render("Error:"), vaultErr.Details["path"])
			fmt.Fprintf(os.Stderr, "The manifest exists but its backup directory was removed. Nothing was restored.\n")
		}
		return err

	case errors.ErrCodeCountMismatch:
		if vaultErr, ok := err.(*errors.VaultError); ok {
			fmt.Fprintf(os.Stderr, "%s %v session count mismatch: expected %v, found %v\n",
				StyleError.Render("Error:"),
				vaultErr.Details["side"], vaultErr.Details["expected"], vaultErr.Details["actual"])
			if pre, ok := vaultErr.Details["pre_restore_backup"]; ok {
				fmt.Fprintf(os.Stderr, "Nothing was rolled back. The pre-restore state is preserved in backup %v\n", pre)
			}
		}
		return err

	case errors.ErrCodeIntegrityFailure:
		fmt.Fprintf(os.Stderr, "%s A sampled session file failed its integrity check; the backup was discarded.\n",
			StyleError.Render("Error:"))
		return err

	case errors.ErrCodeRemoteUnreachable:
		if vaultErr, ok := err.(*errors.VaultError); ok {
			fmt.Fprintf(os.Stderr, "%s Cannot reach remote host '%v'\n",
				StyleError.Render("Error:"), vaultErr.Details["host"])
			fmt.Fprintf(os.Stderr, "Check SSH connectivity, or unset remote.host in vault.yml for local-only operation.\n")
		}
		return err

	case errors.ErrCodePartialMigration:
		if vaultErr, ok := err.(*errors.VaultError); ok {
			fmt.Fprintf(os.Stderr, "%s Migration finished with %v failed file(s); %v copied.\n",
				StyleWarning.Render("Warning:"), vaultErr.Details["failed"], vaultErr.Details["copied"])
			fmt.Fprintf(os.Stderr, "Copies are idempotent; fix the failures and re-run 'vault migrate'.\n")
		}
		return err

	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "%s Configuration file not found.\n", StyleError.Render("Error:"))
		return err

	default:
		fmt.Fprintf(os.Stderr, "%s %v\n", StyleError.Render("Error:"), err)

		if h.Verbose {
			if vaultErr, ok := err.(*errors.VaultError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", vaultErr.ToJSON())
			}
		}
		return err
	}
}
