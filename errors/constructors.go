package errors

import (
	"fmt"
)

// ManifestNotFound creates a manifest not found error. This is always
// distinct from corruption: the file simply does not exist.
func ManifestNotFound(timestamp string) *VaultError {
	return New(ErrCodeManifestNotFound, fmt.Sprintf("no manifest found for backup '%s'", timestamp)).
		WithDetail("timestamp", timestamp)
}

// ManifestCorrupt creates an error for a manifest that exists but cannot be parsed.
func ManifestCorrupt(path string, err error) *VaultError {
	return Wrap(err, ErrCodeManifestCorrupt, fmt.Sprintf("manifest is not parseable: %s", path)).
		WithDetail("path", path)
}

// BackupNotFound creates an error for a backup directory referenced by a
// manifest that no longer exists on disk.
func BackupNotFound(host, path string) *VaultError {
	where := path
	if host != "" {
		where = fmt.Sprintf("%s:%s", host, path)
	}
	return New(ErrCodeBackupNotFound, fmt.Sprintf("backup directory missing: %s", where)).
		WithDetail("host", host).
		WithDetail("path", path)
}

// CountMismatch creates a verification mismatch error carrying both numbers.
func CountMismatch(side string, expected, actual int) *VaultError {
	return New(ErrCodeCountMismatch,
		fmt.Sprintf("%s session count mismatch: expected %d, found %d", side, expected, actual)).
		WithDetail("side", side).
		WithDetail("expected", expected).
		WithDetail("actual", actual)
}

// IntegrityFailure creates an error for a sampled session file that failed to parse.
func IntegrityFailure(path string, err error) *VaultError {
	return Wrap(err, ErrCodeIntegrityFailure, fmt.Sprintf("session file failed integrity check: %s", path)).
		WithDetail("path", path)
}

// RemoteUnreachable creates an error for a control channel that could not be established.
func RemoteUnreachable(host string, err error) *VaultError {
	return Wrap(err, ErrCodeRemoteUnreachable, fmt.Sprintf("remote host '%s' is unreachable", host)).
		WithDetail("host", host)
}

// RemoteCommandFailed creates an error for a remote command that ran but failed.
func RemoteCommandFailed(host, script string, err error) *VaultError {
	return Wrap(err, ErrCodeRemoteCommandFailed, fmt.Sprintf("remote command failed on '%s'", host)).
		WithDetail("host", host).
		WithDetail("command", script)
}

// UserCancelled creates the error returned when the operator does not type
// the exact confirmation phrase. It signals "no action taken", not a fault.
func UserCancelled() *VaultError {
	return New(ErrCodeUserCancelled, "restore cancelled by operator, no changes made")
}

// PartialMigration creates an error summarizing per-file migration failures.
func PartialMigration(failed, copied int) *VaultError {
	return New(ErrCodePartialMigration,
		fmt.Sprintf("migration completed with %d failed file(s) (%d copied)", failed, copied)).
		WithDetail("failed", failed).
		WithDetail("copied", copied)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *VaultError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *VaultError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}
