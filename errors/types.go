package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Manifest errors
	ErrCodeManifestNotFound ErrorCode = "MANIFEST_NOT_FOUND"
	ErrCodeManifestCorrupt  ErrorCode = "MANIFEST_CORRUPT"

	// Backup and restore errors
	ErrCodeBackupNotFound   ErrorCode = "BACKUP_NOT_FOUND"
	ErrCodeCountMismatch    ErrorCode = "COUNT_MISMATCH"
	ErrCodeIntegrityFailure ErrorCode = "INTEGRITY_FAILURE"
	ErrCodeUserCancelled    ErrorCode = "USER_CANCELLED"

	// Control channel errors
	ErrCodeRemoteUnreachable   ErrorCode = "REMOTE_UNREACHABLE"
	ErrCodeRemoteCommandFailed ErrorCode = "REMOTE_COMMAND_FAILED"

	// Migration errors
	ErrCodePartialMigration ErrorCode = "PARTIAL_MIGRATION"

	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// VaultError represents a structured error with context
type VaultError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *VaultError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *VaultError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *VaultError) WithDetail(key string, value interface{}) *VaultError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *VaultError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new VaultError
func New(code ErrorCode, message string) *VaultError {
	return &VaultError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a VaultError
func Wrap(err error, code ErrorCode, message string) *VaultError {
	return &VaultError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific VaultError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	vaultErr, ok := err.(*VaultError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return vaultErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	vaultErr, ok := err.(*VaultError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return vaultErr.Code
}
