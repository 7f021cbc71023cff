package errors

import (
	"fmt"
	"testing"
)

func TestVaultError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeManifestNotFound, "manifest not found")
	if err.Code != ErrCodeManifestNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeManifestNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeRemoteCommandFailed, "command failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeRemoteCommandFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeManifestNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("timestamp", "20260101-120000").WithDetail("attempt", 2)
	if detailed.Details["timestamp"] != "20260101-120000" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := ManifestNotFound("20260101-120000")
	if err.Code != ErrCodeManifestNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeManifestNotFound, err.Code)
	}
	if err.Details["timestamp"] != "20260101-120000" {
		t.Error("ManifestNotFound should include timestamp detail")
	}

	err = CountMismatch("local", 12, 0)
	if err.Code != ErrCodeCountMismatch {
		t.Errorf("expected code %s, got %s", ErrCodeCountMismatch, err.Code)
	}
	if err.Details["expected"] != 12 || err.Details["actual"] != 0 {
		t.Error("CountMismatch should carry both numbers")
	}

	err = BackupNotFound("dev@eon", "/backups/remote_x")
	if err.Details["host"] != "dev@eon" {
		t.Error("BackupNotFound should include host detail")
	}

	err = UserCancelled()
	if err.Code != ErrCodeUserCancelled {
		t.Errorf("expected code %s, got %s", ErrCodeUserCancelled, err.Code)
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should be empty")
	}
	inner := RemoteUnreachable("dev@eon", fmt.Errorf("dial timeout"))
	outer := fmt.Errorf("create backup: %w", inner)
	if GetCode(outer) != ErrCodeRemoteUnreachable {
		t.Error("GetCode should unwrap standard-wrapped errors")
	}
}
