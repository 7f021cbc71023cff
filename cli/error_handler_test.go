package cli

import (
	"testing"

	"github.com/grovetools/vault/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerReturnsOriginalError(t *testing.T) {
	h := NewErrorHandler(false)

	cases := []error{
		errors.UserCancelled(),
		errors.ManifestNotFound("20260823-101500"),
		errors.BackupNotFound("dev@eon", "/backups/remote_20260823-101500"),
		errors.CountMismatch("local", 12, 11),
		errors.RemoteUnreachable("dev@eon", assert.AnError),
		errors.PartialMigration(2, 40),
		errors.New(errors.ErrCodeInternal, "unexpected"),
	}

	for _, err := range cases {
		assert.Same(t, err, h.Handle(err), "Handle must pass the error through for exit-code handling")
	}
}

func TestGetOptions(t *testing.T) {
	cmd := NewStandardCommand("vault", "test")

	var opts CommandOptions
	cmd.RunE = func(c *cobra.Command, args []string) error {
		opts = GetOptions(c)
		return nil
	}
	cmd.SetArgs([]string{"--verbose", "--config", "/etc/vault.yml"})
	require.NoError(t, cmd.Execute())

	assert.True(t, opts.Verbose)
	assert.False(t, opts.JSONOutput)
	assert.Equal(t, "/etc/vault.yml", opts.ConfigFile)
}
