package cmd

import (
	"time"

	"github.com/grovetools/vault/config"
	"github.com/grovetools/vault/remote"
)

// newRunner builds the ssh control channel from configuration. A config
// without a remote host yields nil, which downstream components treat as
// local-only operation.
func newRunner(cfg *config.Config) remote.CommandRunner {
	if cfg.Remote.Host == "" {
		return nil
	}
	return remote.NewSSHRunner(
		cfg.Remote.Host,
		time.Duration(cfg.Remote.ConnectTimeoutSeconds)*time.Second,
		time.Duration(cfg.Remote.CommandTimeoutSeconds)*time.Second,
	)
}
