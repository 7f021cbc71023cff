// Package remote provides the control channel to the remote machine. Every
// remote operation in the tool (counting, snapshotting, restoring) goes
// through a CommandRunner; nothing else talks to the network.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/grovetools/vault/command"
	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/sirupsen/logrus"
)

// CommandRunner executes a shell script on the remote host and returns its
// stdout. Implementations must apply a bounded timeout: an unreachable host
// is a reportable failure, not a hang.
type CommandRunner interface {
	// Host returns the target host in user@host form, or "" when unset.
	Host() string

	// Run executes the script on the remote host and returns trimmed stdout.
	Run(ctx context.Context, script string) (string, error)
}

// SSHRunner runs scripts over ssh in batch mode. The ssh exit status 255 is
// reserved by ssh itself for connection-level failures, which lets us
// distinguish "host unreachable" from "command failed on the host".
type SSHRunner struct {
	host           string
	connectTimeout time.Duration
	commandTimeout time.Duration
	executor       command.Executor
	log            *logrus.Entry
}

// NewSSHRunner creates a runner for the given host.
func NewSSHRunner(host string, connectTimeout, commandTimeout time.Duration) *SSHRunner {
	return NewSSHRunnerWithExecutor(host, connectTimeout, commandTimeout, &command.RealExecutor{})
}

// NewSSHRunnerWithExecutor creates a runner with a custom command executor.
func NewSSHRunnerWithExecutor(host string, connectTimeout, commandTimeout time.Duration, exec command.Executor) *SSHRunner {
	return &SSHRunner{
		host:           host,
		connectTimeout: connectTimeout,
		commandTimeout: commandTimeout,
		executor:       exec,
		log:            logging.NewLogger("remote"),
	}
}

// Host returns the configured target host.
func (r *SSHRunner) Host() string { return r.host }

// Args returns the ssh argument vector for a script, exposed for testing.
func (r *SSHRunner) Args(script string) []string {
	return []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(r.connectTimeout.Seconds())),
		r.host,
		script,
	}
}

// Run executes the script on the remote host.
func (r *SSHRunner) Run(ctx context.Context, script string) (string, error) {
	if r.host == "" {
		return "", errors.New(errors.ErrCodeConfigInvalid, "remote host is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	cmd := r.executor.CommandContext(ctx, "ssh", r.Args(script)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.WithField("host", r.host).Debugf("remote exec: %s", script)

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.RemoteUnreachable(r.host,
				fmt.Errorf("command timed out after %s", r.commandTimeout))
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			// 255 is ssh's own exit code for connection failures.
			if exitErr.ExitCode() == 255 {
				return "", errors.RemoteUnreachable(r.host,
					fmt.Errorf("%s", strings.TrimSpace(stderr.String())))
			}
			return "", errors.RemoteCommandFailed(r.host, script,
				fmt.Errorf("exit %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
		}
		return "", errors.RemoteUnreachable(r.host, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
