package backup

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/grovetools/vault/errors"
)

// shRunner stands in for the ssh control channel by executing scripts with a
// local shell, so "remote" paths are just temporary directories and the real
// find/du/cp/mv pipelines run end to end.
type shRunner struct {
	host    string
	scripts []string
}

func (s *shRunner) Host() string { return s.host }

func (s *shRunner) Run(ctx context.Context, script string) (string, error) {
	s.scripts = append(s.scripts, script)

	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.RemoteCommandFailed(s.host, script,
			fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String())))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// cannedRunner replays fixed outputs, for failure-path tests where the
// remote must misbehave deterministically.
type cannedRunner struct {
	host    string
	outputs []string
	errs    []error
	scripts []string
}

func (c *cannedRunner) Host() string { return c.host }

func (c *cannedRunner) Run(ctx context.Context, script string) (string, error) {
	i := len(c.scripts)
	c.scripts = append(c.scripts, script)
	if i >= len(c.outputs) {
		return "", fmt.Errorf("cannedRunner: unexpected call %d: %s", i, script)
	}
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	return c.outputs[i], err
}
