package sessions

import (
	"context"
	"fmt"
)

// fakeRunner replays canned outputs and records the scripts it was asked to run.
type fakeRunner struct {
	host    string
	outputs []string
	errs    []error
	scripts []string
}

func (f *fakeRunner) Host() string { return f.host }

func (f *fakeRunner) Run(ctx context.Context, script string) (string, error) {
	i := len(f.scripts)
	f.scripts = append(f.scripts, script)
	if i >= len(f.outputs) {
		return "", fmt.Errorf("fakeRunner: unexpected call %d: %s", i, script)
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.outputs[i], err
}
