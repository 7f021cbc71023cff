package sessions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/vault/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCountAndSizeLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "~eon-nt", "a.jsonl"), `{"type":"user"}`+"\n")
	writeFile(t, filepath.Join(dir, "~eon-nt", "b.jsonl"), `{"type":"assistant"}`+"\n")
	writeFile(t, filepath.Join(dir, "~other", "c.jsonl"), `{"type":"user"}`+"\n")
	// Non-session files are not counted.
	writeFile(t, filepath.Join(dir, "~eon-nt", "notes.txt"), "ignore me")

	c := NewCounter(nil, []string{".jsonl"})
	count, size, err := c.CountAndSize(context.Background(), Local(dir))
	if err != nil {
		t.Fatalf("CountAndSize returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	wantSize := int64(len(`{"type":"user"}`) + 1 + len(`{"type":"assistant"}`) + 1 + len(`{"type":"user"}`) + 1)
	if size != wantSize {
		t.Errorf("size = %d, want %d", size, wantSize)
	}
}

func TestCountAndSizeLocalMissingDir(t *testing.T) {
	// A store that does not exist yet is a valid, empty store.
	c := NewCounter(nil, []string{".jsonl"})
	count, size, err := c.CountAndSize(context.Background(), Local(filepath.Join(t.TempDir(), "absent")))
	if err != nil {
		t.Fatalf("CountAndSize returned error: %v", err)
	}
	if count != 0 || size != 0 {
		t.Errorf("count,size = %d,%d, want 0,0", count, size)
	}
}

func TestCountAndSizeRemote(t *testing.T) {
	runner := &fakeRunner{host: "dev@eon", outputs: []string{"12", "4"}}
	c := NewCounter(runner, []string{".jsonl"})

	count, size, err := c.CountAndSize(context.Background(), Remote("dev@eon", "/home/dev/.claude/projects"))
	if err != nil {
		t.Fatalf("CountAndSize returned error: %v", err)
	}
	if count != 12 {
		t.Errorf("count = %d, want 12", count)
	}
	if size != 4*1024 {
		t.Errorf("size = %d, want %d", size, 4*1024)
	}
	if len(runner.scripts) != 2 {
		t.Fatalf("expected 2 remote commands, got %d", len(runner.scripts))
	}
}

func TestCountAndSizeRemoteNonNumeric(t *testing.T) {
	// A count that cannot be parsed must be a hard failure, never a
	// default zero: "0 sessions" would be indistinguishable from an empty
	// store and could mask a connectivity problem.
	runner := &fakeRunner{host: "dev@eon", outputs: []string{"bash: find: command not found"}}
	c := NewCounter(runner, []string{".jsonl"})

	_, _, err := c.CountAndSize(context.Background(), Remote("dev@eon", "/home/dev/.claude/projects"))
	if !errors.Is(err, errors.ErrCodeRemoteCommandFailed) {
		t.Errorf("expected REMOTE_COMMAND_FAILED, got %v", err)
	}
}

func TestCountAndSizeRemoteConnectivityError(t *testing.T) {
	wantErr := errors.RemoteUnreachable("dev@eon", context.DeadlineExceeded)
	runner := &fakeRunner{host: "dev@eon", outputs: []string{""}, errs: []error{wantErr}}
	c := NewCounter(runner, []string{".jsonl"})

	_, _, err := c.CountAndSize(context.Background(), Remote("dev@eon", "/x"))
	if !errors.Is(err, errors.ErrCodeRemoteUnreachable) {
		t.Errorf("expected REMOTE_UNREACHABLE, got %v", err)
	}
}

func TestFindNameExpr(t *testing.T) {
	got := findNameExpr([]string{".jsonl", ".ndjson"})
	want := `\( -name '*.jsonl' -o -name '*.ndjson' \)`
	if got != want {
		t.Errorf("findNameExpr = %s, want %s", got, want)
	}
}
