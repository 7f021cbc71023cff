package sessions

import (
	"context"
	"path/filepath"
	"testing"
)

func TestVerifyLocalValid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jsonl"), `{"type":"user","message":{"role":"user"}}`+"\n"+`{"type":"assistant"}`+"\n")
	writeFile(t, filepath.Join(dir, "b.jsonl"), `{"sessionId":"abc","cwd":"/home/dev/eon-nt"}`+"\n")

	p := NewProbe(nil, []string{".jsonl"})
	ok, err := p.Verify(context.Background(), Local(dir))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true for valid records")
	}
}

func TestVerifyLocalMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jsonl"), `{"type":"user"}`+"\n")
	writeFile(t, filepath.Join(dir, "b.jsonl"), "{'not json'\n")

	p := NewProbe(nil, []string{".jsonl"})
	ok, err := p.Verify(context.Background(), Local(dir))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Error("Verify = true, want false for malformed record")
	}
}

func TestVerifyLocalEmptyStore(t *testing.T) {
	// Nothing to sample means nothing is corrupt.
	p := NewProbe(nil, []string{".jsonl"})
	ok, err := p.Verify(context.Background(), Local(t.TempDir()))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true for empty store")
	}
}

func TestVerifyLocalSampleBound(t *testing.T) {
	dir := t.TempDir()
	// Only the first sampleSize files (sorted) are inspected; the
	// malformed file sorts after them and must not be reached.
	writeFile(t, filepath.Join(dir, "a.jsonl"), `{}`+"\n")
	writeFile(t, filepath.Join(dir, "b.jsonl"), `{}`+"\n")
	writeFile(t, filepath.Join(dir, "c.jsonl"), `{}`+"\n")
	writeFile(t, filepath.Join(dir, "z.jsonl"), "not json\n")

	p := NewProbe(nil, []string{".jsonl"})
	ok, err := p.Verify(context.Background(), Local(dir))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true: sample should not reach the fourth file")
	}
}

func TestVerifyRemoteValid(t *testing.T) {
	runner := &fakeRunner{host: "dev@eon", outputs: []string{
		"/store/a.jsonl\n/store/b.jsonl",
		`{"type":"user"}`,
		`{"type":"assistant"}`,
	}}
	p := NewProbe(runner, []string{".jsonl"})

	ok, err := p.Verify(context.Background(), Remote("dev@eon", "/store"))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true")
	}
	if len(runner.scripts) != 3 {
		t.Errorf("expected 3 remote commands (list + 2 heads), got %d", len(runner.scripts))
	}
}

func TestVerifyRemoteMalformedShortCircuits(t *testing.T) {
	runner := &fakeRunner{host: "dev@eon", outputs: []string{
		"/store/a.jsonl\n/store/b.jsonl",
		"garbage",
	}}
	p := NewProbe(runner, []string{".jsonl"})

	ok, err := p.Verify(context.Background(), Remote("dev@eon", "/store"))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Error("Verify = true, want false")
	}
	if len(runner.scripts) != 2 {
		t.Errorf("expected short-circuit after first malformed file, got %d commands", len(runner.scripts))
	}
}

func TestVerifyRemoteEmptyStore(t *testing.T) {
	runner := &fakeRunner{host: "dev@eon", outputs: []string{""}}
	p := NewProbe(runner, []string{".jsonl"})

	ok, err := p.Verify(context.Background(), Remote("dev@eon", "/store"))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Error("Verify = false, want true for empty remote store")
	}
}
