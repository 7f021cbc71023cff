package backup

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/grovetools/vault/remote"
	"github.com/grovetools/vault/sessions"
	"github.com/sirupsen/logrus"
)

// SnapshotWriter copies a session store directory into a timestamped backup
// location. Local sources are copied on the filesystem; remote sources are
// copied by a single remote-side command, so session data never transits the
// invoking machine.
type SnapshotWriter struct {
	runner remote.CommandRunner
	log    *logrus.Entry
}

// NewSnapshotWriter creates a SnapshotWriter.
func NewSnapshotWriter(runner remote.CommandRunner) *SnapshotWriter {
	return &SnapshotWriter{
		runner: runner,
		log:    logging.NewLogger("snapshot"),
	}
}

// Snapshot copies src into destRoot/local_<ts> or destRoot/remote_<ts>
// depending on the side, and returns the destination path. A missing source
// is not an error: "nothing to back up yet" is an expected state on a
// freshly provisioned machine, so it returns an empty path and a warning.
func (w *SnapshotWriter) Snapshot(ctx context.Context, src sessions.Location, destRoot, timestamp string) (string, error) {
	if src.IsRemote() {
		return w.snapshotRemote(ctx, src, destRoot, timestamp)
	}
	return w.snapshotLocal(src, destRoot, timestamp)
}

func (w *SnapshotWriter) snapshotLocal(src sessions.Location, destRoot, timestamp string) (string, error) {
	if _, err := os.Stat(src.Path); os.IsNotExist(err) {
		w.log.Warnf("local session store %s does not exist, nothing to back up", src.Path)
		return "", nil
	}

	dest := filepath.Join(destRoot, "local_"+timestamp)
	if err := copyTree(src.Path, dest); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal,
			fmt.Sprintf("local snapshot to %s failed", dest))
	}
	w.log.Infof("local snapshot written: %s", dest)
	return dest, nil
}

func (w *SnapshotWriter) snapshotRemote(ctx context.Context, src sessions.Location, destRoot, timestamp string) (string, error) {
	// Remote paths are always slash-separated regardless of the local OS.
	dest := path.Join(destRoot, "remote_"+timestamp)

	script := fmt.Sprintf(
		"if [ -d %s ]; then mkdir -p %s && cp -R %s %s && echo COPIED; else echo MISSING; fi",
		remote.Quote(src.Path), remote.Quote(destRoot), remote.Quote(src.Path), remote.Quote(dest))

	out, err := w.runner.Run(ctx, script)
	if err != nil {
		return "", err
	}

	switch out {
	case "COPIED":
		w.log.Infof("remote snapshot written: %s:%s", src.Host, dest)
		return dest, nil
	case "MISSING":
		w.log.Warnf("remote session store %s:%s does not exist, nothing to back up", src.Host, src.Path)
		return "", nil
	default:
		return "", errors.RemoteCommandFailed(src.Host, script,
			fmt.Errorf("unexpected output %q", out))
	}
}

// copyTree recursively copies the contents of srcDir into destDir, creating
// destDir if needed.
func copyTree(srcDir, destDir string) error {
	return filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
