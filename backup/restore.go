package backup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/grovetools/vault/config"
	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/grovetools/vault/remote"
	"github.com/grovetools/vault/sessions"
	"github.com/sirupsen/logrus"
)

// Confirmer is the human-in-the-loop gate for restores. Implementations must
// only return true for an exact match of the required phrase.
type Confirmer interface {
	Confirm(prompt, phrase string) (bool, error)
}

// StdioConfirmer reads the confirmation phrase from an input stream,
// normally stdin.
type StdioConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints the prompt and requires the exact phrase in response.
func (c *StdioConfirmer) Confirm(prompt, phrase string) (bool, error) {
	fmt.Fprintf(c.Out, "%s\nType '%s' to proceed: ", prompt, phrase)
	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return strings.TrimRight(line, "\r\n") == phrase, nil
}

// RestoreOptions selects which sides of a backup to restore.
type RestoreOptions struct {
	Local  bool
	Remote bool
}

// RestoreResult reports what a completed restore did.
type RestoreResult struct {
	Timestamp        string
	Manifest         *Manifest
	PreRestoreBackup *Manifest
	// LocalMovedTo / RemoteMovedTo are the rename-based backups of the
	// previous live directories. They are never deleted.
	LocalMovedTo  string
	RemoteMovedTo string
	LocalCount    int
	RemoteCount   int
}

// Restorer replaces the live session stores with a chosen backup's content.
// It is the one operation in this tool capable of data loss if misused,
// hence the validation, confirmation, and safety-backup steps around it.
type Restorer struct {
	cfg       *config.Config
	runner    remote.CommandRunner
	counter   *sessions.Counter
	manifests *ManifestStore
	backups   *Orchestrator
	confirm   Confirmer
	log       *logrus.Entry
}

// NewRestorer wires a Restorer from configuration, a control channel, and a
// confirmation gate.
func NewRestorer(cfg *config.Config, runner remote.CommandRunner, confirm Confirmer) *Restorer {
	return &Restorer{
		cfg:       cfg,
		runner:    runner,
		counter:   sessions.NewCounter(runner, cfg.SessionExtensions),
		manifests: NewManifestStore(cfg.Backup.ManifestDir),
		backups:   NewOrchestrator(cfg, runner),
		confirm:   confirm,
		log:       logging.NewLogger("restore"),
	}
}

// ConfirmationPhrase returns the exact phrase the operator must type. It
// embeds the timestamp so a reflexive "yes" cannot confirm the wrong backup.
func ConfirmationPhrase(timestamp string) string {
	return "RESTORE " + timestamp
}

// Restore replaces the live store(s) with the backup identified by
// timestamp. Nothing is mutated until the manifest is validated, the backup
// directories are re-checked on disk, the operator has typed the exact
// confirmation phrase, and a safety backup of the current state has
// succeeded. The previous live directories are preserved as
// <dir>.backup.<time> siblings; a post-restore count mismatch is reported
// but never auto-rolled-back.
func (r *Restorer) Restore(ctx context.Context, timestamp string, opts RestoreOptions) (*RestoreResult, error) {
	manifest, err := r.manifests.Read(timestamp)
	if err != nil {
		return nil, err
	}

	// Manifests and backups can diverge (backup deleted, manifest kept);
	// catch that before any destructive action.
	if opts.Local {
		if manifest.Local.Path == "" {
			return nil, errors.BackupNotFound("", "(no local snapshot recorded in manifest)")
		}
		if _, err := os.Stat(manifest.Local.Path); err != nil {
			return nil, errors.BackupNotFound("", manifest.Local.Path)
		}
	}
	if opts.Remote {
		if manifest.Remote.Path == "" {
			return nil, errors.BackupNotFound(r.cfg.Remote.Host, "(no remote snapshot recorded in manifest)")
		}
		script := fmt.Sprintf("if [ -d %s ]; then echo OK; else echo MISSING; fi", remote.Quote(manifest.Remote.Path))
		out, err := r.runner.Run(ctx, script)
		if err != nil {
			return nil, err
		}
		if out != "OK" {
			return nil, errors.BackupNotFound(manifest.Remote.Host, manifest.Remote.Path)
		}
	}

	prompt := fmt.Sprintf(
		"About to replace the live session store(s) with backup %s.\nThe current state will be safety-backed-up first.",
		timestamp)
	ok, err := r.confirm.Confirm(prompt, ConfirmationPhrase(timestamp))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "could not read confirmation")
	}
	if !ok {
		return nil, errors.UserCancelled()
	}

	// Safety backup of the about-to-be-overwritten state. If the current
	// state cannot be backed up, do not proceed.
	preRestore, err := r.backups.CreateBackup(ctx)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return nil, errors.Wrap(err, code, "pre-restore safety backup failed, aborting restore")
	}

	result := &RestoreResult{
		Timestamp:        timestamp,
		Manifest:         manifest,
		PreRestoreBackup: preRestore,
	}
	moveStamp := time.Now().Format(TimestampLayout)

	if opts.Local {
		movedTo, err := r.restoreLocal(manifest.Local.Path, moveStamp)
		if err != nil {
			return result, err
		}
		result.LocalMovedTo = movedTo
	}

	if opts.Remote {
		movedTo, err := r.restoreRemote(ctx, manifest.Remote.Path, moveStamp)
		if err != nil {
			return result, err
		}
		result.RemoteMovedTo = movedTo
	}

	// Post-verify: recount the live stores against the manifest. A
	// mismatch is an error, but rolling back automatically was judged too
	// risky; the operator keeps both the rename-based backup and the
	// safety backup to revert from.
	if opts.Local {
		count, _, err := r.counter.CountAndSize(ctx, sessions.Local(r.cfg.Local.SessionsRoot))
		if err != nil {
			return result, err
		}
		result.LocalCount = count
		if count != manifest.Local.SessionCount {
			return result, errors.CountMismatch("local", manifest.Local.SessionCount, count).
				WithDetail("pre_restore_backup", preRestore.Timestamp)
		}
	}
	if opts.Remote {
		count, _, err := r.counter.CountAndSize(ctx, sessions.Remote(r.cfg.Remote.Host, r.cfg.Remote.SessionsRoot))
		if err != nil {
			return result, err
		}
		result.RemoteCount = count
		if count != manifest.Remote.SessionCount {
			return result, errors.CountMismatch("remote", manifest.Remote.SessionCount, count).
				WithDetail("host", r.cfg.Remote.Host).
				WithDetail("pre_restore_backup", preRestore.Timestamp)
		}
	}

	r.log.Infof("restore of backup %s complete", timestamp)
	return result, nil
}

// restoreLocal renames the live directory aside and copies the backup's
// content into a fresh live path. The rename is the atomicity boundary:
// the previous state exists in full at the renamed path before anything is
// written, and it is never deleted.
func (r *Restorer) restoreLocal(backupPath, moveStamp string) (string, error) {
	live := r.cfg.Local.SessionsRoot

	movedTo := ""
	if _, err := os.Stat(live); err == nil {
		movedTo = live + ".backup." + moveStamp
		if err := os.Rename(live, movedTo); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeInternal,
				fmt.Sprintf("could not move live store aside to %s", movedTo))
		}
		r.log.Infof("previous live store preserved at %s", movedTo)
	}

	if err := copyTree(backupPath, live); err != nil {
		return movedTo, errors.Wrap(err, errors.ErrCodeInternal,
			fmt.Sprintf("restore copy into %s failed", live))
	}
	return movedTo, nil
}

func (r *Restorer) restoreRemote(ctx context.Context, backupPath, moveStamp string) (string, error) {
	live := r.cfg.Remote.SessionsRoot
	movedTo := live + ".backup." + moveStamp

	script := fmt.Sprintf(
		"if [ -d %s ]; then mv %s %s && echo MOVED; else echo FRESH; fi && mkdir -p %s && cp -R %s %s && echo RESTORED",
		remote.Quote(live), remote.Quote(live), remote.Quote(movedTo),
		remote.Quote(live), remote.Quote(backupPath+"/."), remote.Quote(live+"/"))

	out, err := r.runner.Run(ctx, script)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(out, "RESTORED") {
		return "", errors.RemoteCommandFailed(r.cfg.Remote.Host, script,
			fmt.Errorf("unexpected output %q", out))
	}
	if !strings.HasPrefix(out, "MOVED") {
		movedTo = ""
	}
	return movedTo, nil
}
