package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/vault/config"
	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/grovetools/vault/remote"
	"github.com/grovetools/vault/sessions"
	"github.com/sirupsen/logrus"
)

// Orchestrator runs the full backup pipeline: snapshot both machines, verify
// each snapshot with an independent recount, integrity-check a sample, and
// persist a manifest. Any step's failure aborts the run; a backup that
// cannot be trusted is worse than no backup.
type Orchestrator struct {
	cfg       *config.Config
	runner    remote.CommandRunner
	counter   *sessions.Counter
	probe     *sessions.Probe
	writer    *SnapshotWriter
	manifests *ManifestStore
	log       *logrus.Entry
}

// NewOrchestrator wires the pipeline from configuration and a control channel.
func NewOrchestrator(cfg *config.Config, runner remote.CommandRunner) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		runner:    runner,
		counter:   sessions.NewCounter(runner, cfg.SessionExtensions),
		probe:     sessions.NewProbe(runner, cfg.SessionExtensions),
		writer:    NewSnapshotWriter(runner),
		manifests: NewManifestStore(cfg.Backup.ManifestDir),
		log:       logging.NewLogger("backup"),
	}
}

// Manifests exposes the orchestrator's manifest store.
func (o *Orchestrator) Manifests() *ManifestStore { return o.manifests }

// CreateBackup snapshots both session stores and returns the written
// manifest. Retrying after a failure is safe: each run uses a fresh
// timestamp, and snapshot directories that failed verification are renamed
// with an .invalid suffix so they can be inspected but never restored from.
func (o *Orchestrator) CreateBackup(ctx context.Context) (*Manifest, error) {
	timestamp := o.newTimestamp()
	o.log.Infof("creating backup %s", timestamp)

	manifest := &Manifest{
		BackupID:       uuid.NewString(),
		Timestamp:      timestamp,
		CreatedAt:      time.Now(),
		RestoreCommand: fmt.Sprintf("vault restore %s", timestamp),
	}

	// Local side: count the live store first, snapshot, then recount the
	// snapshot independently. The manifest records what was written, not
	// what was requested.
	localSrc := sessions.Local(o.cfg.Local.SessionsRoot)
	liveCount, _, err := o.counter.CountAndSize(ctx, localSrc)
	if err != nil {
		return nil, err
	}

	localDest, err := o.writer.Snapshot(ctx, localSrc, o.cfg.Backup.Root, timestamp)
	if err != nil {
		return nil, err
	}

	if localDest != "" {
		destCount, destSize, err := o.counter.CountAndSize(ctx, sessions.Local(localDest))
		if err != nil {
			return nil, err
		}
		if destCount != liveCount {
			o.markInvalidLocal(localDest)
			return nil, errors.CountMismatch("local", liveCount, destCount).
				WithDetail("snapshot", localDest)
		}
		manifest.Local = SideInfo{Path: localDest, SessionCount: destCount, SizeBytes: destSize}
	} else if liveCount != 0 {
		return nil, errors.CountMismatch("local", liveCount, 0).
			WithDetail("reason", "snapshot produced no destination")
	}

	// Remote side, same shape over the control channel.
	if o.cfg.Remote.Host != "" {
		remoteSrc := sessions.Remote(o.cfg.Remote.Host, o.cfg.Remote.SessionsRoot)
		remoteLive, _, err := o.counter.CountAndSize(ctx, remoteSrc)
		if err != nil {
			return nil, err
		}

		remoteDest, err := o.writer.Snapshot(ctx, remoteSrc, o.cfg.Remote.BackupRoot, timestamp)
		if err != nil {
			return nil, err
		}

		if remoteDest != "" {
			destCount, destSize, err := o.counter.CountAndSize(ctx, sessions.Remote(o.cfg.Remote.Host, remoteDest))
			if err != nil {
				return nil, err
			}
			if destCount != remoteLive {
				o.markInvalidRemote(ctx, remoteDest)
				return nil, errors.CountMismatch("remote", remoteLive, destCount).
					WithDetail("snapshot", remoteDest).
					WithDetail("host", o.cfg.Remote.Host)
			}
			manifest.Remote = SideInfo{
				Host:         o.cfg.Remote.Host,
				Path:         remoteDest,
				SessionCount: destCount,
				SizeBytes:    destSize,
			}
		} else if remoteLive != 0 {
			return nil, errors.CountMismatch("remote", remoteLive, 0).
				WithDetail("reason", "snapshot produced no destination")
		}
	} else {
		o.log.Warn("no remote host configured, backing up the local store only")
	}

	// Integrity check: sample the snapshot we will restore from. A backup
	// that is empty on both sides has nothing to probe, and its manifest
	// must not claim a verification that never ran.
	if probeLoc, ok := o.probeLocation(manifest); ok {
		verified, err := o.probe.Verify(ctx, probeLoc)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, errors.New(errors.ErrCodeIntegrityFailure,
				fmt.Sprintf("sampled session files in %s failed to parse", probeLoc.String()))
		}
		manifest.IntegrityVerified = true
	} else {
		o.log.Info("backup is empty on both sides, skipping integrity check")
	}

	path, err := o.manifests.Write(manifest)
	if err != nil {
		return nil, err
	}
	o.log.Infof("backup %s complete, manifest at %s", timestamp, path)
	return manifest, nil
}

// probeLocation picks the snapshot to integrity-check: the local one when it
// exists, otherwise the remote one. An all-empty backup has nothing to probe.
func (o *Orchestrator) probeLocation(m *Manifest) (sessions.Location, bool) {
	if m.Local.Path != "" {
		return sessions.Local(m.Local.Path), true
	}
	if m.Remote.Path != "" {
		return sessions.Remote(m.Remote.Host, m.Remote.Path), true
	}
	return sessions.Location{}, false
}

// newTimestamp returns a timestamp no existing manifest uses. Backups are
// keyed by second; two runs inside the same second (a backup followed by a
// restore's safety backup) must not collide.
func (o *Orchestrator) newTimestamp() string {
	for {
		ts := time.Now().Format(TimestampLayout)
		if !o.manifests.Exists(ts) {
			return ts
		}
		time.Sleep(250 * time.Millisecond)
	}
}

// markInvalidLocal renames a snapshot that failed verification so it is kept
// for inspection but can never be restored from. Best effort: the rename
// failing must not mask the verification error.
func (o *Orchestrator) markInvalidLocal(dest string) {
	if err := os.Rename(dest, dest+".invalid"); err != nil {
		o.log.Warnf("could not mark %s as invalid: %v", dest, err)
	} else {
		o.log.Warnf("snapshot failed verification, kept as %s.invalid", dest)
	}
}

func (o *Orchestrator) markInvalidRemote(ctx context.Context, dest string) {
	script := fmt.Sprintf("mv %s %s", remote.Quote(dest), remote.Quote(dest+".invalid"))
	if _, err := o.runner.Run(ctx, script); err != nil {
		o.log.Warnf("could not mark %s:%s as invalid: %v", o.cfg.Remote.Host, dest, err)
	} else {
		o.log.Warnf("snapshot failed verification, kept as %s:%s.invalid", o.cfg.Remote.Host, dest)
	}
}
