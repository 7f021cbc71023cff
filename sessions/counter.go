package sessions

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/grovetools/vault/remote"
	"github.com/sirupsen/logrus"
)

// Counter counts session files and measures their aggregate size, locally or
// over the control channel.
type Counter struct {
	runner     remote.CommandRunner
	extensions []string
	log        *logrus.Entry
}

// NewCounter creates a Counter. The runner is only consulted for remote
// locations.
func NewCounter(runner remote.CommandRunner, extensions []string) *Counter {
	return &Counter{
		runner:     runner,
		extensions: extensions,
		log:        logging.NewLogger("counter"),
	}
}

// CountAndSize returns the number of session files under the location and
// their total size in bytes. A missing directory counts as an empty store.
// A count that cannot be determined (unreachable host, garbled output) is a
// hard failure: reporting it as zero would be indistinguishable from an
// empty store and could mask a connectivity problem.
func (c *Counter) CountAndSize(ctx context.Context, loc Location) (int, int64, error) {
	if loc.IsRemote() {
		return c.countRemote(ctx, loc)
	}
	return c.countLocal(loc)
}

func (c *Counter) countLocal(loc Location) (int, int64, error) {
	if _, err := os.Stat(loc.Path); os.IsNotExist(err) {
		return 0, 0, nil
	}

	var count int
	var size int64
	err := filepath.WalkDir(loc.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSessionFile(d.Name(), c.extensions) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		count++
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.ErrCodeInternal,
			fmt.Sprintf("failed to count sessions under %s", loc.Path))
	}
	return count, size, nil
}

func (c *Counter) countRemote(ctx context.Context, loc Location) (int, int64, error) {
	q := remote.Quote(loc.Path)

	countScript := fmt.Sprintf("find %s -type f %s 2>/dev/null | wc -l", q, findNameExpr(c.extensions))
	out, err := c.runner.Run(ctx, countScript)
	if err != nil {
		return 0, 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, 0, errors.RemoteCommandFailed(loc.Host, countScript,
			fmt.Errorf("non-numeric count output %q", out))
	}

	// du -sk is the portable intersection of GNU and BSD; sizes are
	// recorded in KiB granularity and are informational. Verification
	// gates on counts.
	sizeScript := fmt.Sprintf("if [ -d %s ]; then du -sk %s | cut -f1; else echo 0; fi", q, q)
	out, err = c.runner.Run(ctx, sizeScript)
	if err != nil {
		return 0, 0, err
	}
	kib, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if err != nil {
		return 0, 0, errors.RemoteCommandFailed(loc.Host, sizeScript,
			fmt.Errorf("non-numeric size output %q", out))
	}

	c.log.WithField("location", loc.String()).Debugf("remote store: %d sessions, %d KiB", count, kib)
	return count, kib * 1024, nil
}

// findNameExpr builds the find(1) name filter for the session extensions,
// e.g. `\( -name '*.jsonl' -o -name '*.ndjson' \)`.
func findNameExpr(extensions []string) string {
	parts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		parts = append(parts, fmt.Sprintf("-name '*%s'", ext))
	}
	return `\( ` + strings.Join(parts, " -o ") + ` \)`
}
