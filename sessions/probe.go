package sessions

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/vault/logging"
	"github.com/grovetools/vault/remote"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultSampleSize is how many session files a probe inspects.
	DefaultSampleSize = 3

	// probeLineLimit bounds how many leading records are parsed per file.
	// Session files can be large; the probe reads a prefix, not the corpus.
	probeLineLimit = 5

	// probeBufferSize accommodates long single-line JSON records.
	probeBufferSize = 1024 * 1024
)

// Probe is a cheap, non-exhaustive sanity check: it samples a handful of
// session files and verifies that their leading lines parse as JSON records.
// It is not a full-corpus validator and must not be treated as one.
type Probe struct {
	runner     remote.CommandRunner
	extensions []string
	sampleSize int
	log        *logrus.Entry
}

// NewProbe creates a Probe with the default sample size.
func NewProbe(runner remote.CommandRunner, extensions []string) *Probe {
	return &Probe{
		runner:     runner,
		extensions: extensions,
		sampleSize: DefaultSampleSize,
		log:        logging.NewLogger("probe"),
	}
}

// Verify samples up to sampleSize files at the location and returns true
// only if every sampled file parses. The first malformed or unreadable file
// short-circuits to false. The error return is reserved for control channel
// failures; a parse failure is a clean (false, nil).
func (p *Probe) Verify(ctx context.Context, loc Location) (bool, error) {
	if loc.IsRemote() {
		return p.verifyRemote(ctx, loc)
	}
	return p.verifyLocal(loc)
}

func (p *Probe) verifyLocal(loc Location) (bool, error) {
	var files []string
	err := filepath.WalkDir(loc.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isSessionFile(d.Name(), p.extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			p.log.Debugf("nothing to probe at %s", loc.Path)
			return true, nil
		}
		p.log.Warnf("probe could not enumerate %s: %v", loc.Path, err)
		return false, nil
	}

	sort.Strings(files)
	if len(files) > p.sampleSize {
		files = files[:p.sampleSize]
	}

	for _, path := range files {
		if !p.probeFile(path) {
			return false, nil
		}
	}
	return true, nil
}

func (p *Probe) probeFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		p.log.Warnf("probe could not open %s: %v", path, err)
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, probeBufferSize), probeBufferSize)

	for i := 0; i < probeLineLimit && scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			p.log.Warnf("probe found malformed record in %s (line %d)", path, i+1)
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		p.log.Warnf("probe could not read %s: %v", path, err)
		return false
	}
	return true
}

func (p *Probe) verifyRemote(ctx context.Context, loc Location) (bool, error) {
	q := remote.Quote(loc.Path)
	expr := findNameExpr(p.extensions)

	listScript := fmt.Sprintf("find %s -type f %s 2>/dev/null | sort | head -%d", q, expr, p.sampleSize)
	out, err := p.runner.Run(ctx, listScript)
	if err != nil {
		return false, err
	}
	if out == "" {
		p.log.Debugf("nothing to probe at %s", loc.String())
		return true, nil
	}

	for _, path := range strings.Split(out, "\n") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		headScript := fmt.Sprintf("head -n %d %s", probeLineLimit, remote.Quote(path))
		content, err := p.runner.Run(ctx, headScript)
		if err != nil {
			return false, err
		}
		for i, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !json.Valid([]byte(line)) {
				p.log.Warnf("probe found malformed record in %s:%s (line %d)", loc.Host, path, i+1)
				return false, nil
			}
		}
	}
	return true, nil
}
