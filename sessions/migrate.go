package sessions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grovetools/vault/errors"
	"github.com/grovetools/vault/logging"
	"github.com/sirupsen/logrus"
)

// Migrator is a one-shot utility that walks a legacy session store tree,
// classifies each subdirectory name, and merges its session files into the
// canonical target tree. Files are copied, never moved, and a file already
// present with the same name and size is skipped, so re-running the
// migration is a no-op.
type Migrator struct {
	resolver   *Resolver
	extensions []string
	dryRun     bool
	log        *logrus.Entry
}

// NewMigrator creates a Migrator. With dryRun set it only classifies and
// reports; nothing is written.
func NewMigrator(resolver *Resolver, extensions []string, dryRun bool) *Migrator {
	return &Migrator{
		resolver:   resolver,
		extensions: extensions,
		dryRun:     dryRun,
		log:        logging.NewLogger("migrate"),
	}
}

// FileFailure records one file that could not be copied.
type FileFailure struct {
	Source string
	Dest   string
	Err    error
}

// DirReport describes the classification and outcome for one source directory.
type DirReport struct {
	Source     string
	Canonical  string
	Recognized bool
	Files      int
	Copied     int
	Skipped    int
}

// Result aggregates a migration run.
type Result struct {
	Dirs         []DirReport
	FilesCopied  int
	FilesSkipped int
	FilesFailed  int
	Failures     []FileFailure
}

// Run migrates every store directory under legacyRoot into targetRoot. A
// single file's copy failure does not abort the run; failures are
// accumulated and reported once at the end as a PARTIAL_MIGRATION error.
func (m *Migrator) Run(legacyRoot, targetRoot string) (*Result, error) {
	entries, err := os.ReadDir(legacyRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput,
			fmt.Sprintf("cannot read legacy root %s", legacyRoot))
	}

	result := &Result{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		// projects/ and legacy/ are nesting conventions, not store
		// directories; classify their children instead.
		if IsStructural(entry.Name()) {
			nested := filepath.Join(legacyRoot, entry.Name())
			children, err := os.ReadDir(nested)
			if err != nil {
				m.log.Warnf("cannot read nested directory %s: %v", nested, err)
				continue
			}
			for _, child := range children {
				if child.IsDir() {
					m.migrateDir(result, filepath.Join(nested, child.Name()), child.Name(), targetRoot)
				}
			}
			continue
		}

		m.migrateDir(result, filepath.Join(legacyRoot, entry.Name()), entry.Name(), targetRoot)
	}

	if result.FilesFailed > 0 {
		return result, errors.PartialMigration(result.FilesFailed, result.FilesCopied)
	}
	return result, nil
}

func (m *Migrator) migrateDir(result *Result, srcDir, name, targetRoot string) {
	canonical, recognized := m.resolver.CanonicalName(name)
	if !recognized {
		m.log.Warnf("unrecognized store directory name %q, treating as already canonical", name)
	}

	report := DirReport{Source: srcDir, Canonical: canonical, Recognized: recognized}

	files, err := m.sessionFilesIn(srcDir)
	if err != nil {
		m.log.Warnf("cannot read %s: %v", srcDir, err)
		result.Dirs = append(result.Dirs, report)
		return
	}
	report.Files = len(files)

	if len(files) == 0 {
		m.log.Infof("skipping %s: no session files", srcDir)
		result.Dirs = append(result.Dirs, report)
		return
	}

	destDir := filepath.Join(targetRoot, canonical)
	if !m.dryRun {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			m.log.Errorf("cannot create %s: %v", destDir, err)
			for _, f := range files {
				result.Failures = append(result.Failures, FileFailure{Source: filepath.Join(srcDir, f), Dest: destDir, Err: err})
			}
			result.FilesFailed += len(files)
			result.Dirs = append(result.Dirs, report)
			return
		}
	}

	for _, f := range files {
		src := filepath.Join(srcDir, f)
		dest := filepath.Join(destDir, f)

		same, err := sameNameAndSize(src, dest)
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{Source: src, Dest: dest, Err: err})
			result.FilesFailed++
			continue
		}
		if same {
			report.Skipped++
			result.FilesSkipped++
			continue
		}

		if !m.dryRun {
			if err := copyFile(src, dest); err != nil {
				m.log.Warnf("copy %s: %v", src, err)
				result.Failures = append(result.Failures, FileFailure{Source: src, Dest: dest, Err: err})
				result.FilesFailed++
				continue
			}
		}
		report.Copied++
		result.FilesCopied++
	}

	result.Dirs = append(result.Dirs, report)
}

// sessionFilesIn lists the session file names directly under dir.
func (m *Migrator) sessionFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isSessionFile(e.Name(), m.extensions) {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// sameNameAndSize reports whether dest already holds a file of the same size
// as src. Same name and size is the idempotency criterion: such a file was
// copied by a previous run and is not copied again.
func sameNameAndSize(src, dest string) (bool, error) {
	destInfo, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	return destInfo.Size() == srcInfo.Size(), nil
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
