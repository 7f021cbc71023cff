package sessions

import (
	"strings"

	"github.com/grovetools/vault/logging"
	"github.com/sirupsen/logrus"
)

// Store directories were created under several naming conventions over time:
// each machine encoded the workspace's absolute path with separators replaced
// by dashes (so the same workspace got a different directory name per host),
// while the canonical form is host-independent: "~" followed by the
// home-relative path, dashes for separators. The Resolver reconciles them.
type Resolver struct {
	// homePrefixes is the ordered table of known historical conventions,
	// e.g. "-home-tca-" and "-Users-terryli-". Order matters: the first
	// matching prefix wins.
	homePrefixes []string
	log          *logrus.Entry
}

// NewResolver creates a Resolver for the given historical home prefixes.
func NewResolver(homePrefixes []string) *Resolver {
	return &Resolver{
		homePrefixes: homePrefixes,
		log:          logging.NewLogger("resolver"),
	}
}

// CanonicalName classifies a store directory name and returns its canonical
// form. The second return reports whether the name matched a known
// convention; unrecognized names pass through unchanged (with a warning at
// the call site) and are treated as already canonical.
func (r *Resolver) CanonicalName(name string) (string, bool) {
	if strings.HasPrefix(name, "~") {
		return name, true
	}

	for _, prefix := range r.homePrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return "~" + name[len(prefix):], true
		}
	}

	return name, false
}

// IsStructural reports whether a directory is one of the known nesting
// conventions that hold store directories one level down instead of being a
// store directory themselves.
func IsStructural(name string) bool {
	return name == "projects" || name == "legacy"
}
