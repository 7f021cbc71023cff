// Package sessions knows how to count, sample, and reorganize agent session
// stores: one directory per workspace under a store root, each holding
// append-only .jsonl session files. This package never mutates session file
// content, only container locations.
package sessions

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Location addresses a session store directory on either machine. An empty
// Host means the path is on the invoking machine.
type Location struct {
	Host string
	Path string
}

// Local creates a Location on the invoking machine.
func Local(path string) Location {
	return Location{Path: path}
}

// Remote creates a Location on the given host.
func Remote(host, path string) Location {
	return Location{Host: host, Path: path}
}

// IsRemote reports whether the location lives on the remote host.
func (l Location) IsRemote() bool { return l.Host != "" }

// String renders the location as host:path or a plain path.
func (l Location) String() string {
	if l.IsRemote() {
		return fmt.Sprintf("%s:%s", l.Host, l.Path)
	}
	return l.Path
}

// isSessionFile reports whether a filename carries one of the session file
// extensions.
func isSessionFile(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
