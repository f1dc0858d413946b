// Package locator finds the transcript log written for the caller's
// terminal session.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

const (
	// FilePrefix starts every log file name written by the terminal logger.
	FilePrefix = "terminal_"
	// LogSuffix ends every log file name.
	LogSuffix = ".log"
	// OriginalSuffix ends the name of the unsanitized variant.
	OriginalSuffix = "_original.log"
	// DefaultDirName is the logger's folder under the system temp directory.
	DefaultDirName = "terminator_logs"
)

// ErrNotFound is returned for every failed resolution. Callers cannot tell
// a missing terminal from a missing file.
var ErrNotFound = errors.New("terminal log file not found")

// FileSystem is the set of OS queries the locator needs.
type FileSystem interface {
	Exists(path string) bool
	ReadDir(dir string) ([]fs.DirEntry, error)
	ModTime(path string) (time.Time, error)
	// TerminalLink returns the device path behind file descriptor 0,
	// e.g. "/dev/pts/3".
	TerminalLink() (string, error)
}

// Reference names one log file and which variant it is.
type Reference struct {
	Path       string
	IsOriginal bool
}

// NewReference classifies path by its suffix.
func NewReference(path string) Reference {
	return Reference{Path: path, IsOriginal: IsOriginal(path)}
}

// Sibling returns the other variant of the same session log.
func (r Reference) Sibling() Reference {
	if r.IsOriginal {
		return Reference{Path: SanitizedPath(r.Path)}
	}
	return Reference{Path: OriginalPath(r.Path), IsOriginal: true}
}

// IsOriginal reports whether path names an unsanitized log.
func IsOriginal(path string) bool {
	return strings.HasSuffix(path, OriginalSuffix)
}

// OriginalPath swaps the extension of a sanitized log path for
// "_original.log".
func OriginalPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + OriginalSuffix
}

// SanitizedPath drops the "_original" marker from an original log path.
func SanitizedPath(path string) string {
	return strings.TrimSuffix(path, OriginalSuffix) + LogSuffix
}

// Locator resolves log files in Dir.
type Locator struct {
	Dir string
	FS  FileSystem
}

// New returns a Locator over the real filesystem. An empty dir selects
// DefaultDir.
func New(dir string) *Locator {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir()
	}
	return &Locator{Dir: dir, FS: OSFileSystem{}}
}

// Locate returns the log path for the current terminal. hint is an
// explicit candidate path and may be empty.
func (l *Locator) Locate(hint string, useOriginal bool) (string, error) {
	if hint != "" && l.FS.Exists(hint) {
		path, scan := l.resolveHint(NewReference(hint), useOriginal)
		if path != "" {
			return path, nil
		}
		if !scan {
			slog.Debug("hint has no sanitized sibling", "hint", hint)
			return "", ErrNotFound
		}
	}

	link, err := l.FS.TerminalLink()
	if err != nil {
		slog.Debug("no controlling terminal", "error", err)
		return "", ErrNotFound
	}
	tag, ok := ParseSessionTag(link)
	if !ok {
		slog.Debug("terminal is not a pseudo-terminal", "link", link)
		return "", ErrNotFound
	}

	return l.newest(tag, useOriginal)
}

// resolveHint applies the hint rules. scan reports whether the caller may
// still fall back to a directory scan.
func (l *Locator) resolveHint(ref Reference, useOriginal bool) (path string, scan bool) {
	if useOriginal {
		if ref.IsOriginal {
			return ref.Path, false
		}
		if sib := ref.Sibling(); l.FS.Exists(sib.Path) {
			return sib.Path, false
		}
		return "", true
	}

	if !ref.IsOriginal {
		return ref.Path, false
	}
	if sib := ref.Sibling(); l.FS.Exists(sib.Path) {
		return sib.Path, false
	}
	return "", false
}

func (l *Locator) newest(tag SessionTag, useOriginal bool) (string, error) {
	entries, err := l.FS.ReadDir(l.Dir)
	if err != nil {
		slog.Debug("log directory unreadable", "dir", l.Dir, "error", err)
		return "", ErrNotFound
	}

	var (
		bestPath string
		bestName string
		bestTime time.Time
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !tag.Matches(name, useOriginal) {
			continue
		}

		path := filepath.Join(l.Dir, name)
		mtime, err := l.FS.ModTime(path)
		if err != nil {
			continue
		}
		if bestPath == "" || mtime.After(bestTime) || (mtime.Equal(bestTime) && name > bestName) {
			bestPath, bestName, bestTime = path, name, mtime
		}
	}

	if bestPath == "" {
		slog.Debug("no log file for session", "dir", l.Dir, "tag", string(tag), "original", useOriginal)
		return "", ErrNotFound
	}

	slog.Debug("log file selected", "path", bestPath, "mtime", bestTime)
	return bestPath, nil
}

// SessionTag identifies a pseudo-terminal, e.g. "pts7".
type SessionTag string

// ParseSessionTag extracts the tag from a device path like "/dev/pts/7".
func ParseSessionTag(link string) (SessionTag, bool) {
	const ptsDir = "/dev/pts/"

	i := strings.LastIndex(link, ptsDir)
	if i == -1 {
		return "", false
	}
	num := link[i+len(ptsDir):]
	if num == "" {
		return "", false
	}
	for _, r := range num {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return SessionTag("pts" + num), true
}

// Matches reports whether a log file name belongs to this session and
// variant.
func (t SessionTag) Matches(name string, useOriginal bool) bool {
	if !strings.HasPrefix(name, FilePrefix) {
		return false
	}
	if !strings.Contains(name, fmt.Sprintf("_%s_", t)) {
		return false
	}
	if useOriginal {
		return strings.HasSuffix(name, OriginalSuffix)
	}
	return strings.HasSuffix(name, LogSuffix) && !strings.HasSuffix(name, OriginalSuffix)
}
