package locator

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"
)

// fakeFS serves fixture files and a fabricated terminal link.
type fakeFS struct {
	files        fstest.MapFS
	link         string
	linkErr      error
	readDirCalls int
}

func (f *fakeFS) Exists(path string) bool {
	_, err := fs.Stat(f.files, path)
	return err == nil
}

func (f *fakeFS) ReadDir(dir string) ([]fs.DirEntry, error) {
	f.readDirCalls++
	return fs.ReadDir(f.files, dir)
}

func (f *fakeFS) ModTime(path string) (time.Time, error) {
	info, err := fs.Stat(f.files, path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (f *fakeFS) TerminalLink() (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return f.link, nil
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func file(age time.Duration) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("x"), ModTime: baseTime.Add(-age)}
}

func newTestLocator(files fstest.MapFS, link string) (*Locator, *fakeFS) {
	ffs := &fakeFS{files: files, link: link}
	return &Locator{Dir: "logs", FS: ffs}, ffs
}

func TestLocate_SessionScanSelectsVariant(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_1_pts7_20240101_000000.log":          file(0),
		"logs/terminal_1_pts7_20240101_000000_original.log": file(0),
	}
	loc, _ := newTestLocator(files, "/dev/pts/7")

	got, err := loc.Locate("", false)
	if err != nil {
		t.Fatalf("Locate(sanitized) error: %v", err)
	}
	if want := filepath.Join("logs", "terminal_1_pts7_20240101_000000.log"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got, err = loc.Locate("", true)
	if err != nil {
		t.Fatalf("Locate(original) error: %v", err)
	}
	if want := filepath.Join("logs", "terminal_1_pts7_20240101_000000_original.log"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLocate_NewestWins(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_3_pts7_20240101_000000.log":  file(2 * time.Hour),
		"logs/terminal_9_pts7_20240102_000000.log":  file(time.Minute),
		"logs/terminal_4_pts7_20240103_000000.log":  file(time.Hour),
		"logs/terminal_5_pts70_20240104_000000.log": file(0),
		"logs/terminal_6_pts17_20240104_000000.log": file(0),
		"logs/other_1_pts7_20240104_000000.log":     file(0),
		"logs/terminal_1_pts7_20240104_000000.txt":  file(0),
	}
	loc, _ := newTestLocator(files, "/dev/pts/7")

	got, err := loc.Locate("", false)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if want := filepath.Join("logs", "terminal_9_pts7_20240102_000000.log"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLocate_TieBreaksOnName(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_1_pts2_20240101_000000.log": file(0),
		"logs/terminal_2_pts2_20240101_000000.log": file(0),
	}
	loc, _ := newTestLocator(files, "/dev/pts/2")

	got, err := loc.Locate("", false)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if want := filepath.Join("logs", "terminal_2_pts2_20240101_000000.log"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLocate_SanitizedNeverSubstitutedByOriginal(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_1_pts7_20240101_000000_original.log": file(0),
	}
	loc, _ := newTestLocator(files, "/dev/pts/7")

	if _, err := loc.Locate("", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_NoTerminal(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_1_pts7_20240101_000000.log": file(0),
	}
	loc, ffs := newTestLocator(files, "")
	ffs.linkErr = errors.New("stdin is not a terminal")

	if _, err := loc.Locate("", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ffs.readDirCalls != 0 {
		t.Errorf("expected no directory scan, got %d", ffs.readDirCalls)
	}
}

func TestLocate_NotAPseudoTerminal(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_1_pts7_20240101_000000.log": file(0),
	}
	loc, _ := newTestLocator(files, "/dev/tty1")

	if _, err := loc.Locate("", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_MissingDirectory(t *testing.T) {
	loc, _ := newTestLocator(fstest.MapFS{}, "/dev/pts/7")

	if _, err := loc.Locate("", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_HintOriginalToSanitized(t *testing.T) {
	files := fstest.MapFS{
		"hint/foo_original.log": file(0),
		"hint/foo.log":          file(0),
	}
	loc, ffs := newTestLocator(files, "/dev/pts/7")

	got, err := loc.Locate("hint/foo_original.log", false)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != "hint/foo.log" {
		t.Errorf("expected %q, got %q", "hint/foo.log", got)
	}
	if ffs.readDirCalls != 0 {
		t.Errorf("expected no directory scan, got %d", ffs.readDirCalls)
	}
}

func TestLocate_HintOriginalWithoutSanitizedIsNotFound(t *testing.T) {
	files := fstest.MapFS{
		"hint/foo_original.log":                    file(0),
		"logs/terminal_1_pts7_20240101_000000.log": file(0),
	}
	loc, ffs := newTestLocator(files, "/dev/pts/7")

	if _, err := loc.Locate("hint/foo_original.log", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ffs.readDirCalls != 0 {
		t.Errorf("expected no directory scan, got %d", ffs.readDirCalls)
	}
}

func TestLocate_HintSanitizedUnchanged(t *testing.T) {
	files := fstest.MapFS{"hint/foo.log": file(0)}
	loc, _ := newTestLocator(files, "")

	got, err := loc.Locate("hint/foo.log", false)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != "hint/foo.log" {
		t.Errorf("expected %q, got %q", "hint/foo.log", got)
	}
}

func TestLocate_HintOriginalRequested(t *testing.T) {
	files := fstest.MapFS{
		"hint/foo.log":          file(0),
		"hint/foo_original.log": file(0),
	}
	loc, _ := newTestLocator(files, "")

	got, err := loc.Locate("hint/foo.log", true)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != "hint/foo_original.log" {
		t.Errorf("expected %q, got %q", "hint/foo_original.log", got)
	}

	got, err = loc.Locate("hint/foo_original.log", true)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != "hint/foo_original.log" {
		t.Errorf("expected hint unchanged, got %q", got)
	}
}

func TestLocate_HintOriginalMissingFallsBackToScan(t *testing.T) {
	files := fstest.MapFS{
		"hint/foo.log": file(0),
		"logs/terminal_1_pts7_20240101_000000_original.log": file(0),
	}
	loc, ffs := newTestLocator(files, "/dev/pts/7")

	got, err := loc.Locate("hint/foo.log", true)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if want := filepath.Join("logs", "terminal_1_pts7_20240101_000000_original.log"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if ffs.readDirCalls != 1 {
		t.Errorf("expected one directory scan, got %d", ffs.readDirCalls)
	}
}

func TestLocate_MissingHintIgnored(t *testing.T) {
	files := fstest.MapFS{
		"logs/terminal_1_pts7_20240101_000000.log": file(0),
	}
	loc, _ := newTestLocator(files, "/dev/pts/7")

	got, err := loc.Locate("hint/gone.log", false)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if want := filepath.Join("logs", "terminal_1_pts7_20240101_000000.log"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParseSessionTag(t *testing.T) {
	tests := []struct {
		link string
		want SessionTag
		ok   bool
	}{
		{"/dev/pts/7", "pts7", true},
		{"/dev/pts/123", "pts123", true},
		{"/dev/tty1", "", false},
		{"/dev/pts/", "", false},
		{"/dev/pts/ptmx", "", false},
		{"pipe:[12345]", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSessionTag(tt.link)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseSessionTag(%q) = (%q, %v), expected (%q, %v)", tt.link, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSiblingPaths(t *testing.T) {
	if got := OriginalPath("/tmp/logs/foo.log"); got != "/tmp/logs/foo_original.log" {
		t.Errorf("OriginalPath: got %q", got)
	}
	if got := SanitizedPath("/tmp/logs/foo_original.log"); got != "/tmp/logs/foo.log" {
		t.Errorf("SanitizedPath: got %q", got)
	}

	ref := NewReference("/tmp/logs/foo_original.log")
	if !ref.IsOriginal {
		t.Fatal("expected original reference")
	}
	if sib := ref.Sibling(); sib.IsOriginal || sib.Path != "/tmp/logs/foo.log" {
		t.Errorf("unexpected sibling: %+v", sib)
	}
}

func TestOSFileSystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terminal_1_pts4_20240101_000000.log")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write log file: %v", err)
	}
	stamp := baseTime.Add(time.Hour)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("Chtimes() error: %v", err)
	}

	var osfs OSFileSystem
	if !osfs.Exists(path) {
		t.Fatal("expected file to exist")
	}
	if osfs.Exists(filepath.Join(dir, "missing.log")) {
		t.Fatal("expected missing file not to exist")
	}
	mtime, err := osfs.ModTime(path)
	if err != nil {
		t.Fatalf("ModTime() error: %v", err)
	}
	if !mtime.Equal(stamp) {
		t.Errorf("expected mtime %v, got %v", stamp, mtime)
	}

	loc := &Locator{Dir: dir, FS: &linkOverride{OSFileSystem: osfs, link: "/dev/pts/4"}}
	got, err := loc.Locate("", false)
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

type linkOverride struct {
	OSFileSystem
	link string
}

func (l *linkOverride) TerminalLink() (string, error) { return l.link, nil }

func TestNewDefaultsDir(t *testing.T) {
	if got := New("").Dir; got != DefaultDir() {
		t.Errorf("expected default dir %q, got %q", DefaultDir(), got)
	}
	if got := New("/var/log/terms").Dir; got != "/var/log/terms" {
		t.Errorf("expected explicit dir, got %q", got)
	}
}
