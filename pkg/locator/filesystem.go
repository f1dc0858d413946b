package locator

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is where the terminal logger writes its files.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DefaultDirName)
}

// OSFileSystem implements FileSystem on the host.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}

func (OSFileSystem) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (OSFileSystem) TerminalLink() (string, error) {
	return stdinTerminalLink()
}
