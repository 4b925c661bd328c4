package tempfile

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// gamsortTempDirName is the fallback subdirectory used when no standard temp
// directory is usable.
const gamsortTempDirName = ".gamsort-tmp"

var (
	diskPreferredDir string
	dirDiscoveryOnce sync.Once
)

// GetTempDir returns dir if it is usable. Otherwise it returns a directory
// chosen once per process, preferring disk backed locations such as /var/tmp
// over /tmp which may be memory backed.
func GetTempDir(dir string) string {
	if dir != "" && isDirectoryUsable(dir) {
		return dir
	}
	dirDiscoveryOnce.Do(func() {
		diskPreferredDir = findBestDirectory()
	})
	return diskPreferredDir
}

// findBestDirectory returns the first usable candidate, falling back to the OS
// default temp dir.
func findBestDirectory() string {
	for _, candidate := range buildCandidateList() {
		if isDirectoryUsable(candidate) {
			return candidate
		}
	}
	return os.TempDir()
}

// buildCandidateList returns temp directory candidates in priority order.
func buildCandidateList() []string {
	var candidates []string

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
		candidates = append(candidates, "/var/tmp")
	case "darwin":
		candidates = append(candidates, "/var/tmp", "/private/var/tmp")
	}

	candidates = append(candidates, os.TempDir())

	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, gamsortTempDirName))
	}
	if workDir, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(workDir, gamsortTempDirName))
	}
	return candidates
}

// isDirectoryUsable checks if a directory exists and is a directory, or can be created.
// Writability is tested when the first run is created.
func isDirectoryUsable(dir string) bool {
	stat, err := os.Stat(dir)
	if err != nil {
		return os.IsNotExist(err)
	}
	return stat.IsDir()
}
