package x11

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ProcFS resolves process executable names from a procfs mount.
type ProcFS struct {
	Root string
}

func NewProcFS() ProcFS {
	return ProcFS{Root: "/proc"}
}

// ExecutableName returns the file name of pid's executable. argv[0] is
// preferred so processes running under a compatibility layer report the
// program they run rather than the loader.
func (p ProcFS) ExecutableName(pid uint32) (string, error) {
	if pid == 0 {
		return "", errors.New("no pid")
	}
	dir := filepath.Join(p.Root, strconv.FormatUint(uint64(pid), 10))

	cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err == nil {
		argv0, _, _ := bytes.Cut(cmdline, []byte{0})
		if name := baseName(string(argv0)); name != "" {
			return name, nil
		}
	}

	exe, err := os.Readlink(filepath.Join(dir, "exe"))
	if err != nil {
		return "", errors.Wrapf(err, "resolve executable for pid %d", pid)
	}
	name := baseName(exe)
	if name == "" {
		return "", errors.Errorf("empty executable path for pid %d", pid)
	}
	return name, nil
}

// baseName handles both slash styles since argv[0] may be a Windows path.
func baseName(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}
