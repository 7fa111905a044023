package x11

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProc(t *testing.T, root, pid, cmdline string) string {
	t.Helper()
	dir := filepath.Join(root, pid)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(cmdline), 0o644))
	return dir
}

func TestProcFS_ExecutableName(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    string
	}{
		{"unix path", "/usr/bin/firefox\x00--new-window\x00", "firefox"},
		{"windows path", "C:\\Program Files\\Destiny 2\\destiny2.exe\x00-dx12\x00", "destiny2.exe"},
		{"bare name", "game.exe\x00", "game.exe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeProc(t, root, "1234", tt.cmdline)

			name, err := ProcFS{Root: root}.ExecutableName(1234)

			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestProcFS_FallsBackToExeLink(t *testing.T) {
	root := t.TempDir()
	dir := writeProc(t, root, "99", "")
	require.NoError(t, os.Symlink("/opt/game/bin/game.exe", filepath.Join(dir, "exe")))

	name, err := ProcFS{Root: root}.ExecutableName(99)

	require.NoError(t, err)
	assert.Equal(t, "game.exe", name)
}

func TestProcFS_MissingProcess(t *testing.T) {
	_, err := ProcFS{Root: t.TempDir()}.ExecutableName(4242)
	assert.Error(t, err)

	_, err = NewProcFS().ExecutableName(0)
	assert.Error(t, err)
}
