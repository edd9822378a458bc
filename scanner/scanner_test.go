package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

func TestScan(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	writeTree(t, tempDir, map[string]string{
		"access.log":            "1.2.3.4 GET /",
		"notes.txt":             "a=b",
		"config.yaml":           "rules: []",
		"nested/app.log":        "x y",
		".git/objects/blob.log": "ignored",
	})

	scannedFiles, err := New(tempDir, DefaultExtensions...).Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range scannedFiles {
		paths = append(paths, file.Path)
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}

	assert.Equal(t, []string{
		filepath.Join(tempDir, "access.log"),
		filepath.Join(tempDir, "nested", "app.log"),
		filepath.Join(tempDir, "notes.txt"),
	}, paths)
}

func TestScan_NoExtensions(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	writeTree(t, tempDir, map[string]string{
		"a.log":    "x",
		"b.yaml":   "y",
		"c/d.json": "z",
	})

	scannedFiles, err := New(tempDir).Scan()
	require.NoError(t, err)
	assert.Len(t, scannedFiles, 3)
}

func TestScan_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
