// Package testutil provides shared test helpers used across integration
// and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes contents under dir, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir string, name string, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}
