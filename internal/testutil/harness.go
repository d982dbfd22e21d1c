// Package testutil provides shared helpers for the test suites.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/seqqap/seqqap/internal/catalog"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteCatalog writes the given files into a fresh temporary directory and
// returns its path. Keys are file names relative to the directory.
func WriteCatalog(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// LoadCatalog writes the given declaration files and loads them as a catalog.
// All tests validate against the stock "exec" runner plus any extra names.
func LoadCatalog(t *testing.T, hcl string, runners ...string) (*catalog.Catalog, error) {
	t.Helper()

	dir := WriteCatalog(t, map[string]string{"catalog.hcl": hcl})
	known := map[string]bool{"exec": true}
	for _, r := range runners {
		known[r] = true
	}
	return catalog.Load(context.Background(), known, dir)
}

// MustLoadCatalog is LoadCatalog for declarations the test expects to be valid.
func MustLoadCatalog(t *testing.T, hcl string, runners ...string) *catalog.Catalog {
	t.Helper()

	cat, err := LoadCatalog(t, hcl, runners...)
	require.NoError(t, err)
	return cat
}
