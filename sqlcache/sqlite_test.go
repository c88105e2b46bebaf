package sqlcache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchtech/tilecache/cachetest"
)

func TestSQLite(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "tilecache")
	if err != nil {
		t.Fatalf("TempDir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	backend, err := NewSQLite(filepath.Join(tempDir, "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer backend.Close()

	cachetest.Backend(t, backend)
	cachetest.NegativeEntry(t, backend)
}
