package diskcache

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/mchtech/tilecache/cachetest"
)

func TestDiskCache(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "tilecache")
	if err != nil {
		t.Fatalf("TempDir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	backend := New(tempDir)

	cachetest.Backend(t, backend)
	cachetest.NegativeEntry(t, backend)
}
