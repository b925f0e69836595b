package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/cache"
)

func TestCacheCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)
	dir := filepath.Join(home, appName)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	// Clearing a cache that was never written is not an error.
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("clear empty: %v", err)
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(t.Context(), key, []byte(key), cache.TTLRender); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
}
