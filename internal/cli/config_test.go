package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dashgrid/pkg/config"
	"github.com/matzehuels/dashgrid/pkg/errors"
)

func TestConfigInit(t *testing.T) {
	out, err := execute(t, "config", "init")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse([]byte(out))
	if err != nil {
		t.Fatalf("stdout is not a valid config: %v\n%s", err, out)
	}
	if cfg.Name != config.Default().Name {
		t.Errorf("name = %q", cfg.Name)
	}

	path := filepath.Join(t.TempDir(), "board.toml")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init = %v", err)
	}
	if _, err := execute(t, "config", "init", "--force", path); err != nil {
		t.Errorf("init --force = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	ws := newWorkspace(t)
	if _, err := execute(t, "config", "validate", ws.config); err != nil {
		t.Errorf("validate = %v", err)
	}

	bad := filepath.Join(ws.dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("name = \"x\"\ncolour = \"red\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "validate", bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("validate bad = %v", err)
	}
	if _, err := execute(t, "config", "validate"); err == nil {
		t.Error("validate without a path succeeded")
	}
}
