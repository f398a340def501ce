package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/config"
)

func TestHolder_GetAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metersplit.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	if got := h.Get().Server.Port; got != 9090 {
		t.Fatalf("port = %d, want 9090", got)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := h.Get().Server.Port; got != 7070 {
		t.Errorf("port after reload = %d, want 7070", got)
	}
}

func TestHolder_ReloadKeepsOldOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metersplit.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("{{{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("Reload should fail on broken file")
	}
	if got := h.Get().Server.Port; got != 9090 {
		t.Errorf("port = %d, previous config must survive a failed reload", got)
	}
}

func TestHolder_OnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metersplit.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Stop()

	var seen int
	h.OnChange(func(c *config.Config) { seen = c.Server.Port })

	if err := os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err != nil {
		t.Fatal(err)
	}
	if seen != 8081 {
		t.Errorf("listener saw port %d, want 8081", seen)
	}
}
