package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSSHServerUsesDefaults(t *testing.T) {
	def := DefaultSSHServerConfig()
	if def.Address != ":23234" || def.IdleTimeout != 30*time.Minute {
		t.Errorf("defaults = %+v", def)
	}

	dir := t.TempDir()
	cfg := def
	cfg.Address = "127.0.0.1:0"
	cfg.HostKeyPath = filepath.Join(dir, "keys", "host_key")
	cfg.DBPath = filepath.Join(dir, "runs.db")

	srv, err := NewSSHServer(cfg)
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}
	t.Cleanup(func() { srv.Shutdown() })

	if srv.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() = %q", srv.Addr())
	}
	if srv.store == nil {
		t.Error("runs database not opened")
	}
	if _, err := os.Stat(filepath.Dir(cfg.HostKeyPath)); err != nil {
		t.Errorf("host key directory not created: %v", err)
	}
}
