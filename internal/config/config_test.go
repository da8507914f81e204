package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FromWorkspace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".foreman"), []byte("version: 1\nterminal: kitty\nmax_output: 2048\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != dir {
		t.Errorf("Root = %q, want %q", res.Root, dir)
	}
	if res.Config.Version != 1 {
		t.Errorf("Config.Version = %d, want 1", res.Config.Version)
	}
	if res.Config.Terminal != "kitty" {
		t.Errorf("Config.Terminal = %q, want %q", res.Config.Terminal, "kitty")
	}
	if res.Config.MaxOutputBytes() != 2048 {
		t.Errorf("MaxOutputBytes = %d, want 2048", res.Config.MaxOutputBytes())
	}
}

func TestLoad_FromSubdirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".foreman"), []byte("version: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(root, "pkg", "foo")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Load(sub)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Root != root {
		t.Errorf("Root = %q, want %q", res.Root, root)
	}
	if res.Config.Version != 2 {
		t.Errorf("Config.Version = %d, want 2", res.Config.Version)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	dir := t.TempDir()

	res, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Defaults apply when no .foreman exists anywhere up the tree.
	if res.Config.Version != 0 {
		t.Errorf("expected default config, got Version = %d", res.Config.Version)
	}
	if res.Config.MaxOutputBytes() != DefaultMaxOutput {
		t.Errorf("MaxOutputBytes = %d, want %d", res.Config.MaxOutputBytes(), DefaultMaxOutput)
	}
	if res.Config.ShellName() != "" {
		t.Errorf("ShellName = %q, want empty", res.Config.ShellName())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".foreman"), []byte("version: [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
