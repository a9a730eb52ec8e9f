package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"crawl", "stats", "serve", "cache", "completion"}
	have := map[string]bool{}
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestCacheDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "pystyle") {
		t.Errorf("unexpected cache dir: %s", dir)
	}
}

func TestStats_RequiresStoreOrCSV(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"stats", t.TempDir()})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--csv") {
		t.Errorf("expected missing-store error, got %v", err)
	}
}

func TestStats_UpdateRequiresCSV(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"stats", t.TempDir(), t.TempDir(), "--update"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--update") {
		t.Errorf("expected update-requires-csv error, got %v", err)
	}
}

func TestUpdatePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"stats.csv", "stats-new.csv"},
		{"out/results.csv", "out/results-new.csv"},
		{"noext", "noext-new"},
	}
	for _, tt := range tests {
		if got := updatePath(tt.in); got != tt.want {
			t.Errorf("updatePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
