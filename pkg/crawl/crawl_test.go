package crawl

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pystyle/pystyle/pkg/cache"
	"github.com/pystyle/pystyle/pkg/pypi"
)

func TestRepoDir(t *testing.T) {
	c := New(pypi.NewClient(cache.NewNullCache()), "/data/repos", nil)

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/octo/demo", filepath.Join("/data/repos", "octo", "demo"), false},
		{"https://github.com/octo/demo/", filepath.Join("/data/repos", "octo", "demo"), false},
		{"https://gitlab.com/octo/demo", "", true},
		{"https://github.com/octo", "", true},
		{"not a url", "", true},
	}

	for _, tt := range tests {
		got, err := c.RepoDir(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("RepoDir(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("RepoDir(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestListRepos(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	store := t.TempDir()
	for _, repo := range []string{"octo/demo", "acme/tool"} {
		dir := filepath.Join(store, filepath.FromSlash(repo))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if out, err := exec.Command("git", "init", dir).CombinedOutput(); err != nil {
			t.Fatalf("git init: %v\n%s", err, out)
		}
	}
	// Not a repo, must be skipped.
	if err := os.MkdirAll(filepath.Join(store, "octo", "plain"), 0755); err != nil {
		t.Fatal(err)
	}
	// Stray file at owner level, must be skipped.
	if err := os.WriteFile(filepath.Join(store, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	repos, err := ListRepos(store)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"acme/tool", "octo/demo"}
	if !reflect.DeepEqual(repos, want) {
		t.Errorf("got %v, want %v", repos, want)
	}
}

func TestCloneURL_RejectsNonGitHubURL(t *testing.T) {
	c := New(pypi.NewClient(cache.NewNullCache()), t.TempDir(), nil)
	if _, err := c.CloneURL(context.Background(), "https://example.com/x/y"); err == nil {
		t.Fatal("expected error for non-github url")
	}
}
