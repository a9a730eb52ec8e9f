package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pystyle/pystyle/pkg/store"
	"github.com/pystyle/pystyle/pkg/style"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	js, err := store.NewJSONStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := js.Save("octo/demo", style.Record{"license": "MIT"}); err != nil {
		t.Fatal(err)
	}
	return serveHandler(js)
}

func TestServe_ListRepos(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/repos")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Repos []string `json:"repos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Repos) != 1 || body.Repos[0] != "octo/demo" {
		t.Errorf("repos = %v", body.Repos)
	}
}

func TestServe_GetRepo(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/repos/octo/demo")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var record map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatal(err)
	}
	if record["license"] != "MIT" {
		t.Errorf("license = %v", record["license"])
	}
}

func TestServe_UnknownRepo(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/repos/no/such")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
