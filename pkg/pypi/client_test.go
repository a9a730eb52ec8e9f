package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pystyle/pystyle/pkg/cache"
	"github.com/pystyle/pystyle/pkg/httputil"
)

func TestClient_Project(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flask/json" {
			resp := apiResponse{
				Info: apiInfo{
					Name:     "Flask",
					Version:  "2.0.0",
					Summary:  "A micro web framework",
					HomePage: "https://github.com/pallets/flask",
				},
			}
			json.NewEncoder(w).Encode(resp)
		} else {
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.Project(context.Background(), "flask")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if info.Name != "Flask" {
		t.Errorf("expected name Flask, got %s", info.Name)
	}
	if info.Version != "2.0.0" {
		t.Errorf("expected version 2.0.0, got %s", info.Version)
	}
}

func TestClient_Project_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.Project(context.Background(), "missing-pkg")
	if err == nil {
		t.Fatal("expected error for missing project")
	}
	if !errors.Is(err, httputil.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectInfo_GitHubURL(t *testing.T) {
	tests := []struct {
		name string
		info ProjectInfo
		want string
		ok   bool
	}{
		{
			name: "homepage is a github project",
			info: ProjectInfo{HomePage: "https://github.com/pallets/flask"},
			want: "https://github.com/pallets/flask",
			ok:   true,
		},
		{
			name: "homepage with trailing slash",
			info: ProjectInfo{HomePage: "https://github.com/pallets/flask/"},
			want: "https://github.com/pallets/flask/",
			ok:   true,
		},
		{
			name: "homepage with extra path segments is rejected",
			info: ProjectInfo{HomePage: "https://github.com/pallets/flask/issues"},
			want: "",
			ok:   false,
		},
		{
			name: "project urls fallback",
			info: ProjectInfo{
				HomePage:    "https://flask.palletsprojects.com/",
				ProjectURLs: map[string]string{"Source": "https://github.com/pallets/flask"},
			},
			want: "https://github.com/pallets/flask",
			ok:   true,
		},
		{
			name: "raw text scan picks shortest match",
			info: ProjectInfo{
				Raw: `{"description": "see https://github.com/pallets/flask-sqlalchemy and https://github.com/pallets/flask"}`,
			},
			want: "https://github.com/pallets/flask",
			ok:   true,
		},
		{
			name: "no github url anywhere",
			info: ProjectInfo{HomePage: "https://example.com", Raw: `{"info": {}}`},
			want: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.info.GitHubURL()
			if got != tt.want || ok != tt.ok {
				t.Errorf("GitHubURL() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsGitHubProjectURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/owner/repo", true},
		{"https://github.com/owner/repo/", true},
		{"https://github.com/owner/repo/tree/main", false},
		{"https://gitlab.com/owner/repo", false},
		{"http://github.com/owner/repo", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsGitHubProjectURL(tt.url); got != tt.want {
				t.Errorf("IsGitHubProjectURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Django", "django"},
		{"Flask_App", "flask-app"},
		{"some_package-name", "some-package-name"},
		{"  UPPERCASE ", "uppercase"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestOwnerAndName(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		name  string
		ok    bool
	}{
		{"https://github.com/pallets/flask", "pallets", "flask", true},
		{"https://github.com/pallets/flask/", "pallets", "flask", true},
		{"https://gitlab.com/pallets/flask", "", "", false},
		{"https://github.com/pallets", "", "", false},
		{"https://github.com/pallets/flask/issues", "", "", false},
		{"not a url", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, name, ok := OwnerAndName(tt.url)
			if owner != tt.owner || name != tt.name || ok != tt.ok {
				t.Errorf("OwnerAndName(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.url, owner, name, ok, tt.owner, tt.name, tt.ok)
			}
		})
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return &Client{
		Client:  httputil.NewClient(cache.NewNullCache(), nil),
		baseURL: serverURL,
		feedURL: serverURL + "/rss",
	}
}
