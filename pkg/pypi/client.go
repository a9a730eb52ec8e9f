// Package pypi provides a client for the PyPI package index: per-project
// metadata via the JSON API, repository URL resolution, and the site-wide
// RSS feeds used for project discovery.
package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pystyle/pystyle/pkg/cache"
	"github.com/pystyle/pystyle/pkg/httputil"
)

// githubProjectRE matches a GitHub project URL exactly: owner and name,
// an optional trailing slash, and nothing after.
var githubProjectRE = regexp.MustCompile(`^https://github\.com/[^/]+/[^/]+/?$`)

// githubScanRE finds GitHub-shaped project URLs inside arbitrary page text.
var githubScanRE = regexp.MustCompile(`https://github\.com/[a-zA-Z0-9_-]+/[a-zA-Z0-9_-]+/?`)

// IsGitHubProjectURL reports whether url names a GitHub project page
// (no extra path segments beyond owner/name).
func IsGitHubProjectURL(url string) bool {
	return githubProjectRE.MatchString(url)
}

// ProjectInfo holds the subset of PyPI project metadata the crawler uses.
type ProjectInfo struct {
	Name        string            // Project name as registered on PyPI
	Version     string            // Latest release version
	HomePage    string            // Declared homepage URL (may be empty)
	ProjectURLs map[string]string // Named project URLs (may be nil)
	Summary     string            // Short description (may be empty)

	// Raw is the full JSON API response body, kept (and cached) for the
	// last-resort text scan in GitHubURL.
	Raw string
}

// Client provides access to the PyPI JSON API with caching and retries.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*httputil.Client
	baseURL string
	feedURL string
}

// NewClient creates a PyPI client with the given cache backend.
// Pass a NullCache to disable response caching.
func NewClient(backend cache.Cache) *Client {
	return &Client{
		Client:  httputil.NewClient(backend, nil),
		baseURL: "https://pypi.org/pypi",
		feedURL: "https://pypi.org/rss",
	}
}

// Project retrieves metadata for a PyPI project.
//
// Returns [httputil.ErrNotFound] if the project doesn't exist and
// [httputil.ErrNetwork] for HTTP failures.
func (c *Client) Project(ctx context.Context, name string) (*ProjectInfo, error) {
	name = NormalizeName(name)

	var info ProjectInfo
	err := c.Cached(ctx, "pypi:"+name, cache.TTLProject, false, &info, func() error {
		return c.fetch(ctx, name, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, name string, info *ProjectInfo) error {
	// Decoding into a RawMessage keeps the full body for GitHubURL's
	// last-resort text scan.
	var raw json.RawMessage
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, name), &raw); err != nil {
		return err
	}

	var data apiResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode pypi response for %s: %w", name, err)
	}

	urls := make(map[string]string, len(data.Info.ProjectURLs))
	for k, v := range data.Info.ProjectURLs {
		if s, ok := v.(string); ok {
			urls[k] = s
		}
	}

	*info = ProjectInfo{
		Name:        data.Info.Name,
		Version:     data.Info.Version,
		HomePage:    data.Info.HomePage,
		ProjectURLs: urls,
		Summary:     data.Info.Summary,
		Raw:         string(raw),
	}
	return nil
}

// GitHubURL resolves the GitHub project page for a PyPI project, if any.
//
// Resolution order: the declared homepage, then the named project URLs,
// then a scan of the raw API response for the shortest GitHub-shaped URL.
// Absence of a GitHub URL is a normal outcome, reported as ("", false),
// never as an error.
func (i *ProjectInfo) GitHubURL() (string, bool) {
	if IsGitHubProjectURL(i.HomePage) {
		return i.HomePage, true
	}
	for _, u := range sortedValues(i.ProjectURLs) {
		if IsGitHubProjectURL(u) {
			return u, true
		}
	}
	if found := githubScanRE.FindAllString(i.Raw, -1); len(found) > 0 {
		sort.Slice(found, func(a, b int) bool { return len(found[a]) < len(found[b]) })
		return found[0], true
	}
	return "", false
}

// NormalizeName converts a project name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following
// PEP 503 normalization rules used by PyPI.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// OwnerAndName splits a GitHub project URL into its path parts.
// URLs that are not GitHub project pages return ok=false, so feed
// links and raw-scan hits never map to a clone path.
func OwnerAndName(githubURL string) (owner, name string, ok bool) {
	if !IsGitHubProjectURL(githubURL) {
		return "", "", false
	}
	trimmed := strings.TrimSuffix(githubURL, "/")
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-2], parts[len(parts)-1], true
}

// sortedValues returns map values ordered by key so URL resolution is
// deterministic across runs.
func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, m[k])
	}
	return vals
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Summary     string         `json:"summary"`
	HomePage    string         `json:"home_page"`
	ProjectURLs map[string]any `json:"project_urls"`
}
