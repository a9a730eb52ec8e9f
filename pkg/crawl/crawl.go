// Package crawl discovers Python projects on PyPI, resolves them to
// GitHub repositories, and maintains local clones under a store
// directory laid out as <store>/<owner>/<name>.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pystyle/pystyle/pkg/batch"
	"github.com/pystyle/pystyle/pkg/gitexec"
	"github.com/pystyle/pystyle/pkg/observability"
	"github.com/pystyle/pystyle/pkg/pypi"
)

// ErrNoRepository marks a PyPI project with no resolvable GitHub
// repository. Callers skip such projects instead of failing.
var ErrNoRepository = errors.New("no github repository found")

// ListRepos returns every "owner/name" with a git working copy under
// store, sorted. Stray files and non-repo directories are ignored.
func ListRepos(store string) ([]string, error) {
	owners, err := os.ReadDir(store)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	var repos []string
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		names, err := os.ReadDir(filepath.Join(store, owner.Name()))
		if err != nil {
			continue
		}
		for _, name := range names {
			dir := filepath.Join(store, owner.Name(), name.Name())
			if name.IsDir() && gitexec.IsRepo(dir) {
				repos = append(repos, owner.Name()+"/"+name.Name())
			}
		}
	}
	sort.Strings(repos)
	return repos, nil
}

// Crawler clones and refreshes project repositories.
type Crawler struct {
	pypi   *pypi.Client
	store  string
	logger *log.Logger
}

// New returns a crawler writing clones under store.
func New(client *pypi.Client, store string, logger *log.Logger) *Crawler {
	if logger == nil {
		logger = log.Default()
	}
	return &Crawler{pypi: client, store: store, logger: logger}
}

// RepoDir maps a GitHub project URL to its clone directory.
func (c *Crawler) RepoDir(githubURL string) (string, error) {
	owner, name, ok := pypi.OwnerAndName(githubURL)
	if !ok {
		return "", fmt.Errorf("not a github project url: %s", githubURL)
	}
	return filepath.Join(c.store, owner, name), nil
}

// CloneURL clones or refreshes one repository by its GitHub URL and
// returns the clone directory.
func (c *Crawler) CloneURL(ctx context.Context, githubURL string) (string, error) {
	dir, err := c.RepoDir(githubURL)
	if err != nil {
		return "", err
	}
	c.logger.Info("fetching repository", "url", githubURL, "dir", dir)
	observability.Crawl().OnCloneStart(ctx, githubURL)
	start := time.Now()
	err = gitexec.CloneOrUpdate(ctx, githubURL, dir)
	observability.Crawl().OnCloneComplete(ctx, githubURL, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", githubURL, err)
	}
	return dir, nil
}

// CloneProject resolves a PyPI project to its GitHub repository and
// clones it. Projects without a GitHub link return [ErrNoRepository].
func (c *Crawler) CloneProject(ctx context.Context, project string) (string, error) {
	info, err := c.pypi.Project(ctx, pypi.NormalizeName(project))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", project, err)
	}
	url, ok := info.GitHubURL()
	if !ok {
		return "", fmt.Errorf("%s: %w", project, ErrNoRepository)
	}
	return c.CloneURL(ctx, url)
}

// CrawlRecent discovers recently updated and newly published projects
// from the PyPI feeds and clones them with a worker pool. Projects
// without a repository are skipped quietly; real failures are counted
// by the batch.
func (c *Crawler) CrawlRecent(ctx context.Context, workers int) (batch.Result, error) {
	links, err := c.pypi.RecentProjects(ctx)
	if err != nil {
		return batch.Result{}, fmt.Errorf("discover projects: %w", err)
	}
	names := make([]string, 0, len(links))
	for _, link := range links {
		if name := pypi.ProjectNameFromURL(link); name != "" {
			names = append(names, name)
		}
	}

	result := batch.Run(ctx, names, workers, c.logger, func(ctx context.Context, name string) error {
		_, err := c.CloneProject(ctx, name)
		if errors.Is(err, ErrNoRepository) {
			c.logger.Debug("no repository", "project", name)
			return nil
		}
		return err
	})
	return result, nil
}
