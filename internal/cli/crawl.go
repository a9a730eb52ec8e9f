package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pystyle/pystyle/pkg/crawl"
	"github.com/pystyle/pystyle/pkg/pypi"
)

// crawlOpts holds the command-line flags for the crawl command.
type crawlOpts struct {
	repository string // clone a single repository by GitHub URL
	project    string // clone a single PyPI project by name
	workers    int    // worker pool size for batch mode
	noCache    bool   // bypass the HTTP response cache
	redisAddr  string // redis cache backend address
}

// crawlCommand creates the crawl command. Without flags it discovers
// recently changed PyPI projects from the site feeds and clones every
// one that links a GitHub repository; --repository and --pypi-project
// narrow it to a single target.
func (c *CLI) crawlCommand() *cobra.Command {
	opts := crawlOpts{workers: 4}

	cmd := &cobra.Command{
		Use:   "crawl <git-store>",
		Short: "Clone or refresh Python repositories discovered on PyPI",
		Long: `Crawl discovers Python projects and maintains shallow clones under
<git-store>/<owner>/<name>.

By default the PyPI "newest packages" and "recent updates" feeds are
crawled with a worker pool. A single repository or project can be
fetched instead:

  pystyle crawl ./repos
  pystyle crawl ./repos --repository https://github.com/psf/requests
  pystyle crawl ./repos --pypi-project requests`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCrawl(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.repository, "repository", "", "clone a single GitHub repository URL")
	cmd.Flags().StringVar(&opts.project, "pypi-project", "", "clone the repository of a single PyPI project")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "number of concurrent clone workers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the HTTP response cache")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for the HTTP cache (host:port)")
	cmd.MarkFlagsMutuallyExclusive("repository", "pypi-project")

	return cmd
}

func (c *CLI) runCrawl(cmd *cobra.Command, store string, opts crawlOpts) error {
	ctx := cmd.Context()
	backend := c.newCache(ctx, opts.noCache, opts.redisAddr)
	defer backend.Close()

	crawler := crawl.New(pypi.NewClient(backend), store, c.Logger)

	switch {
	case opts.repository != "":
		if !pypi.IsGitHubProjectURL(opts.repository) {
			return fmt.Errorf("not a github project url: %s", opts.repository)
		}
		var dir string
		err := withSpinner("Fetching "+opts.repository, func() error {
			var err error
			dir, err = crawler.CloneURL(ctx, opts.repository)
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Repository up to date")
		printFile(dir)
		return nil

	case opts.project != "":
		var dir string
		err := withSpinner("Resolving "+opts.project, func() error {
			var err error
			dir, err = crawler.CloneProject(ctx, opts.project)
			return err
		})
		if errors.Is(err, crawl.ErrNoRepository) {
			printInfo("Project %s declares no GitHub repository", opts.project)
			return nil
		}
		if err != nil {
			return err
		}
		printSuccess("Repository up to date")
		printFile(dir)
		return nil

	default:
		prog := newProgress(c.Logger)
		result, err := crawler.CrawlRecent(ctx, opts.workers)
		if err != nil {
			return err
		}
		if result.Total == 0 {
			printError("No projects discovered in the PyPI feeds")
			return nil
		}
		prog.done(fmt.Sprintf("Crawled %d projects, %d failed", result.Total, result.Failed))
		return nil
	}
}
