package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pystyle/pystyle/pkg/batch"
	"github.com/pystyle/pystyle/pkg/cache"
	"github.com/pystyle/pystyle/pkg/crawl"
	"github.com/pystyle/pystyle/pkg/gitexec"
	"github.com/pystyle/pystyle/pkg/observability"
	"github.com/pystyle/pystyle/pkg/store"
	"github.com/pystyle/pystyle/pkg/style"
)

// statsOpts holds the command-line flags for the stats command.
type statsOpts struct {
	csvPath   string // write one CSV instead of per-project snapshots
	only      string // substring filter on extractor names
	update    bool   // recompute an existing CSV at its pinned commits
	workers   int    // worker pool size
	noCache   bool   // bypass the record cache
	redisAddr string // redis cache backend address
	mongoURI  string // optional mongo sink
	mongoDB   string
	mongoColl string
}

// statsCommand creates the stats command. Each crawled repository is
// analyzed at a random commit of its history, so repeated runs sample
// style evolution over time rather than only the latest state.
func (c *CLI) statsCommand() *cobra.Command {
	opts := statsOpts{workers: 4, mongoDB: "pystyle", mongoColl: "records"}

	cmd := &cobra.Command{
		Use:   "stats <git-store> [<json-store>]",
		Short: "Compute style statistics for crawled repositories",
		Long: `Stats runs the extractor battery over every repository under
<git-store>, checked out at a randomly chosen commit of its history.

With a <json-store> argument, results are merged into one
<json-store>/<owner>/<name>/style.json per project. With --csv, all
results are collected into a single table instead. --update re-reads
an existing CSV, re-analyzes each row at its recorded commit, and
writes the result next to the original as <name>-new.csv.

Examples:
  pystyle stats ./repos ./results
  pystyle stats ./repos --csv stats.csv
  pystyle stats ./repos --csv stats.csv --update --only license`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.csvPath == "" && len(args) < 2 {
				return fmt.Errorf("either a <json-store> argument or --csv is required")
			}
			if opts.update && opts.csvPath == "" {
				return fmt.Errorf("--update requires --csv")
			}
			return c.runStats(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "write results to a single CSV file")
	cmd.Flags().StringVar(&opts.only, "only", "", "run only extractors whose name contains this substring")
	cmd.Flags().BoolVar(&opts.update, "update", false, "recompute an existing CSV at its pinned commits")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "number of concurrent analysis workers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the record cache")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for the record cache (host:port)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "also upsert records into this MongoDB instance")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.mongoColl, "mongo-collection", opts.mongoColl, "MongoDB collection name")

	return cmd
}

func (c *CLI) runStats(cmd *cobra.Command, args []string, opts statsOpts) error {
	ctx := cmd.Context()

	backend := c.newCache(ctx, opts.noCache, opts.redisAddr)
	defer backend.Close()

	var sink store.Sink
	if opts.mongoURI != "" {
		s, err := store.NewMongoSink(ctx, opts.mongoURI, opts.mongoDB, opts.mongoColl)
		if err != nil {
			return fmt.Errorf("mongo sink: %w", err)
		}
		defer s.Close(context.WithoutCancel(ctx))
		sink = s
	}

	a := &analyzer{
		gitStore: args[0],
		only:     opts.only,
		cache:    backend,
		logger:   c.Logger,
	}

	switch {
	case opts.update:
		return c.runStatsUpdate(ctx, a, sink, opts)
	case opts.csvPath != "":
		return c.runStatsCSV(ctx, a, sink, opts)
	default:
		return c.runStatsJSON(ctx, a, sink, args[1], opts)
	}
}

// runStatsJSON analyzes every repository and merges each record into
// its per-project snapshot.
func (c *CLI) runStatsJSON(ctx context.Context, a *analyzer, sink store.Sink, jsonStore string, opts statsOpts) error {
	js, err := store.NewJSONStore(jsonStore, c.Logger)
	if err != nil {
		return err
	}
	repos, err := crawl.ListRepos(a.gitStore)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	result := batch.Run(ctx, repos, opts.workers, c.Logger, func(ctx context.Context, repo string) error {
		record, err := a.analyze(ctx, repo, "")
		if err != nil {
			return err
		}
		if err := js.Save(repo, record); err != nil {
			return err
		}
		return putSink(ctx, sink, record)
	})
	prog.done(fmt.Sprintf("Analyzed %d repositories, %d failed", result.Total, result.Failed))
	return nil
}

// runStatsCSV analyzes every repository and writes one CSV table.
func (c *CLI) runStatsCSV(ctx context.Context, a *analyzer, sink store.Sink, opts statsOpts) error {
	repos, err := crawl.ListRepos(a.gitStore)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var records []style.Record

	prog := newProgress(c.Logger)
	result := batch.Run(ctx, repos, opts.workers, c.Logger, func(ctx context.Context, repo string) error {
		record, err := a.analyze(ctx, repo, "")
		if err != nil {
			return err
		}
		mu.Lock()
		records = append(records, record)
		mu.Unlock()
		return putSink(ctx, sink, record)
	})
	prog.done(fmt.Sprintf("Analyzed %d repositories, %d failed", result.Total, result.Failed))

	if err := store.ExportCSV(opts.csvPath, records); err != nil {
		return err
	}
	printSuccess("Wrote %d rows", len(records))
	printFile(opts.csvPath)
	return nil
}

// runStatsUpdate re-analyzes the repositories of an existing CSV at
// their recorded commits and writes <name>-new.csv, preserving columns
// the recompute did not touch.
func (c *CLI) runStatsUpdate(ctx context.Context, a *analyzer, sink store.Sink, opts statsOpts) error {
	rows, err := store.ImportCSV(opts.csvPath)
	if err != nil {
		return err
	}

	byRepo := make(map[string]style.Record, len(rows))
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		repo, _ := row["repo"].(string)
		commit, _ := row["commit"].(string)
		if repo == "" || commit == "" {
			c.Logger.Warn("skipping row without repo/commit", "row", row)
			continue
		}
		byRepo[repo] = row
		items = append(items, repo)
	}

	prog := newProgress(c.Logger)
	result := batch.Run(ctx, items, opts.workers, c.Logger, func(ctx context.Context, repo string) error {
		row := byRepo[repo]
		commit := row["commit"].(string)
		record, err := a.analyze(ctx, repo, commit)
		if err != nil {
			return err
		}
		row.Merge(record)
		return putSink(ctx, sink, row)
	})
	prog.done(fmt.Sprintf("Updated %d rows, %d failed", result.Total, result.Failed))

	out := updatePath(opts.csvPath)
	ordered := make([]style.Record, 0, len(items))
	for _, repo := range items {
		ordered = append(ordered, byRepo[repo])
	}
	if err := store.ExportCSV(out, ordered); err != nil {
		return err
	}
	printSuccess("Wrote %d rows", len(ordered))
	printFile(out)
	return nil
}

// updatePath derives the output path for --update: stats.csv becomes
// stats-new.csv.
func updatePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-new" + ext
}

func putSink(ctx context.Context, sink store.Sink, record style.Record) error {
	if sink == nil {
		return nil
	}
	return sink.Put(ctx, record)
}

// analyzer runs the extractor battery against one repository at a
// time, pinned to a commit, with a cache keyed by (repo, commit,
// extractor filter). Commit-pinned records never change, so cache hits
// skip the checkout entirely.
type analyzer struct {
	gitStore string
	only     string
	cache    cache.Cache
	logger   *log.Logger
}

// analyze computes the record for repo at the pinned commit, or at a
// random commit of its history when pinned is empty. The working copy
// is restored afterwards in either case.
func (a *analyzer) analyze(ctx context.Context, repo, pinned string) (style.Record, error) {
	dir := filepath.Join(a.gitStore, filepath.FromSlash(repo))
	g := gitexec.New(dir)

	if pinned != "" {
		if record, ok := a.cachedRecord(ctx, repo, pinned); ok {
			a.logger.Debug("record cache hit", "repo", repo, "commit", pinned)
			observability.Cache().OnCacheHit(ctx, "record")
			return record, nil
		}
		observability.Cache().OnCacheMiss(ctx, "record")
	}

	var record style.Record
	run := func(commit string) error {
		observability.Crawl().OnAnalyzeStart(ctx, repo, commit)
		start := time.Now()
		record = style.InferStyle(dir, a.only, a.logger)
		observability.Crawl().OnAnalyzeComplete(ctx, repo, commit, time.Since(start), nil)
		date, err := g.CommitDate(ctx)
		if err != nil {
			a.logger.Warn("commit date unavailable", "repo", repo, "err", err)
		}
		record["repo"] = repo
		record["commit"] = commit
		record["date"] = date
		a.storeRecord(ctx, repo, commit, record)
		return nil
	}

	var err error
	if pinned != "" {
		err = g.WithCommit(ctx, pinned, func() error { return run(pinned) })
	} else {
		err = g.WithRandomCommit(ctx, run)
	}
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", repo, err)
	}
	return record, nil
}

func (a *analyzer) recordKey(repo, commit string) string {
	return cache.Hash([]byte("record:" + repo + "@" + commit + ":" + a.only))
}

func (a *analyzer) cachedRecord(ctx context.Context, repo, commit string) (style.Record, bool) {
	data, ok, err := a.cache.Get(ctx, a.recordKey(repo, commit))
	if err != nil || !ok {
		return nil, false
	}
	var record style.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return record, true
}

func (a *analyzer) storeRecord(ctx context.Context, repo, commit string, record style.Record) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	_ = a.cache.Set(ctx, a.recordKey(repo, commit), data, cache.TTLRecord)
}
