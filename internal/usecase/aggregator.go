// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"log"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/readme-stats/internal/domain"
	"github.com/naka-gawa/readme-stats/internal/gateway"
)

// DefaultWorkers is the worker-pool size used when Options.Workers is unset.
const DefaultWorkers = 4

// contributionWindowDays is the rolling window for the contribution total.
const contributionWindowDays = 365

// RepoAnalyzer computes the author's commit tally for one repository.
type RepoAnalyzer interface {
	Analyze(ctx context.Context, cloneURL, author string) domain.CommitTally
}

// Options control one aggregation run.
type Options struct {
	// SkipLOC disables cloning and analysis entirely; the tally stays zero.
	SkipLOC bool
	// MaxRepos caps how many repositories are analyzed. 0 means no cap.
	MaxRepos int
	// Workers is the analysis worker-pool size.
	Workers int
}

// Aggregator is the use case for building the account report.
// It orchestrates the fetching, the analysis fan-out and the reduction.
type Aggregator struct {
	fetcher  gateway.Fetcher
	analyzer RepoAnalyzer
	logger   *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, analyzer RepoAnalyzer, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher:  fetcher,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Run executes the whole pipeline for user and returns the report.
//
// Every data source is best-effort: a failed fetch is logged and degrades to
// zero values instead of aborting, so a report is always produced.
func (a *Aggregator) Run(ctx context.Context, user string, opts Options) domain.Report {
	a.logger.Println("Usecase: starting aggregation...")

	var (
		repos         []domain.Repository
		followers     int
		contributions int
	)

	// The three metadata sources are independent; fetch them concurrently.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		repos, err = a.fetcher.FetchRepositories(egCtx)
		if err != nil {
			a.logger.Printf("warning: repository listing failed: %v", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		followers, err = a.fetcher.FetchFollowers(egCtx)
		if err != nil {
			a.logger.Printf("warning: follower fetch failed: %v", err)
			followers = 0
		}
		return nil
	})
	eg.Go(func() error {
		to := time.Now().UTC()
		from := to.AddDate(0, 0, -contributionWindowDays)
		var err error
		contributions, err = a.fetcher.FetchContributions(egCtx, from, to)
		if err != nil {
			a.logger.Printf("warning: contribution fetch failed: %v", err)
			contributions = 0
		}
		return nil
	})
	_ = eg.Wait()

	report := domain.Report{
		Stats: reduceStats(repos, followers, contributions),
	}
	a.logStarSummary(repos)

	if opts.SkipLOC {
		a.logger.Println("Skipping commit and line analysis.")
		return report
	}

	urls := cloneURLs(repos)
	if opts.MaxRepos > 0 && len(urls) > opts.MaxRepos {
		urls = urls[:opts.MaxRepos]
	}
	if len(urls) == 0 {
		a.logger.Println("No repositories to analyze.")
		return report
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	a.logger.Printf("Analyzing %d repositories (workers=%d)...", len(urls), workers)

	// Each task returns its tally over the channel; the reduction happens
	// here after the pool drains, so workers share no mutable state.
	results := make(chan domain.CommitTally, len(urls))
	var pool errgroup.Group
	pool.SetLimit(workers)
	for _, u := range urls {
		u := u
		pool.Go(func() error {
			results <- a.analyzer.Analyze(ctx, u, user)
			return nil
		})
	}
	_ = pool.Wait()
	close(results)

	for tally := range results {
		report.Tally.Add(tally)
	}

	a.logger.Println("Usecase: aggregation complete.")
	return report
}

// reduceStats folds the repository records and the two fetch results into the
// account-level stats.
func reduceStats(repos []domain.Repository, followers, contributions int) domain.AccountStats {
	s := domain.AccountStats{
		Followers:     followers,
		Contributions: contributions,
	}
	for _, r := range repos {
		s.TotalRepos++
		if r.Private {
			s.PrivateRepos++
		} else {
			s.PublicRepos++
		}
		s.Stars += r.Stars
	}
	return s
}

func cloneURLs(repos []domain.Repository) []string {
	urls := make([]string, 0, len(repos))
	for _, r := range repos {
		if r.CloneURL != "" {
			urls = append(urls, r.CloneURL)
		}
	}
	return urls
}

// logStarSummary reports the star distribution across the listing; verbose
// diagnostics only.
func (a *Aggregator) logStarSummary(repos []domain.Repository) {
	if len(repos) == 0 {
		return
	}
	counts := make([]float64, len(repos))
	for i, r := range repos {
		counts[i] = float64(r.Stars)
	}
	mean, err := stats.Mean(counts)
	if err != nil {
		return
	}
	median, err := stats.Median(counts)
	if err != nil {
		return
	}
	a.logger.Printf("Star distribution: mean=%.1f median=%.1f across %d repositories", mean, median, len(repos))
}
