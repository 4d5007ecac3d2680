// Package analyzer computes per-repository commit and line-change totals for
// one author by cloning the repository and querying the git CLI directly.
package analyzer

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/naka-gawa/readme-stats/internal/domain"
)

// CommitCounter supplies an API-based commit-count estimate, used when the
// local clone yields no commits (e.g. the clone failed or was too shallow).
type CommitCounter interface {
	CountCommits(ctx context.Context, owner, repo, author string) (int, error)
}

// Analyzer clones repositories into scoped temporary directories and tallies
// the author's commits and line changes. Every failure degrades to zero
// values; analysis never aborts the run.
type Analyzer struct {
	counter   CommitCounter
	logger    *log.Logger
	fullClone bool
	depth     int
}

// New creates an Analyzer. depth is the shallow clone depth, ignored when
// fullClone is set.
func New(counter CommitCounter, logger *log.Logger, fullClone bool, depth int) *Analyzer {
	return &Analyzer{
		counter:   counter,
		logger:    logger,
		fullClone: fullClone,
		depth:     depth,
	}
}

// Analyze clones the repository at cloneURL and returns the author's tally.
// The git author filter matches substrings, not exact identities; that
// matches the upstream behavior of `git log --author`.
func (a *Analyzer) Analyze(ctx context.Context, cloneURL, author string) domain.CommitTally {
	var tally domain.CommitTally
	owner, repo, ok := ParseOwnerRepo(cloneURL)

	dir, err := os.MkdirTemp("", "readme-stats-*")
	if err != nil {
		a.logger.Printf("warning: temp dir for %s: %v", cloneURL, err)
	} else {
		defer os.RemoveAll(dir)
		a.clone(ctx, cloneURL, dir)
		tally.Commits = a.commitCount(ctx, dir, author)
		tally.LinesAdded, tally.LinesRemoved = a.lineStats(ctx, dir, author)
	}

	if tally.Commits == 0 && ok {
		n, err := a.counter.CountCommits(ctx, owner, repo, author)
		if err != nil {
			a.logger.Printf("warning: commit count fallback for %s/%s: %v", owner, repo, err)
		} else {
			tally.Commits = n
		}
	}
	return tally
}

// clone runs git clone into dir. The exit status is deliberately ignored: a
// failed clone leaves an empty directory and the follow-up queries yield
// zeros.
func (a *Analyzer) clone(ctx context.Context, cloneURL, dir string) {
	args := []string{"clone"}
	if !a.fullClone {
		args = append(args, "--depth", strconv.Itoa(a.depth))
	}
	args = append(args, cloneURL, dir)
	_ = exec.CommandContext(ctx, "git", args...).Run()
}

func (a *Analyzer) commitCount(ctx context.Context, dir, author string) int {
	out, err := exec.CommandContext(ctx, "git", "-C", dir,
		"rev-list", "--count", "HEAD", "--author", author).Output()
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0
	}
	return n
}

func (a *Analyzer) lineStats(ctx context.Context, dir, author string) (added, removed int) {
	out, err := exec.CommandContext(ctx, "git", "-C", dir,
		"log", "--author", author, "--pretty=tformat:", "--numstat").Output()
	if err != nil {
		return 0, 0
	}
	return parseNumstat(string(out))
}

// parseNumstat sums the added/removed columns of `git log --numstat` output.
// Lines whose first two fields are not numeric (the "-" markers emitted for
// binary files) are skipped.
func parseNumstat(out string) (added, removed int) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		a, errA := strconv.Atoi(fields[0])
		r, errR := strconv.Atoi(fields[1])
		if errA != nil || errR != nil {
			continue
		}
		added += a
		removed += r
	}
	return added, removed
}

// ParseOwnerRepo derives (owner, repo) from an SSH-style or HTTPS clone URL.
// A trailing .git suffix is stripped first. URLs with fewer than two path
// segments yield ok=false.
func ParseOwnerRepo(cloneURL string) (owner, repo string, ok bool) {
	trimmed := strings.TrimSuffix(cloneURL, ".git")

	var path string
	if strings.HasPrefix(trimmed, "git@") {
		// SSH form: user@host:owner/repo
		_, after, found := strings.Cut(trimmed, ":")
		if !found {
			return "", "", false
		}
		path = after
	} else {
		u, err := url.Parse(trimmed)
		if err != nil {
			return "", "", false
		}
		path = strings.TrimPrefix(u.Path, "/")
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
