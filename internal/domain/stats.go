// Package domain contains the core data structures and domain logic for the application.
package domain

// Repository is a single repository as returned by the listing API.
// Only the fields the pipeline consumes are retained.
type Repository struct {
	Private  bool
	Stars    int
	CloneURL string
}

// AccountStats holds the account-level numbers reduced from the repository
// listing plus the profile and contribution fetches.
type AccountStats struct {
	TotalRepos    int
	PublicRepos   int
	PrivateRepos  int
	Followers     int
	Stars         int
	Contributions int
}

// CommitTally holds commit and line-change totals attributed to one author,
// either for a single repository or summed across all of them.
type CommitTally struct {
	Commits      int
	LinesAdded   int
	LinesRemoved int
}

// Add accumulates another tally into t.
func (t *CommitTally) Add(o CommitTally) {
	t.Commits += o.Commits
	t.LinesAdded += o.LinesAdded
	t.LinesRemoved += o.LinesRemoved
}

// NetLines is added minus removed. It may be negative (e.g. deletions from
// repositories the author did not create) and is reported as-is.
func (t CommitTally) NetLines() int {
	return t.LinesAdded - t.LinesRemoved
}

// Report is the complete result of one pipeline run, consumed by the renderer.
type Report struct {
	Stats AccountStats
	Tally CommitTally
}
