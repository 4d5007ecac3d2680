// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/readme-stats/internal/config"
	"github.com/naka-gawa/readme-stats/internal/domain"
)

// listPageSize is the fixed page size for the repository listing.
const listPageSize = 100

// Fetcher defines the behavior of a gateway for fetching account information
// from GitHub.
type Fetcher interface {
	FetchRepositories(ctx context.Context) ([]domain.Repository, error)
	FetchFollowers(ctx context.Context) (int, error)
	FetchContributions(ctx context.Context, from, to time.Time) (int, error)
	CountCommits(ctx context.Context, owner, repo, author string) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// With no token it talks to the public, unauthenticated endpoints and its
// GraphQL client is nil.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	username      string
	authenticated bool
	logger        *log.Logger
}

// contributionsQuery requests the rolling contribution total for one user.
type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int
			}
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(cfg config.Config, logger *log.Logger) (*GitHubGateway, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient.Transport = &oauth2.Transport{Source: ts}
	}

	restClient := github.NewClient(httpClient)
	if cfg.APIBaseURL != "" {
		base, err := url.Parse(cfg.APIBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.APIBaseURL, err)
		}
		// go-github requires a trailing slash on the base URL.
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		restClient.BaseURL = base
	}

	var graphqlClient *githubv4.Client
	if cfg.Token != "" {
		if cfg.GraphQLURL != "" && cfg.GraphQLURL != config.DefaultGraphQLURL {
			graphqlClient = githubv4.NewEnterpriseClient(cfg.GraphQLURL, httpClient)
		} else {
			graphqlClient = githubv4.NewClient(httpClient)
		}
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		username:      cfg.Username,
		authenticated: cfg.Token != "",
		logger:        logger,
	}, nil
}

// FetchRepositories pages through the repository listing until a short page
// signals the end of data. A failed page logs a warning and returns whatever
// was accumulated so far; a truncated listing is not treated as fatal.
func (g *GitHubGateway) FetchRepositories(ctx context.Context) ([]domain.Repository, error) {
	g.logger.Println("Fetching repository listing...")
	var records []domain.Repository
	for page := 1; ; page++ {
		repos, resp, err := g.listPage(ctx, page)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			g.logger.Printf("warning: repository listing stopped at page %d (status %d): %v", page, status, err)
			return records, nil
		}
		for _, r := range repos {
			records = append(records, domain.Repository{
				Private:  r.GetPrivate(),
				Stars:    r.GetStargazersCount(),
				CloneURL: r.GetCloneURL(),
			})
		}
		if len(repos) < listPageSize {
			break
		}
	}
	g.logger.Printf("Fetched %d repositories.", len(records))
	return records, nil
}

func (g *GitHubGateway) listPage(ctx context.Context, page int) ([]*github.Repository, *github.Response, error) {
	if g.authenticated {
		opts := &github.RepositoryListByAuthenticatedUserOptions{
			Affiliation: "owner,collaborator",
			ListOptions: github.ListOptions{Page: page, PerPage: listPageSize},
		}
		return g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
	}
	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: github.ListOptions{Page: page, PerPage: listPageSize},
	}
	return g.restClient.Repositories.ListByUser(ctx, g.username, opts)
}

// FetchFollowers returns the follower count from the user profile endpoint.
func (g *GitHubGateway) FetchFollowers(ctx context.Context) (int, error) {
	login := g.username
	if g.authenticated {
		// Empty login means the authenticated user.
		login = ""
	}
	user, _, err := g.restClient.Users.Get(ctx, login)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	return user.GetFollowers(), nil
}

// FetchContributions runs one GraphQL query for the contribution total inside
// the [from, to] window. Without a credential there is no GraphQL client and
// the count is 0.
func (g *GitHubGateway) FetchContributions(ctx context.Context, from, to time.Time) (int, error) {
	if g.graphqlClient == nil {
		g.logger.Println("No credential; skipping contribution query.")
		return 0, nil
	}
	var q contributionsQuery
	variables := map[string]interface{}{
		"login": githubv4.String(g.username),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute contributions query: %w", err)
	}
	return q.User.ContributionsCollection.ContributionCalendar.TotalContributions, nil
}

// CountCommits estimates the author's commit count in one repository from a
// single one-item commits page: the last-page number parsed out of the Link
// pagination header equals the total, and when no Link header is present the
// length of the returned page is the count.
func (g *GitHubGateway) CountCommits(ctx context.Context, owner, repo, author string) (int, error) {
	opts := &github.CommitsListOptions{
		Author:      author,
		ListOptions: github.ListOptions{PerPage: 1},
	}
	commits, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list commits for %s/%s: %w", owner, repo, err)
	}
	if resp.LastPage > 0 {
		return resp.LastPage, nil
	}
	return len(commits), nil
}
