package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/readme-stats/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler, authenticated bool) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// Point the REST client at the mock server.
	restClient := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	restClient.BaseURL = baseURL

	// Use NewEnterpriseClient to point the GraphQL client at the mock server.
	graphqlClient := githubv4.NewEnterpriseClient(server.URL, server.Client())

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		username:      "testuser",
		authenticated: authenticated,
		logger:        log.New(io.Discard, "", 0),
	}, server
}

// repoPage renders n listing records as the API would.
func repoPage(n int, private bool, stars int) string {
	type item struct {
		Private         bool   `json:"private"`
		StargazersCount int    `json:"stargazers_count"`
		CloneURL        string `json:"clone_url"`
	}
	items := make([]item, n)
	for i := range items {
		items[i] = item{
			Private:         private,
			StargazersCount: stars,
			CloneURL:        fmt.Sprintf("https://github.com/testuser/repo-%d.git", i),
		}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func TestGitHubGateway_FetchRepositories(t *testing.T) {
	testCases := []struct {
		name          string
		authenticated bool
		expectedPath  string
		pages         map[string]func(w http.ResponseWriter)
		expectedCount int
	}{
		{
			name:          "stops at first short page",
			authenticated: false,
			expectedPath:  "/users/testuser/repos",
			pages: map[string]func(w http.ResponseWriter){
				"1": func(w http.ResponseWriter) { fmt.Fprint(w, repoPage(100, false, 1)) },
				"2": func(w http.ResponseWriter) { fmt.Fprint(w, repoPage(2, true, 0)) },
			},
			expectedCount: 102,
		},
		{
			name:          "single short page",
			authenticated: false,
			expectedPath:  "/users/testuser/repos",
			pages: map[string]func(w http.ResponseWriter){
				"1": func(w http.ResponseWriter) { fmt.Fprint(w, repoPage(3, false, 5)) },
			},
			expectedCount: 3,
		},
		{
			name:          "authenticated listing uses the /user/repos endpoint",
			authenticated: true,
			expectedPath:  "/user/repos",
			pages: map[string]func(w http.ResponseWriter){
				"1": func(w http.ResponseWriter) { fmt.Fprint(w, repoPage(1, true, 2)) },
			},
			expectedCount: 1,
		},
		{
			name:          "failed page truncates without error",
			authenticated: false,
			expectedPath:  "/users/testuser/repos",
			pages: map[string]func(w http.ResponseWriter){
				"1": func(w http.ResponseWriter) { fmt.Fprint(w, repoPage(100, false, 1)) },
				"2": func(w http.ResponseWriter) {
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprint(w, `{"message": "Internal Server Error"}`)
				},
			},
			expectedCount: 100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.expectedPath, r.URL.Path)
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				page := r.URL.Query().Get("page")
				serve, ok := tc.pages[page]
				require.True(t, ok, "unexpected page request %q", page)
				serve(w)
			}
			gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), tc.authenticated)

			records, err := gateway.FetchRepositories(context.Background())

			assert.NoError(t, err)
			assert.Len(t, records, tc.expectedCount)
		})
	}
}

func TestGitHubGateway_FetchRepositories_RecordFields(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"private": true, "stargazers_count": 8, "clone_url": "https://github.com/testuser/a.git"}]`)
	}
	gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), false)

	records, err := gateway.FetchRepositories(context.Background())

	assert.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.Repository{
		Private:  true,
		Stars:    8,
		CloneURL: "https://github.com/testuser/a.git",
	}, records[0])
}

func TestGitHubGateway_FetchFollowers(t *testing.T) {
	testCases := []struct {
		name           string
		authenticated  bool
		expectedPath   string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expectedCount  int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:          "anonymous run uses the public user endpoint",
			authenticated: false,
			expectedPath:  "/users/testuser",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"login": "testuser", "followers": 42}`)
			},
			expectedCount: 42,
		},
		{
			name:          "authenticated run uses the /user endpoint",
			authenticated: true,
			expectedPath:  "/user",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"login": "testuser", "followers": 7}`)
			},
			expectedCount: 7,
		},
		{
			name:          "error surfaces to the caller",
			authenticated: false,
			expectedPath:  "/users/testuser",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expectError:    true,
			expectedErrMsg: "failed to fetch user profile",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.expectedPath, r.URL.Path)
				tc.handlerFunc(w, r)
			}
			gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), tc.authenticated)

			followers, err := gateway.FetchFollowers(context.Background())

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedCount, followers)
			}
		})
	}
}

func TestGitHubGateway_CountCommits(t *testing.T) {
	testCases := []struct {
		name          string
		linkHeader    string
		responseBody  string
		expectedCount int
	}{
		{
			name:          "last page number from the Link header",
			linkHeader:    `<https://api.github.com/repos/o/r/commits?author=testuser&page=2>; rel="next", <https://api.github.com/repos/o/r/commits?author=testuser&page=7>; rel="last"`,
			responseBody:  `[{"sha": "abc"}]`,
			expectedCount: 7,
		},
		{
			name:          "no Link header falls back to the page length",
			responseBody:  `[{"sha": "abc"}]`,
			expectedCount: 1,
		},
		{
			name:          "no Link header and empty page",
			responseBody:  `[]`,
			expectedCount: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/o/r/commits", r.URL.Path)
				assert.Equal(t, "testuser", r.URL.Query().Get("author"))
				assert.Equal(t, "1", r.URL.Query().Get("per_page"))
				if tc.linkHeader != "" {
					w.Header().Set("Link", tc.linkHeader)
				}
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), true)

			count, err := gateway.CountCommits(context.Background(), "o", "r", "testuser")

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedCount, count)
		})
	}
}

func TestGitHubGateway_FetchContributions(t *testing.T) {
	testCases := []struct {
		name           string
		responseBody   string
		expectedCount  int
		expectError    bool
		expectedErrMsg string
	}{
		{
			name:          "happy path",
			responseBody:  `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":1234}}}}}`,
			expectedCount: 1234,
		},
		{
			name:           "GraphQL error",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute contributions query",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "contributionsCollection")
				assert.Contains(t, string(body), "testuser")
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, _ := setupTestGateway(t, http.HandlerFunc(handler), true)

			to := time.Now().UTC()
			count, err := gateway.FetchContributions(context.Background(), to.AddDate(0, 0, -365), to)

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedCount, count)
			}
		})
	}
}

func TestGitHubGateway_FetchContributions_NoCredential(t *testing.T) {
	gateway := &GitHubGateway{
		username: "testuser",
		logger:   log.New(io.Discard, "", 0),
	}

	to := time.Now().UTC()
	count, err := gateway.FetchContributions(context.Background(), to.AddDate(0, 0, -365), to)

	assert.NoError(t, err)
	assert.Zero(t, count)
}
