package gitclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/hashicorp/go-hclog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/joaosnet/gitfolio/internal/models"
)

// FallbackBranch is assumed whenever repository metadata cannot be fetched.
const FallbackBranch = "main"

const defaultRawBase = "https://raw.githubusercontent.com"

// Client wraps every GitHub surface the generator talks to: the REST API
// (listing, README, repository metadata), the GraphQL API (social preview)
// and raw.githubusercontent.com (image download).
type Client struct {
	gh      *github.Client
	gql     *githubv4.Client
	http    *http.Client
	token   string
	rawBase string
	logger  hclog.Logger

	mu       sync.Mutex
	branches map[string]string
}

// New builds a client. With an empty token only the public listing endpoint
// is usable; README, GraphQL and download calls report ErrMissingCredentials.
func New(token string, timeout time.Duration, logger hclog.Logger) *Client {
	hc := &http.Client{Timeout: timeout}
	var gql *githubv4.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(context.Background(), ts)
		hc.Timeout = timeout
		gql = githubv4.NewClient(hc)
	}

	return &Client{
		gh:       github.NewClient(hc),
		gql:      gql,
		http:     hc,
		token:    token,
		rawBase:  defaultRawBase,
		logger:   logger.Named("gitclient"),
		branches: make(map[string]string),
	}
}

// WithBaseURLs points the client at alternate endpoints. Used by tests.
func (c *Client) WithBaseURLs(rest, graphql, raw string) *Client {
	if rest != "" {
		u, err := url.Parse(strings.TrimSuffix(rest, "/") + "/")
		if err == nil {
			c.gh.BaseURL = u
		}
	}
	if graphql != "" {
		c.gql = githubv4.NewEnterpriseClient(graphql, c.http)
	}
	if raw != "" {
		c.rawBase = strings.TrimSuffix(raw, "/")
	}
	return c
}

// Authenticated reports whether a token is configured.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// ListRepositories fetches every repository visible to the token (owner,
// collaborator and organization-member affiliations). Without a token, or
// when the authenticated endpoint fails, it falls back to the primary
// account's public repositories. Both failing is reported as an error the
// caller turns into an empty selection, never an abort.
func (c *Client) ListRepositories(ctx context.Context, primary string) ([]models.RepositoryRecord, error) {
	if c.Authenticated() {
		records, err := c.listAuthenticated(ctx)
		if err == nil {
			c.logBreakdown(records, primary)
			return records, nil
		}
		c.logger.Warn("authenticated listing failed, falling back to public repos", "error", err)
	}

	records, err := c.listPublic(ctx, primary)
	if err != nil {
		return nil, fmt.Errorf("list public repositories for %s: %w", primary, err)
	}
	c.logger.Info("fetched public repositories", "count", len(records))
	return records, nil
}

func (c *Client) listAuthenticated(ctx context.Context) ([]models.RepositoryRecord, error) {
	opt := &github.RepositoryListOptions{
		Visibility:  "all",
		Affiliation: "owner,collaborator,organization_member",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var records []models.RepositoryRecord
	for {
		repos, resp, err := c.gh.Repositories.List(ctx, "", opt)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		for _, repo := range repos {
			records = append(records, toRecord(repo))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return records, nil
}

func (c *Client) listPublic(ctx context.Context, user string) ([]models.RepositoryRecord, error) {
	opt := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var records []models.RepositoryRecord
	for {
		repos, resp, err := c.gh.Repositories.List(ctx, user, opt)
		if err != nil {
			return nil, err
		}
		for _, repo := range repos {
			records = append(records, toRecord(repo))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return records, nil
}

func (c *Client) logBreakdown(records []models.RepositoryRecord, primary string) {
	owned := 0
	orgs := make(map[string]struct{})
	for _, r := range records {
		if r.Owner == primary {
			owned++
		} else {
			orgs[r.Owner] = struct{}{}
		}
	}
	c.logger.Info("fetched repositories via authenticated endpoint",
		"total", len(records),
		"owner", owned,
		"organization", len(records)-owned,
		"organizations", len(orgs),
	)
}

func toRecord(repo *github.Repository) models.RepositoryRecord {
	return models.RepositoryRecord{
		Owner:          repo.GetOwner().GetLogin(),
		Name:           repo.GetName(),
		Description:    repo.GetDescription(),
		Fork:           repo.GetFork(),
		Private:        repo.GetPrivate(),
		HTMLURL:        repo.GetHTMLURL(),
		OwnerAvatarURL: repo.GetOwner().GetAvatarURL(),
		DefaultBranch:  repo.GetDefaultBranch(),
		UpdatedAt:      repo.GetUpdatedAt().Time,
		PushedAt:       repo.GetPushedAt().Time,
	}
}

// FetchReadme returns the repository's README as raw text. A 404 is the
// normal "no README" outcome and maps to ErrNotFound.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	if !c.Authenticated() {
		return "", ErrMissingCredentials
	}

	readme, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("fetch readme for %s/%s: %w", owner, repo, err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme for %s/%s: %w", owner, repo, ErrMalformedResponse)
	}
	return content, nil
}

// DefaultBranch resolves the repository's default branch, caching the answer
// for the lifetime of the client. Any failure yields FallbackBranch.
func (c *Client) DefaultBranch(ctx context.Context, owner, repo string) string {
	key := owner + "/" + repo
	c.mu.Lock()
	if branch, ok := c.branches[key]; ok {
		c.mu.Unlock()
		return branch
	}
	c.mu.Unlock()

	branch := FallbackBranch
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		c.logger.Debug("default branch lookup failed, assuming fallback", "repo", key, "error", err)
	} else if r.GetDefaultBranch() != "" {
		branch = r.GetDefaultBranch()
	}

	c.mu.Lock()
	c.branches[key] = branch
	c.mu.Unlock()
	return branch
}

// SocialPreviewURL queries the GraphQL API for the repository's
// openGraphImageUrl. An empty string with nil error means the field was null.
func (c *Client) SocialPreviewURL(ctx context.Context, owner, repo string) (string, error) {
	if c.gql == nil {
		return "", ErrMissingCredentials
	}

	var q struct {
		Repository struct {
			OpenGraphImageURL githubv4.URI `graphql:"openGraphImageUrl"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	vars := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}

	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return "", fmt.Errorf("social preview query for %s/%s: %w", owner, repo, err)
	}
	if q.Repository.OpenGraphImageURL.URL == nil {
		return "", nil
	}
	return q.Repository.OpenGraphImageURL.URL.String(), nil
}

// RawContentURL builds the direct-file-fetch URL for a path on a branch.
func (c *Client) RawContentURL(owner, repo, branch, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBase, owner, repo, branch, strings.TrimPrefix(path, "/"))
}

// DownloadRawFile fetches a repository file from the raw-content host and
// writes it to dest. An existing dest is reused without any network call; the
// returned bool reports whether a download actually happened.
func (c *Client) DownloadRawFile(ctx context.Context, owner, repo, branch, path, dest string) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, fmt.Errorf("failed to create assets directory: %w", err)
	}

	rawURL := c.RawContentURL(owner, repo, branch, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, fmt.Errorf("download %s: %w", rawURL, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("download %s: status %d: %w", rawURL, resp.StatusCode, ErrTransport)
	}

	file, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("failed to create file %s: %w", dest, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(dest)
		return false, fmt.Errorf("write %s: %w", dest, err)
	}
	return true, nil
}
