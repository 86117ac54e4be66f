package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"restack/internal/convert"
)

var ErrNotFound = errors.New("github: not found")

const defaultBaseURL = "https://api.github.com"

// Client is a minimal GitHub REST v3 client. The access token is passed
// explicitly on every call; the client itself holds no credentials.
type Client struct {
	http    *http.Client
	baseURL string

	// treeCache memoizes branch tree listings keyed owner/repo/branch to
	// spare the upstream rate limit across preview and convert calls.
	treeCache *lru.Cache[string, []convert.TreeEntry]
}

func NewClient() *Client {
	cache, _ := lru.New[string, []convert.TreeEntry](256)
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   defaultBaseURL,
		treeCache: cache,
	}
}

// NewClientWithBaseURL is used by tests to point at an httptest server.
func NewClientWithBaseURL(base string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// Repo is one entry of the authenticated user's repository listing.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Branch is one entry of a repository's branch listing.
type Branch struct {
	Name string `json:"name"`
}

// ListRepos returns the authenticated user's repositories, most recently
// pushed first.
func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	var repos []Repo
	err := c.getJSON(ctx, token, "/user/repos?sort=pushed&per_page=100", &repos)
	return repos, err
}

// ListBranches returns the branches of one repository.
func (c *Client) ListBranches(ctx context.Context, token, owner, repo string) ([]Branch, error) {
	var branches []Branch
	path := fmt.Sprintf("/repos/%s/%s/branches?per_page=100", url.PathEscape(owner), url.PathEscape(repo))
	err := c.getJSON(ctx, token, path, &branches)
	return branches, err
}

// GetTree resolves a branch to its flat recursive tree listing.
func (c *Client) GetTree(ctx context.Context, token, owner, repo, branch string) ([]convert.TreeEntry, error) {
	key := owner + "/" + repo + "@" + branch
	if entries, ok := c.treeCache.Get(key); ok {
		return entries, nil
	}
	var out struct {
		Tree      []convert.TreeEntry `json:"tree"`
		Truncated bool                `json:"truncated"`
	}
	path := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1",
		url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(branch))
	if err := c.getJSON(ctx, token, path, &out); err != nil {
		return nil, err
	}
	c.treeCache.Add(key, out.Tree)
	return out.Tree, nil
}

// GetRawFile retrieves one file's decoded content at the given ref.
func (c *Client) GetRawFile(ctx context.Context, token, owner, repo, path, ref string) (string, error) {
	var out struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	p := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s",
		url.PathEscape(owner), url.PathEscape(repo), escapePath(path), url.QueryEscape(ref))
	if err := c.getJSON(ctx, token, p, &out); err != nil {
		return "", err
	}
	if out.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(out.Content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
		return string(decoded), nil
	}
	if out.Content != "" {
		return out.Content, nil
	}
	// Blobs over 1MB come back with encoding "none" and empty content;
	// surfacing that as an empty file would be worse than skipping it.
	return "", fmt.Errorf("github: %s: no inline content (encoding %q)", path, out.Encoding)
}

// CreateRepo creates a repository for the authenticated user and returns
// its full name.
func (c *Client) CreateRepo(ctx context.Context, token, name, description string, private bool) (string, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"private":     private,
		"auto_init":   true,
	}
	var out struct {
		FullName string `json:"full_name"`
	}
	if err := c.doJSON(ctx, token, http.MethodPost, "/user/repos", body, &out); err != nil {
		return "", err
	}
	return out.FullName, nil
}

// PutFile creates or updates one file in a repository.
func (c *Client) PutFile(ctx context.Context, token, owner, repo, path, message string, content []byte) error {
	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	p := fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), escapePath(path))
	return c.doJSON(ctx, token, http.MethodPut, p, body, nil)
}

func (c *Client) getJSON(ctx context.Context, token, path string, v any) error {
	return c.doJSON(ctx, token, http.MethodGet, path, nil, v)
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, body, v any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("github: %s %s: status %s: %s", method, path, resp.Status, string(msg))
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// escapePath escapes a repo-relative path segment by segment, keeping the
// slashes.
func escapePath(p string) string {
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
