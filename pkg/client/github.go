package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGitHubAPIBase = "https://api.github.com"

var (
	ErrNotFound = errors.New("content not found")
	ErrConflict = errors.New("content changed since it was read")
)

type GitHubConfig struct {
	APIBase string
	Owner   string
	Repo    string
	Branch  string
	Token   string
	Timeout time.Duration
}

// GitHubClient reads and writes repository files through the contents API.
type GitHubClient struct {
	http   *HttpClient
	owner  string
	repo   string
	branch string
}

type ContentFile struct {
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}

// Decoded returns the file body. The API wraps base64 content at 60 columns.
func (f *ContentFile) Decoded() ([]byte, error) {
	if f.Encoding != "" && f.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q", f.Encoding)
	}
	return base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Content, "\n", ""))
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type putContentResponse struct {
	Content ContentFile `json:"content"`
}

func NewGitHubClient(cfg GitHubConfig) *GitHubClient {
	base := cfg.APIBase
	if base == "" {
		base = DefaultGitHubAPIBase
	}
	hc := NewHttpClient(strings.TrimSuffix(base, "/"), cfg.Timeout)
	hc.Headers["Accept"] = "application/vnd.github+json"
	hc.Headers["X-GitHub-Api-Version"] = "2022-11-28"
	if cfg.Token != "" {
		hc.Headers["Authorization"] = "Bearer " + cfg.Token
	}
	return &GitHubClient{
		http:   hc,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: cfg.Branch,
	}
}

func (c *GitHubClient) contentsPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, strings.Join(segments, "/"))
}

// GetContent fetches one file. A missing file returns ErrNotFound.
func (c *GitHubClient) GetContent(ctx context.Context, path string) (*ContentFile, error) {
	p := c.contentsPath(path)
	if c.branch != "" {
		p += "?ref=" + url.QueryEscape(c.branch)
	}
	resp, err := c.http.GET(ctx, p)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get %s: %s", path, GetErrorMessage(resp))
	}

	var file ContentFile
	if err := resp.DecodeJSON(&file); err != nil {
		return nil, fmt.Errorf("failed to decode content %s: %w", path, err)
	}
	return &file, nil
}

// PutContent creates or replaces a file. sha must be the current blob sha
// when the file exists; a stale sha returns ErrConflict.
func (c *GitHubClient) PutContent(ctx context.Context, path string, data []byte, message, sha string) (*ContentFile, error) {
	body := putContentRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(data),
		Branch:  c.branch,
		SHA:     sha,
	}
	resp, err := c.http.PUT(ctx, c.contentsPath(path), body)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("put %s: %w: %s", path, ErrConflict, GetErrorMessage(resp))
	default:
		return nil, fmt.Errorf("put %s: %s", path, GetErrorMessage(resp))
	}

	var out putContentResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("failed to decode put response %s: %w", path, err)
	}
	return &out.Content, nil
}

// Ping checks that the repository is reachable with the configured token.
func (c *GitHubClient) Ping(ctx context.Context) error {
	resp, err := c.http.GET(ctx, fmt.Sprintf("/repos/%s/%s", c.owner, c.repo))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("repository %s/%s: %s", c.owner, c.repo, GetErrorMessage(resp))
	}
	return nil
}
