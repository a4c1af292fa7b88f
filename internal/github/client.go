// Package github reads and writes site files through the GitHub Contents API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"github.com/msomdec/gallery-admin/internal/domain"
	"golang.org/x/oauth2"
)

// Config identifies the repository and credentials used by a Client.
type Config struct {
	Owner   string
	Repo    string
	Branch  string
	Token   string
	BaseURL string // Optional; defaults to https://api.github.com/
}

// RemoteError is a non-success response from GitHub.
type RemoteError struct {
	Op         string
	Path       string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %s (status %d)", e.Op, e.Path, e.Message, e.StatusCode)
}

// Client implements domain.ContentStore.
type Client struct {
	gh     *gh.Client
	owner  string
	repo   string
	branch string
}

// New creates a Client. It returns domain.ErrNotConfigured when the
// repository or token is missing, before any network call is made.
func New(cfg Config) (*Client, error) {
	var missing []string
	if cfg.Owner == "" {
		missing = append(missing, "repository owner")
	}
	if cfg.Repo == "" {
		missing = append(missing, "repository name")
	}
	if cfg.Token == "" {
		missing = append(missing, "access token")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrNotConfigured, strings.Join(missing, ", "))
	}

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base URL: %v", domain.ErrInvalidInput, err)
		}
		client.BaseURL = u
	}

	return &Client{gh: client, owner: cfg.Owner, repo: cfg.Repo, branch: cfg.Branch}, nil
}

// ReadFile fetches a file and decodes its base64 transport encoding.
func (c *Client) ReadFile(ctx context.Context, path string) (*domain.RemoteFile, error) {
	var opts *gh.RepositoryContentGetOptions
	if c.branch != "" {
		opts = &gh.RepositoryContentGetOptions{Ref: c.branch}
	}

	file, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		return nil, translate("read", path, resp, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &domain.RemoteFile{
		Path:    path,
		Content: []byte(content),
		SHA:     file.GetSHA(),
	}, nil
}

// WriteFile replaces an existing file, using sha as the concurrency precondition.
func (c *Client) WriteFile(ctx context.Context, path string, content []byte, sha, message string) (string, error) {
	if sha == "" {
		return "", fmt.Errorf("%w: a base version is required to overwrite %s", domain.ErrInvalidInput, path)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
		SHA:     gh.String(sha),
	}
	if c.branch != "" {
		opts.Branch = gh.String(c.branch)
	}

	res, resp, err := c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	if err != nil {
		return "", translate("write", path, resp, err)
	}
	return res.GetContent().GetSHA(), nil
}

// UploadBinary creates a new file. GitHub rejects the request if the path exists.
func (c *Client) UploadBinary(ctx context.Context, path string, data []byte, message string) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: data,
	}
	if c.branch != "" {
		opts.Branch = gh.String(c.branch)
	}

	if _, resp, err := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts); err != nil {
		return translate("upload", path, resp, err)
	}
	return nil
}

// translate maps a go-github failure onto the domain error taxonomy.
func translate(op, path string, resp *gh.Response, err error) error {
	if resp == nil || resp.Response == nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", op, path, domain.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s %s: %w", op, path, domain.ErrConflict)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", op, path, domain.ErrUnauthorized)
	}

	message := "request failed"
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Message != "" {
		message = ghErr.Message
	}
	return &RemoteError{Op: op, Path: path, StatusCode: resp.StatusCode, Message: message}
}

var _ domain.ContentStore = (*Client)(nil)
