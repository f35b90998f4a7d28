// Package github is the GitHub REST collaborator: pull request metadata,
// changed files, file contents, and review submission.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the GitHub REST API.
type Client struct {
	token       string
	botUsername string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a GitHub client. The token is a personal access token or
// GITHUB_TOKEN from Actions; botUsername identifies this service's own review
// comments for reply threading.
func NewClient(token, botUsername string) *Client {
	return &Client{
		token:       token,
		botUsername: botUsername,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// GetPullRequest fetches pull request metadata.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*domain.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.baseURL, owner, repo, number)

	var resp pullRequestResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	return &domain.PullRequest{
		Number:  resp.Number,
		Title:   resp.Title,
		Body:    resp.Body,
		Author:  resp.User.Login,
		HeadSHA: resp.Head.SHA,
		HeadRef: resp.Head.Ref,
		BaseRef: resp.Base.Ref,
	}, nil
}

// GetPullRequestFiles fetches the changed-file listing for a pull request.
func (c *Client) GetPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]domain.PullRequestFile, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=100", c.baseURL, owner, repo, number)

	var resp []pullRequestFileResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	files := make([]domain.PullRequestFile, 0, len(resp))
	for _, f := range resp {
		files = append(files, domain.PullRequestFile{
			Filename:  f.Filename,
			Status:    f.Status,
			Patch:     f.Patch,
			Additions: f.Additions,
			Deletions: f.Deletions,
		})
	}
	return files, nil
}

// GetFileContent fetches a file's decoded text content at the given ref.
// Fails when the path is not a file or its content does not decode to text.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, escapePath(path))
	if ref != "" {
		reqURL += "?ref=" + url.QueryEscape(ref)
	}

	var resp contentsResponse
	if err := c.doJSON(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return "", err
	}

	if resp.Type != "file" {
		return "", fmt.Errorf("%s is not a file (type %q)", path, resp.Type)
	}
	if resp.Encoding != "base64" {
		return "", fmt.Errorf("unexpected content encoding %q for %s", resp.Encoding, path)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("content of %s is not valid text", path)
	}
	return string(decoded), nil
}

// CreateReview submits a pull request review with inline comments.
func (c *Client) CreateReview(ctx context.Context, owner, repo string, number int, commitSHA, body, event string, comments []domain.ReviewComment) error {
	specs := make([]reviewCommentSpec, 0, len(comments))
	for _, comment := range comments {
		position := comment.Position
		if position <= 0 {
			position = 1
		}
		specs = append(specs, reviewCommentSpec{
			Path:     comment.Path,
			Position: position,
			Body:     comment.Body,
		})
	}

	reqBody := createReviewRequest{
		CommitID: commitSHA,
		Body:     body,
		Event:    event,
		Comments: specs,
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.baseURL, owner, repo, number)
	return c.doJSON(ctx, http.MethodPost, url, reqBody, nil)
}

// GetReviewComments fetches all review comments on a pull request.
func (c *Client) GetReviewComments(ctx context.Context, owner, repo string, number int) ([]domain.PullComment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments?per_page=100", c.baseURL, owner, repo, number)

	var resp []reviewCommentResponse
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	comments := make([]domain.PullComment, 0, len(resp))
	for _, rc := range resp {
		comments = append(comments, domain.PullComment{
			ID:        rc.ID,
			Body:      rc.Body,
			Path:      rc.Path,
			Author:    rc.User.Login,
			InReplyTo: rc.InReplyToID,
		})
	}
	return comments, nil
}

// CreateReplyComment posts a threaded reply to an existing review comment.
func (c *Client) CreateReplyComment(ctx context.Context, owner, repo string, number int, body string, parentCommentID int64) error {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments/%d/replies",
		c.baseURL, owner, repo, number, parentCommentID)
	return c.doJSON(ctx, http.MethodPost, url, replyCommentRequest{Body: body}, nil)
}

// IsBotComment reports whether the comment was authored by the configured bot.
func (c *Client) IsBotComment(comment domain.PullComment) bool {
	return c.botUsername != "" && comment.Author == c.botUsername
}

// doJSON performs a single request with the standard GitHub headers,
// marshalling reqBody when present and unmarshalling into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, url string, reqBody, out interface{}) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &llmhttp.Error{
			Type:     llmhttp.ErrTypeTimeout,
			Message:  err.Error(),
			Provider: providerName,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return MapHTTPError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// escapePath escapes each segment of a repository path while preserving the
// segment separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
