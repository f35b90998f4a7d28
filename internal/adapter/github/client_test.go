package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/github"
	llmhttp "github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm/http"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *github.Client {
	client := github.NewClient("test-token", "professor-bot")
	client.SetBaseURL(serverURL)
	return client
}

func TestGetPullRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/repos/octo/widgets/pulls/42", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"number": 42,
			"title": "Add widgets",
			"body": "Widget support",
			"user": {"login": "dev1"},
			"head": {"sha": "abc123", "ref": "feature/widgets"},
			"base": {"ref": "main"}
		}`))
	}))
	defer server.Close()

	pr, err := newTestClient(server.URL).GetPullRequest(context.Background(), "octo", "widgets", 42)

	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "Add widgets", pr.Title)
	assert.Equal(t, "dev1", pr.Author)
	assert.Equal(t, "abc123", pr.HeadSHA)
	assert.Equal(t, "feature/widgets", pr.HeadRef)
	assert.Equal(t, "main", pr.BaseRef)
}

func TestGetPullRequestFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/pulls/42/files", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"filename": "a.go", "status": "added", "patch": "@@ -0,0 +1 @@", "additions": 1, "deletions": 0},
			{"filename": "b.go", "status": "removed", "patch": "", "additions": 0, "deletions": 10}
		]`))
	}))
	defer server.Close()

	files, err := newTestClient(server.URL).GetPullRequestFiles(context.Background(), "octo", "widgets", 42)

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.go", files[0].Filename)
	assert.Equal(t, domain.FileStatusAdded, files[0].Status)
	assert.Equal(t, 1, files[0].Additions)
	assert.Equal(t, domain.FileStatusRemoved, files[1].Status)
}

func TestGetFileContent(t *testing.T) {
	content := "package main\n\nfunc main() {}\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/contents/cmd/main.go", r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
			"path":     "cmd/main.go",
		})
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).GetFileContent(context.Background(), "octo", "widgets", "cmd/main.go", "abc123")

	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestGetFileContent_Directory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type": "dir", "path": "cmd"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetFileContent(context.Background(), "octo", "widgets", "cmd", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a file")
}

func TestGetFileContent_BinaryContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, 0x01}),
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetFileContent(context.Background(), "octo", "widgets", "logo.png", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid text")
}

func TestCreateReview(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/repos/octo/widgets/pulls/42/reviews", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "state": "APPROVED"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateReview(context.Background(), "octo", "widgets", 42,
		"abc123", "looks good", github.ReviewEventApprove,
		[]domain.ReviewComment{
			{Path: "a.go", Body: "nit", Position: 3},
			{Path: "b.go", Body: "missing position"},
		})

	require.NoError(t, err)
	assert.Equal(t, "abc123", captured["commit_id"])
	assert.Equal(t, "APPROVE", captured["event"])
	comments := captured["comments"].([]interface{})
	require.Len(t, comments, 2)
	assert.Equal(t, float64(3), comments[0].(map[string]interface{})["position"])
	assert.Equal(t, float64(1), comments[1].(map[string]interface{})["position"])
}

func TestGetReviewComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/pulls/42/comments", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 10, "body": "original", "path": "a.go", "user": {"login": "professor-bot"}},
			{"id": 11, "body": "reply", "path": "a.go", "user": {"login": "dev1"}, "in_reply_to_id": 10}
		]`))
	}))
	defer server.Close()

	comments, err := newTestClient(server.URL).GetReviewComments(context.Background(), "octo", "widgets", 42)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(10), comments[0].ID)
	assert.Nil(t, comments[0].InReplyTo)
	require.NotNil(t, comments[1].InReplyTo)
	assert.Equal(t, int64(10), *comments[1].InReplyTo)
}

func TestCreateReplyComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/repos/octo/widgets/pulls/42/comments/10/replies", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "here is why", body["body"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 12}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateReplyComment(context.Background(), "octo", "widgets", 42, "here is why", 10)

	require.NoError(t, err)
}

func TestIsBotComment(t *testing.T) {
	client := github.NewClient("t", "professor-bot")

	assert.True(t, client.IsBotComment(domain.PullComment{Author: "professor-bot"}))
	assert.False(t, client.IsBotComment(domain.PullComment{Author: "dev1"}))

	unnamed := github.NewClient("t", "")
	assert.False(t, unnamed.IsBotComment(domain.PullComment{Author: ""}))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantType   llmhttp.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, llmhttp.ErrTypeAuthentication},
		{"not found", http.StatusNotFound, llmhttp.ErrTypeNotFound},
		{"validation failed", http.StatusUnprocessableEntity, llmhttp.ErrTypeInvalidRequest},
		{"rate limited", http.StatusTooManyRequests, llmhttp.ErrTypeRateLimit},
		{"server error", http.StatusInternalServerError, llmhttp.ErrTypeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(`{"message": "nope"}`))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).GetPullRequest(context.Background(), "octo", "widgets", 42)

			require.Error(t, err)
			var apiErr *llmhttp.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, "github", apiErr.Provider)
			assert.Contains(t, apiErr.Message, "nope")
		})
	}
}
