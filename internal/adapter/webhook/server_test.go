package webhook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/webhook"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/usecase/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

type reviewCall struct {
	owner    string
	repo     string
	prNumber int
}

type fakeReviewer struct {
	mu sync.Mutex

	review    domain.CodeReview
	reviewErr error

	reviewed  []reviewCall
	submitted []domain.CodeReview
	testGen   []reviewCall
	comments  []domain.PullComment
}

func (f *fakeReviewer) ReviewPullRequest(ctx context.Context, owner, repo string, prNumber int) (domain.CodeReview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviewed = append(f.reviewed, reviewCall{owner, repo, prNumber})
	return f.review, f.reviewErr
}

func (f *fakeReviewer) SubmitReview(ctx context.Context, owner, repo string, prNumber int, r domain.CodeReview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, r)
	return nil
}

func (f *fakeReviewer) GenerateTestsForPullRequest(ctx context.Context, owner, repo string, prNumber int) ([]review.TestGenResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.testGen = append(f.testGen, reviewCall{owner, repo, prNumber})
	return nil, nil
}

func (f *fakeReviewer) HandleCommentResponse(ctx context.Context, owner, repo string, prNumber int, comment domain.PullComment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, comment)
	return nil
}

func newGateway(t *testing.T, autoTests bool) (*webhook.Server, *fakeReviewer, *httptest.Server) {
	t.Helper()
	reviewer := &fakeReviewer{}
	gateway := webhook.NewServer(webhook.Config{
		Secret:            testSecret,
		Path:              "/webhook",
		AutoGenerateTests: autoTests,
	}, reviewer, nil)
	server := httptest.NewServer(gateway.Handler())
	t.Cleanup(server.Close)
	return gateway, reviewer, server
}

func post(t *testing.T, url string, body []byte, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func signedHeaders(body []byte, event string) map[string]string {
	return map[string]string{
		"X-Hub-Signature-256": sign(testSecret, body),
		"X-GitHub-Event":      event,
		"Content-Type":        "application/json",
	}
}

func TestWebhook_Ping(t *testing.T) {
	_, reviewer, server := newGateway(t, false)
	body := []byte(`{"zen":"Keep it logically awesome."}`)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "ping"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	assert.Equal(t, "pong", buf.String())
	assert.Empty(t, reviewer.reviewed)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	_, reviewer, server := newGateway(t, false)
	body := []byte(`{"action":"opened"}`)

	resp := post(t, server.URL+"/webhook", body, map[string]string{
		"X-Hub-Signature-256": "sha256=deadbeef",
		"X-GitHub-Event":      "pull_request",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, reviewer.reviewed)
}

func TestWebhook_MissingSignature(t *testing.T) {
	_, _, server := newGateway(t, false)
	body := []byte(`{"action":"opened"}`)

	resp := post(t, server.URL+"/webhook", body, map[string]string{
		"X-GitHub-Event": "pull_request",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebhook_PullRequestOpenedRunsReviewCycle(t *testing.T) {
	gateway, reviewer, server := newGateway(t, false)
	reviewer.review = domain.CodeReview{Summary: "fine", Approved: true}
	body := []byte(`{
		"action": "opened",
		"number": 7,
		"repository": {"name": "widgets", "owner": {"login": "octo"}}
	}`)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "pull_request"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	gateway.Wait()

	require.Len(t, reviewer.reviewed, 1)
	assert.Equal(t, reviewCall{"octo", "widgets", 7}, reviewer.reviewed[0])
	require.Len(t, reviewer.submitted, 1)
	assert.Equal(t, "fine", reviewer.submitted[0].Summary)
	assert.Empty(t, reviewer.testGen)
}

func TestWebhook_AutoGenerateTests(t *testing.T) {
	gateway, reviewer, server := newGateway(t, true)
	body := []byte(`{
		"action": "synchronize",
		"number": 7,
		"repository": {"name": "widgets", "owner": {"login": "octo"}}
	}`)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "pull_request"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	gateway.Wait()

	require.Len(t, reviewer.testGen, 1)
	assert.Equal(t, reviewCall{"octo", "widgets", 7}, reviewer.testGen[0])
}

func TestWebhook_PullRequestIgnoredAction(t *testing.T) {
	gateway, reviewer, server := newGateway(t, false)
	body := []byte(`{
		"action": "closed",
		"number": 7,
		"repository": {"name": "widgets", "owner": {"login": "octo"}}
	}`)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "pull_request"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	gateway.Wait()
	assert.Empty(t, reviewer.reviewed)
}

func TestWebhook_ReviewCommentCreated(t *testing.T) {
	gateway, reviewer, server := newGateway(t, false)
	body := []byte(`{
		"action": "created",
		"comment": {
			"id": 11,
			"body": "why though?",
			"path": "a.go",
			"in_reply_to_id": 10,
			"user": {"login": "dev1"}
		},
		"pull_request": {"number": 7},
		"repository": {"name": "widgets", "owner": {"login": "octo"}}
	}`)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "pull_request_review_comment"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	gateway.Wait()

	require.Len(t, reviewer.comments, 1)
	comment := reviewer.comments[0]
	assert.Equal(t, int64(11), comment.ID)
	assert.Equal(t, "why though?", comment.Body)
	assert.Equal(t, "a.go", comment.Path)
	assert.Equal(t, "dev1", comment.Author)
	require.NotNil(t, comment.InReplyTo)
	assert.Equal(t, int64(10), *comment.InReplyTo)
}

func TestWebhook_UnknownEventAcknowledged(t *testing.T) {
	gateway, reviewer, server := newGateway(t, false)
	body := []byte(`{"action":"started"}`)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "watch"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	gateway.Wait()
	assert.Empty(t, reviewer.reviewed)
	assert.Empty(t, reviewer.comments)
}

func TestWebhook_MalformedPayload(t *testing.T) {
	_, _, server := newGateway(t, false)
	body := []byte(`{"action": "opened", `)

	resp := post(t, server.URL+"/webhook", body, signedHeaders(body, "pull_request"))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	_, _, server := newGateway(t, false)

	resp, err := http.Get(server.URL + "/webhook")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	_, _, server := newGateway(t, false)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status    string  `json:"status"`
		Timestamp string  `json:"timestamp"`
		Uptime    float64 `json:"uptime"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.GreaterOrEqual(t, health.Uptime, 0.0)

	_, err = time.Parse(time.RFC3339, health.Timestamp)
	assert.NoError(t, err)
}
