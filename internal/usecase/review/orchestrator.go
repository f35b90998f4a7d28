// Package review coordinates the GitHub collaborator and the AI capability:
// it assembles file contents for a pull request, obtains a structured review,
// submits it, generates tests, and answers follow-up comments.
package review

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/llm"
	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
)

// Review events submitted to GitHub.
const (
	eventApprove = "APPROVE"
	eventComment = "COMMENT"
)

const fallbackCommentBody = "Automated review was unavailable for this file; it has been marked as reviewed."

// GitHub defines the outbound port to the GitHub REST collaborator.
type GitHub interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*domain.PullRequest, error)
	GetPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]domain.PullRequestFile, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error)
	CreateReview(ctx context.Context, owner, repo string, number int, commitSHA, body, event string, comments []domain.ReviewComment) error
	GetReviewComments(ctx context.Context, owner, repo string, number int) ([]domain.PullComment, error)
	CreateReplyComment(ctx context.Context, owner, repo string, number int, body string, parentCommentID int64) error
	IsBotComment(comment domain.PullComment) bool
}

// Store is the optional audit sink for submitted reviews. Failures are logged
// and never block the review flow.
type Store interface {
	RecordSubmission(ctx context.Context, submission Submission) error
}

// Submission is one audit record of a review posted to GitHub.
type Submission struct {
	Owner       string
	Repo        string
	PRNumber    int
	CommitSHA   string
	Event       string
	Summary     string
	Comments    int
	SubmittedAt time.Time
}

// FileResult is the per-file outcome of the concurrent content fetch. Failed
// fetches carry their error instead of aborting the whole review.
type FileResult struct {
	File    domain.PullRequestFile
	Content string
	Err     error
}

// TestGenResult is the per-file outcome of a PR-wide test generation pass.
type TestGenResult struct {
	Path string
	Err  error
}

// Deps holds the orchestrator's collaborators. GitHub and AI are required;
// Logger and Store are optional.
type Deps struct {
	GitHub GitHub
	AI     llm.Capability
	Logger Logger
	Store  Store
}

// Orchestrator implements the review use case over injected collaborators.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator creates an orchestrator with the given dependencies.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// ReviewPullRequest assembles the changed files of a pull request and obtains
// a structured review from the AI capability.
//
// File contents are fetched concurrently at the PR head commit; individual
// fetch failures are recorded per file and excluded. With zero usable files
// the capability is not called and an unapproved empty review is returned.
// A capability failure degrades to a fallback review with one placeholder
// comment per fetched file so that review submission always proceeds.
func (o *Orchestrator) ReviewPullRequest(ctx context.Context, owner, repo string, prNumber int) (domain.CodeReview, error) {
	pr, err := o.deps.GitHub.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return domain.CodeReview{}, fmt.Errorf("failed to fetch pull request %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	changed, err := o.deps.GitHub.GetPullRequestFiles(ctx, owner, repo, prNumber)
	if err != nil {
		return domain.CodeReview{}, fmt.Errorf("failed to fetch changed files for %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	results := o.fetchFileContents(ctx, owner, repo, pr.HeadSHA, changed)

	var files []domain.ReviewFile
	for _, result := range results {
		if result.Err != nil {
			o.logWarning(ctx, "failed to fetch file content", map[string]interface{}{
				"file":  result.File.Filename,
				"error": result.Err.Error(),
			})
			continue
		}
		if result.Content == "" {
			continue
		}
		files = append(files, domain.ReviewFile{
			Filename: result.File.Filename,
			Content:  result.Content,
			Patch:    result.File.Patch,
		})
	}

	if len(files) == 0 {
		return domain.CodeReview{
			Comments: []domain.ReviewComment{},
			Summary:  "No reviewable files were found in this pull request.",
			Approved: false,
		}, nil
	}

	reviewResult, err := o.deps.AI.ReviewPullRequest(ctx, files)
	if err != nil {
		o.logWarning(ctx, "AI review failed, falling back to placeholder review", map[string]interface{}{
			"pr":    prNumber,
			"error": err.Error(),
		})
		return fallbackReview(files, err), nil
	}

	return reviewResult, nil
}

// fetchFileContents fetches the content of every non-removed file at the given
// ref concurrently and joins the results. Concurrency is bounded only by the
// PR's file count.
func (o *Orchestrator) fetchFileContents(ctx context.Context, owner, repo, ref string, changed []domain.PullRequestFile) []FileResult {
	var toFetch []domain.PullRequestFile
	for _, file := range changed {
		if file.Status == domain.FileStatusRemoved {
			continue
		}
		toFetch = append(toFetch, file)
	}

	var wg sync.WaitGroup
	resultsChan := make(chan FileResult, len(toFetch))

	for _, file := range toFetch {
		wg.Add(1)
		go func(file domain.PullRequestFile) {
			defer wg.Done()
			content, err := o.deps.GitHub.GetFileContent(ctx, owner, repo, file.Filename, ref)
			resultsChan <- FileResult{File: file, Content: content, Err: err}
		}(file)
	}

	wg.Wait()
	close(resultsChan)

	results := make([]FileResult, 0, len(toFetch))
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}

// fallbackReview marks every fetched file as reviewed without AI findings.
func fallbackReview(files []domain.ReviewFile, cause error) domain.CodeReview {
	comments := make([]domain.ReviewComment, 0, len(files))
	for _, file := range files {
		comments = append(comments, domain.ReviewComment{
			Path:     file.Filename,
			Body:     fallbackCommentBody,
			Position: 1,
		})
	}
	return domain.CodeReview{
		Comments: comments,
		Summary:  fmt.Sprintf("AI review failed: %v. Files were marked as reviewed without analysis.", cause),
		Approved: false,
	}
}

// SubmitReview posts a review to GitHub against the PR's current head commit.
// An approved review is submitted as APPROVE, anything else as COMMENT.
// Comment positions default to 1 when unset.
func (o *Orchestrator) SubmitReview(ctx context.Context, owner, repo string, prNumber int, review domain.CodeReview) error {
	pr, err := o.deps.GitHub.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch pull request %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	event := eventComment
	if review.Approved {
		event = eventApprove
	}

	comments := make([]domain.ReviewComment, 0, len(review.Comments))
	for _, comment := range review.Comments {
		if comment.Position <= 0 {
			comment.Position = 1
		}
		comments = append(comments, comment)
	}

	if err := o.deps.GitHub.CreateReview(ctx, owner, repo, prNumber, pr.HeadSHA, review.Summary, event, comments); err != nil {
		return fmt.Errorf("failed to submit review for %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	if o.deps.Store != nil {
		submission := Submission{
			Owner:       owner,
			Repo:        repo,
			PRNumber:    prNumber,
			CommitSHA:   pr.HeadSHA,
			Event:       event,
			Summary:     review.Summary,
			Comments:    len(comments),
			SubmittedAt: time.Now(),
		}
		if err := o.deps.Store.RecordSubmission(ctx, submission); err != nil {
			o.logWarning(ctx, "failed to record review submission", map[string]interface{}{
				"pr":    prNumber,
				"error": err.Error(),
			})
		}
	}

	return nil
}

// GenerateTests fetches a file at the given branch and asks the AI capability
// to generate tests for it.
func (o *Orchestrator) GenerateTests(ctx context.Context, filePath, owner, repo, branch string) (string, error) {
	content, err := o.deps.GitHub.GetFileContent(ctx, owner, repo, filePath, branch)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s for test generation: %w", filePath, err)
	}

	tests, err := o.deps.AI.GenerateTests(ctx, filePath, content)
	if err != nil {
		return "", fmt.Errorf("failed to generate tests for %s: %w", filePath, err)
	}
	return tests, nil
}

// GenerateTestsForPullRequest generates tests for every changed source file of
// a pull request and posts each as a separate comment-only review. Per-file
// failures are collected into the returned batch instead of aborting the loop.
func (o *Orchestrator) GenerateTestsForPullRequest(ctx context.Context, owner, repo string, prNumber int) ([]TestGenResult, error) {
	pr, err := o.deps.GitHub.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	changed, err := o.deps.GitHub.GetPullRequestFiles(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch changed files for %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	var results []TestGenResult
	for _, file := range changed {
		if file.Status == domain.FileStatusRemoved || isTestFile(file.Filename) || !isSourceFile(file.Filename) {
			continue
		}

		result := TestGenResult{Path: file.Filename}
		tests, err := o.GenerateTests(ctx, file.Filename, owner, repo, pr.HeadRef)
		if err == nil {
			body := fmt.Sprintf("Suggested tests for `%s`:\n\n```\n%s\n```", file.Filename, tests)
			err = o.deps.GitHub.CreateReview(ctx, owner, repo, prNumber, pr.HeadSHA, body, eventComment, nil)
		}
		if err != nil {
			result.Err = err
			o.logWarning(ctx, "test generation failed for file", map[string]interface{}{
				"file":  file.Filename,
				"error": err.Error(),
			})
		}
		results = append(results, result)
	}

	return results, nil
}

// HandleCommentResponse answers a developer's threaded reply to one of the
// bot's review comments. Replies to non-bot comments and top-level comments
// are ignored. Code-context lookup is best effort: a failed content fetch is
// logged and the reply is generated without it.
func (o *Orchestrator) HandleCommentResponse(ctx context.Context, owner, repo string, prNumber int, comment domain.PullComment) error {
	if comment.InReplyTo == nil {
		return nil
	}

	existing, err := o.deps.GitHub.GetReviewComments(ctx, owner, repo, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch review comments for %s/%s#%d: %w", owner, repo, prNumber, err)
	}

	var original *domain.PullComment
	for i := range existing {
		if existing[i].ID == *comment.InReplyTo {
			original = &existing[i]
			break
		}
	}
	if original == nil {
		o.logInfo(ctx, "reply references unknown comment, ignoring", map[string]interface{}{
			"replyTo": *comment.InReplyTo,
		})
		return nil
	}
	if !o.deps.GitHub.IsBotComment(*original) {
		return nil
	}

	var codeContext string
	if original.Path != "" {
		content, err := o.deps.GitHub.GetFileContent(ctx, owner, repo, original.Path, "HEAD")
		if err != nil {
			o.logWarning(ctx, "failed to fetch code context for reply", map[string]interface{}{
				"file":  original.Path,
				"error": err.Error(),
			})
		} else {
			codeContext = content
		}
	}

	response, err := o.deps.AI.RespondToComment(ctx, comment.Body, codeContext)
	if err != nil {
		return fmt.Errorf("failed to generate comment response: %w", err)
	}

	if err := o.deps.GitHub.CreateReplyComment(ctx, owner, repo, prNumber, response, original.ID); err != nil {
		return fmt.Errorf("failed to post reply comment: %w", err)
	}
	return nil
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
		return
	}
	log.Printf("warning: %s: %v", message, fields)
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, message, fields)
	}
}
