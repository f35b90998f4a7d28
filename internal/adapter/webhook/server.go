package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
	reviewuc "github.com/KoVaL05/PRofessor-github-reviewer/internal/usecase/review"
)

// Reviewer is the orchestrator surface the gateway dispatches to.
type Reviewer interface {
	ReviewPullRequest(ctx context.Context, owner, repo string, prNumber int) (domain.CodeReview, error)
	SubmitReview(ctx context.Context, owner, repo string, prNumber int, review domain.CodeReview) error
	GenerateTestsForPullRequest(ctx context.Context, owner, repo string, prNumber int) ([]reviewuc.TestGenResult, error)
	HandleCommentResponse(ctx context.Context, owner, repo string, prNumber int, comment domain.PullComment) error
}

// Config holds the gateway settings.
type Config struct {
	// Secret is the shared webhook secret used for signature verification.
	Secret string
	// Path is the webhook endpoint path, e.g. "/webhook".
	Path string
	// AutoGenerateTests enables the per-file test generation pass after a
	// review is submitted.
	AutoGenerateTests bool
}

// Server routes webhook deliveries to the review orchestrator. Event handling
// past signature verification runs asynchronously: the HTTP response is never
// gated on AI completion or GitHub submission.
type Server struct {
	cfg      Config
	reviewer Reviewer
	logger   reviewuc.Logger
	mux      *http.ServeMux
	started  time.Time
	wg       sync.WaitGroup
}

// NewServer creates a gateway for the given reviewer. Logger may be nil.
func NewServer(cfg Config, reviewer Reviewer, logger reviewuc.Logger) *Server {
	if cfg.Path == "" {
		cfg.Path = "/webhook"
	}

	s := &Server{
		cfg:      cfg,
		reviewer: reviewer,
		logger:   logger,
		mux:      http.NewServeMux(),
		started:  time.Now(),
	}
	s.mux.HandleFunc(cfg.Path, s.handleWebhook)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// Handler returns the HTTP handler for the gateway.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Wait blocks until all asynchronously dispatched event work has finished.
// Used by graceful shutdown and by tests joining the dispatch goroutines.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if !VerifySignature(s.cfg.Secret, body, r.Header.Get("X-Hub-Signature-256")) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Header.Get("X-GitHub-Event") {
	case eventPing:
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "pong")

	case eventPullRequest:
		var event pullRequestEvent
		if err := json.Unmarshal(body, &event); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if reviewCycleActions[event.Action] {
			s.dispatch(func(ctx context.Context) {
				s.runReviewCycle(ctx, event.Repository.Owner.Login, event.Repository.Name, event.prNumber())
			})
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")

	case eventReviewComment:
		var event reviewCommentEvent
		if err := json.Unmarshal(body, &event); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if event.Action == actionCreated {
			comment := domain.PullComment{
				ID:        event.Comment.ID,
				Body:      event.Comment.Body,
				Path:      event.Comment.Path,
				Author:    event.Comment.User.Login,
				InReplyTo: event.Comment.InReplyToID,
			}
			owner, repo, number := event.Repository.Owner.Login, event.Repository.Name, event.PullRequest.Number
			s.dispatch(func(ctx context.Context) {
				if err := s.reviewer.HandleCommentResponse(ctx, owner, repo, number, comment); err != nil {
					s.logWarning(ctx, "comment response failed", map[string]interface{}{
						"pr":    number,
						"error": err.Error(),
					})
				}
			})
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")

	default:
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}
}

// runReviewCycle generates a review, submits it, and optionally generates
// tests. Failures are logged; by this point the webhook response has already
// been sent.
func (s *Server) runReviewCycle(ctx context.Context, owner, repo string, prNumber int) {
	result, err := s.reviewer.ReviewPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		s.logWarning(ctx, "review failed", map[string]interface{}{
			"pr":    prNumber,
			"error": err.Error(),
		})
		return
	}

	if err := s.reviewer.SubmitReview(ctx, owner, repo, prNumber, result); err != nil {
		s.logWarning(ctx, "review submission failed", map[string]interface{}{
			"pr":    prNumber,
			"error": err.Error(),
		})
		return
	}

	s.logInfo(ctx, "review submitted", map[string]interface{}{
		"pr":       prNumber,
		"approved": result.Approved,
		"comments": len(result.Comments),
	})

	if s.cfg.AutoGenerateTests {
		if _, err := s.reviewer.GenerateTestsForPullRequest(ctx, owner, repo, prNumber); err != nil {
			s.logWarning(ctx, "test generation failed", map[string]interface{}{
				"pr":    prNumber,
				"error": err.Error(),
			})
		}
	}
}

// dispatch runs fn on its own goroutine, tracked by the server's WaitGroup.
// The context is detached from the HTTP request so in-flight work survives
// the response.
func (s *Server) dispatch(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(context.Background())
	}()
}

type healthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Seconds(),
	})
}

func (s *Server) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.LogWarning(ctx, message, fields)
		return
	}
	log.Printf("warning: %s: %v", message, fields)
}

func (s *Server) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.LogInfo(ctx, message, fields)
	}
}
