package webhook

// GitHub event names and actions the gateway acts on.
const (
	eventPing          = "ping"
	eventPullRequest   = "pull_request"
	eventReviewComment = "pull_request_review_comment"

	actionOpened      = "opened"
	actionSynchronize = "synchronize"
	actionReopened    = "reopened"
	actionCreated     = "created"
)

// repositoryPayload identifies the repository an event belongs to.
type repositoryPayload struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// pullRequestEvent is the subset of the pull_request payload the gateway needs.
type pullRequestEvent struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Repository repositoryPayload `json:"repository"`
}

// prNumber tolerates payloads that carry the number only inside pull_request.
func (e pullRequestEvent) prNumber() int {
	if e.Number != 0 {
		return e.Number
	}
	return e.PullRequest.Number
}

// reviewCommentEvent is the subset of the pull_request_review_comment payload
// the gateway needs.
type reviewCommentEvent struct {
	Action  string `json:"action"`
	Comment struct {
		ID          int64  `json:"id"`
		Body        string `json:"body"`
		Path        string `json:"path"`
		InReplyToID *int64 `json:"in_reply_to_id"`
		User        struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Repository repositoryPayload `json:"repository"`
}

// reviewCycleActions are the pull_request actions that trigger a review.
var reviewCycleActions = map[string]bool{
	actionOpened:      true,
	actionSynchronize: true,
	actionReopened:    true,
}
