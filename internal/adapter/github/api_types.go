package github

// Review events accepted by the create-review endpoint.
const (
	ReviewEventApprove        = "APPROVE"
	ReviewEventRequestChanges = "REQUEST_CHANGES"
	ReviewEventComment        = "COMMENT"
)

// pullRequestResponse is the subset of the pulls API response we consume.
type pullRequestResponse struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	Head struct {
		SHA string `json:"sha"`
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
}

// pullRequestFileResponse is one entry of the pull request files listing.
type pullRequestFileResponse struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Patch     string `json:"patch"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// contentsResponse is the repository contents API response.
type contentsResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// createReviewRequest is the request body for the create-review endpoint.
type createReviewRequest struct {
	CommitID string              `json:"commit_id,omitempty"`
	Body     string              `json:"body,omitempty"`
	Event    string              `json:"event"`
	Comments []reviewCommentSpec `json:"comments,omitempty"`
}

// reviewCommentSpec is one inline comment attached to a review.
type reviewCommentSpec struct {
	Path     string `json:"path"`
	Position int    `json:"position"`
	Body     string `json:"body"`
}

// reviewCommentResponse is one entry of the review comments listing.
type reviewCommentResponse struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	Path string `json:"path"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	InReplyToID *int64 `json:"in_reply_to_id,omitempty"`
}

// replyCommentRequest is the request body for the threaded-reply endpoint.
type replyCommentRequest struct {
	Body string `json:"body"`
}

// ErrorResponse is GitHub's error envelope, optionally carrying validation
// details for 422 responses.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []ErrorField `json:"errors,omitempty"`
}

// ErrorField is one validation error inside an ErrorResponse.
type ErrorField struct {
	Resource string `json:"resource,omitempty"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}
