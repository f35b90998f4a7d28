package domain

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusRemoved  = "removed"
	FileStatusRenamed  = "renamed"
)

// PullRequest is the metadata the review flow needs from a GitHub PR.
type PullRequest struct {
	Number  int
	Title   string
	Body    string
	Author  string
	HeadSHA string
	HeadRef string
	BaseRef string
}

// PullRequestFile is one changed file as reported by the PR files listing.
type PullRequestFile struct {
	Filename  string
	Status    string
	Patch     string
	Additions int
	Deletions int
}

// ReviewFile is the input unit sent to the AI capability: a changed file with
// its full content and, when available, the diff patch.
type ReviewFile struct {
	Filename string
	Content  string
	Patch    string
}

// ReviewComment is a single inline comment within a code review.
// Position is the 1-indexed diff position; zero means "not set" and is
// defaulted at submission time.
type ReviewComment struct {
	Path     string `json:"path"`
	Body     string `json:"body"`
	Position int    `json:"position,omitempty"`
}

// CodeReview is the structured result of one review cycle. It is parsed once
// from the provider's JSON output and never mutated afterwards.
type CodeReview struct {
	Comments []ReviewComment `json:"comments"`
	Summary  string          `json:"summary"`
	Approved bool            `json:"approved"`
}

// PullComment is an existing review comment on a PR, as fetched from GitHub.
// InReplyTo is nil for top-level comments.
type PullComment struct {
	ID        int64
	Body      string
	Path      string
	Author    string
	InReplyTo *int64
}
