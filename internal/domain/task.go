package domain

import (
	"fmt"
	"strings"
)

// Attachment is a named file referenced by a task request. The URL may be a
// regular address or an inline data-URI.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TaskRequest is the inbound payload describing a page to build and publish.
// It is immutable once received.
type TaskRequest struct {
	Email         string       `json:"email"`
	Secret        string       `json:"secret"`
	Task          string       `json:"task"`
	Round         int          `json:"round"`
	Nonce         string       `json:"nonce"`
	Brief         string       `json:"brief"`
	Checks        []string     `json:"checks"`
	EvaluationURL string       `json:"evaluation_url"`
	Attachments   []Attachment `json:"attachments,omitempty"`
}

// RepoName returns the deterministic repository name for this task and round.
func (t *TaskRequest) RepoName() string {
	return fmt.Sprintf("%s-%d", t.Task, t.Round)
}

// Validate checks the request shape. The secret is checked separately by the
// server, not here.
func (t *TaskRequest) Validate() error {
	if strings.TrimSpace(t.Task) == "" {
		return fmt.Errorf("task name is required")
	}
	if t.Round != 1 && t.Round != 2 {
		return fmt.Errorf("round must be 1 or 2, got %d", t.Round)
	}
	if strings.TrimSpace(t.Brief) == "" {
		return fmt.Errorf("brief is required")
	}
	if strings.TrimSpace(t.EvaluationURL) == "" {
		return fmt.Errorf("evaluation_url is required")
	}
	return nil
}

// Artifact is the generated output for one task: the page document plus the
// README derived from brief, checks and task identifiers.
type Artifact struct {
	Document string
	README   string
}

// PublishResult describes where the generated files ended up.
type PublishResult struct {
	RepoURL   string
	CommitSHA string
	PagesURL  string
}

// Result is the payload posted to the evaluation callback URL.
type Result struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}
