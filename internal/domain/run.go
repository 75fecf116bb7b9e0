package domain

import "time"

// RunStatus represents the lifecycle state of a background run
type RunStatus string

const (
	RunReceived   RunStatus = "received"
	RunGenerating RunStatus = "generating"
	RunPublishing RunStatus = "publishing"
	RunNotifying  RunStatus = "notifying"
	RunComplete   RunStatus = "complete"
	RunFailed     RunStatus = "failed"
)

// Run is the journaled record of one accepted task request. The processing
// pipeline only writes to it; nothing downstream reads it back.
type Run struct {
	ID        string
	Email     string
	Task      string
	Round     int
	Nonce     string
	Brief     string
	Status    RunStatus
	RepoURL   string
	CommitSHA string
	PagesURL  string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
