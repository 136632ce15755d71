package database

import "time"

type BuildMode string

const (
	BuildModeFull        BuildMode = "full"
	BuildModeIncremental BuildMode = "incremental"
)

type BuildStatus string

const (
	BuildStatusRunning   BuildStatus = "running"
	BuildStatusSucceeded BuildStatus = "succeeded"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// BuildRecord is one row of index build history.
type BuildRecord struct {
	ID           string      `json:"id"`
	Mode         BuildMode   `json:"mode"`
	Status       BuildStatus `json:"status"`
	StartedAt    time.Time   `json:"startedAt"`
	FinishedAt   *time.Time  `json:"finishedAt,omitempty"`
	FilesIndexed int         `json:"filesIndexed"`
	FilesReused  int         `json:"filesReused"`
	Error        string      `json:"error,omitempty"`
}

// BuildResult is what a finished build reports.
type BuildResult struct {
	Status       BuildStatus
	FilesIndexed int
	FilesReused  int
	Err          error
}
