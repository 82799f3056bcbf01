package models

import "time"

// TaskStatus enumerates the board columns a task can sit in.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "BACKLOG"
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// ValidTaskStatus reports whether the value is one of the known statuses.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// PositionStep is the spacing between adjacent tasks in a column. New tasks
// land at highest position + step so siblings can be reordered without
// renumbering.
const PositionStep = 1000

// Task belongs to a project and, transitively, to exactly one workspace.
// Authorization is always resolved through WorkspaceID, never on the task.
type Task struct {
	BaseModel

	Name        string     `gorm:"not null" json:"name"`
	Status      TaskStatus `gorm:"not null;index" json:"status"`
	WorkspaceID string     `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ProjectID   string     `gorm:"type:uuid;not null;index" json:"project_id"`
	AssigneeID  string     `gorm:"type:uuid;not null;index" json:"assignee_id"`
	Description string     `json:"description,omitempty"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	Position    int        `gorm:"not null" json:"position"`

	// Populated by the two-phase fetch-then-join enrichment; best effort,
	// nil when the referenced record no longer exists.
	Project  *Project `gorm:"-" json:"project,omitempty"`
	Assignee *Member  `gorm:"-" json:"assignee,omitempty"`
}
