package model

import (
	"github.com/google/uuid"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Status of a task
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

const (
	// DefaultAssignee is used when a task is created without an assignee.
	DefaultAssignee = "Unassigned"

	// UnknownOwner is stored as UserID when the creator has no email.
	UnknownOwner = "unknown"
)

// DefaultAssignees is the assignee set used when none is configured.
var DefaultAssignees = []string{DefaultAssignee, "Developer1", "Developer2", "Developer3"}

type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssignTo    string    `json:"assignTo"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Created     string    `json:"created"`
	UserID      string    `json:"userId"`
}

// OwnedBy reports whether the task belongs to the identity with the given email.
func (t Task) OwnedBy(email string) bool {
	return t.UserID == email
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// OwnerOf returns the ownership key recorded for a task created by id.
func OwnerOf(id *Identity) string {
	if id == nil || id.Email == "" {
		return UnknownOwner
	}
	return id.Email
}
