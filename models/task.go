package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Priority    TaskPriority        `bson:"priority" json:"priority"`
	DueDate     time.Time           `bson:"dueDate" json:"dueDate"`
	State       bool                `bson:"state" json:"state"`
	CompletedBy *primitive.ObjectID `bson:"completedBy,omitempty" json:"completedBy,omitempty"`
	Project     primitive.ObjectID  `bson:"project" json:"project"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CompletedByRef is the minimal projection of the user recorded by the
// last state toggle.
type CompletedByRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// TaskDetail is a Task with completedBy resolved for display.
type TaskDetail struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Priority    TaskPriority       `json:"priority"`
	DueDate     time.Time          `json:"dueDate"`
	State       bool               `json:"state"`
	CompletedBy *CompletedByRef    `json:"completedBy,omitempty"`
	Project     primitive.ObjectID `json:"project"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Detail builds the display projection. completedBy stays nil when the
// task has never been toggled or the user record is gone.
func (t *Task) Detail(completedBy *CompletedByRef) TaskDetail {
	return TaskDetail{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		State:       t.State,
		CompletedBy: completedBy,
		Project:     t.Project,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
