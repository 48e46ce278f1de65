package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Description   string               `bson:"description" json:"description"`
	DueDate       time.Time            `bson:"dueDate" json:"dueDate"`
	Client        string               `bson:"client" json:"client"`
	Creator       primitive.ObjectID   `bson:"creator" json:"creator"`
	Collaborators []primitive.ObjectID `bson:"collaborators" json:"collaborators"`
	Tasks         []primitive.ObjectID `bson:"tasks" json:"tasks"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasCollaborator reports whether userID is in the collaborator set.
// The creator is never a collaborator.
func (p *Project) HasCollaborator(userID primitive.ObjectID) bool {
	for _, id := range p.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

// ProjectDetail is a Project with its task ids and collaborator ids
// resolved into displayable records.
type ProjectDetail struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	DueDate       time.Time          `json:"dueDate"`
	Client        string             `json:"client"`
	Creator       primitive.ObjectID `json:"creator"`
	Collaborators []UserSummary      `json:"collaborators"`
	Tasks         []TaskDetail       `json:"tasks"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}
