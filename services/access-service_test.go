package services

import (
	"testing"

	"github.com/LeylaVieira/merntasks-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessControlDecisions(t *testing.T) {
	creator := primitive.NewObjectID()
	collaborator := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	project := &models.Project{
		ID:            primitive.NewObjectID(),
		Creator:       creator,
		Collaborators: []primitive.ObjectID{collaborator},
	}

	access := AccessControl{}

	tests := []struct {
		name     string
		decision func(primitive.ObjectID, *models.Project) error
		user     primitive.ObjectID
		permit   bool
	}{
		{"read project as creator", access.CanReadProject, creator, true},
		{"read project as collaborator", access.CanReadProject, collaborator, true},
		{"read project as stranger", access.CanReadProject, stranger, false},

		{"mutate project as creator", access.CanMutateProject, creator, true},
		{"mutate project as collaborator", access.CanMutateProject, collaborator, false},
		{"mutate project as stranger", access.CanMutateProject, stranger, false},

		{"create task as creator", access.CanCreateTask, creator, true},
		{"create task as collaborator", access.CanCreateTask, collaborator, false},

		{"read task as creator", access.CanReadTask, creator, true},
		{"read task as collaborator", access.CanReadTask, collaborator, false},

		{"edit task fields as creator", access.CanEditTaskFields, creator, true},
		{"edit task fields as collaborator", access.CanEditTaskFields, collaborator, false},

		{"toggle task state as creator", access.CanToggleTaskState, creator, true},
		{"toggle task state as collaborator", access.CanToggleTaskState, collaborator, true},
		{"toggle task state as stranger", access.CanToggleTaskState, stranger, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.decision(tc.user, project)
			if tc.permit && err != nil {
				t.Fatalf("expected permit, got %v", err)
			}
			if !tc.permit && err != ErrForbidden {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

// Collaborators can toggle a task's state on a task endpoint they cannot
// read. The asymmetry is part of the permission table.
func TestToggleWithoutReadAccess(t *testing.T) {
	creator := primitive.NewObjectID()
	collaborator := primitive.NewObjectID()

	project := &models.Project{
		Creator:       creator,
		Collaborators: []primitive.ObjectID{collaborator},
	}

	access := AccessControl{}
	if err := access.CanToggleTaskState(collaborator, project); err != nil {
		t.Fatalf("collaborator should be able to toggle: %v", err)
	}
	if err := access.CanReadTask(collaborator, project); err != ErrForbidden {
		t.Fatalf("collaborator read should be forbidden, got %v", err)
	}
}

func TestAccessComparesByID(t *testing.T) {
	creator := primitive.NewObjectID()

	// A distinct ObjectID value with the same bytes must compare equal.
	sameID, err := primitive.ObjectIDFromHex(creator.Hex())
	if err != nil {
		t.Fatal(err)
	}

	project := &models.Project{Creator: creator}
	if err := (AccessControl{}).CanMutateProject(sameID, project); err != nil {
		t.Fatalf("identical ids must match: %v", err)
	}
}
