package services

import (
	"github.com/LeylaVieira/merntasks-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessControl concentrates every creator/collaborator decision in one
// place instead of re-deriving the comparison at each call site. All
// checks compare canonical object ids; entities must already be loaded,
// so absence has been ruled out before a decision is asked for.
//
// Decisions return nil for permit and ErrForbidden for deny.
type AccessControl struct{}

// CanReadProject permits the creator and any collaborator.
func (AccessControl) CanReadProject(userID primitive.ObjectID, project *models.Project) error {
	if project.Creator == userID || project.HasCollaborator(userID) {
		return nil
	}
	return ErrForbidden
}

// CanMutateProject permits only the creator. Covers field edits,
// deletion and collaborator management.
func (AccessControl) CanMutateProject(userID primitive.ObjectID, project *models.Project) error {
	if project.Creator == userID {
		return nil
	}
	return ErrForbidden
}

// CanCreateTask permits only the project creator.
func (ac AccessControl) CanCreateTask(userID primitive.ObjectID, project *models.Project) error {
	return ac.CanMutateProject(userID, project)
}

// CanReadTask permits only the creator of the task's project.
// Collaborators can toggle a task's state without being able to read it
// directly; that asymmetry is intentional.
func (ac AccessControl) CanReadTask(userID primitive.ObjectID, project *models.Project) error {
	return ac.CanMutateProject(userID, project)
}

// CanEditTaskFields permits only the creator of the task's project.
func (ac AccessControl) CanEditTaskFields(userID primitive.ObjectID, project *models.Project) error {
	return ac.CanMutateProject(userID, project)
}

// CanToggleTaskState permits the creator and any collaborator of the
// task's project.
func (ac AccessControl) CanToggleTaskState(userID primitive.ObjectID, project *models.Project) error {
	return ac.CanReadProject(userID, project)
}
