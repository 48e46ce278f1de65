package services

import (
	"context"
	"fmt"
	"time"

	"github.com/LeylaVieira/merntasks-backend/logging"
	"github.com/LeylaVieira/merntasks-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectService struct {
	ProjectsCollection *mongo.Collection
	TasksCollection    *mongo.Collection
	UsersCollection    *mongo.Collection
	Access             AccessControl
}

// NewProjectService initializes a new ProjectService with the necessary MongoDB collections.
func NewProjectService(projectsCollection, tasksCollection, usersCollection *mongo.Collection) *ProjectService {
	return &ProjectService{
		ProjectsCollection: projectsCollection,
		TasksCollection:    tasksCollection,
		UsersCollection:    usersCollection,
	}
}

type ProjectInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Client      string    `json:"client"`
}

// applyProjectPatch replaces a stored field only when the incoming value
// is present; absent fields keep their stored value.
func applyProjectPatch(project *models.Project, patch ProjectInput) {
	if patch.Name != "" {
		project.Name = patch.Name
	}
	if patch.Description != "" {
		project.Description = patch.Description
	}
	if !patch.DueDate.IsZero() {
		project.DueDate = patch.DueDate
	}
	if patch.Client != "" {
		project.Client = patch.Client
	}
}

// ListProjectsForUser returns every project the user participates in,
// as creator or collaborator. The task id list is omitted.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	filter := bson.M{"$or": []bson.M{
		{"creator": userID},
		{"collaborators": userID},
	}}

	cursor, err := s.ProjectsCollection.Find(ctx, filter, options.Find().SetProjection(bson.M{"tasks": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

// CreateProject stores a new project owned by the requesting principal.
func (s *ProjectService) CreateProject(ctx context.Context, input ProjectInput, creatorID primitive.ObjectID) (*models.Project, error) {
	now := time.Now().UTC()
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = now
	}

	project := &models.Project{
		ID:            primitive.NewObjectID(),
		Name:          input.Name,
		Description:   input.Description,
		DueDate:       dueDate,
		Client:        input.Client,
		Creator:       creatorID,
		Collaborators: []primitive.ObjectID{},
		Tasks:         []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := s.ProjectsCollection.InsertOne(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	project.ID = result.InsertedID.(primitive.ObjectID)
	return project, nil
}

// getProject loads a project by raw id, distinguishing malformed ids
// from absent projects.
func (s *ProjectService) getProject(ctx context.Context, projectID string) (*models.Project, error) {
	objectID, err := parseID(projectID)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}

// GetProjectDetail returns a project with its tasks and collaborators
// resolved, readable by the creator and collaborators only.
func (s *ProjectService) GetProjectDetail(ctx context.Context, projectID string, userID primitive.ObjectID) (*models.ProjectDetail, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanReadProject(userID, project); err != nil {
		return nil, err
	}
	return s.resolveProject(ctx, project)
}

func (s *ProjectService) resolveProject(ctx context.Context, project *models.Project) (*models.ProjectDetail, error) {
	tasks := map[primitive.ObjectID]models.Task{}
	if len(project.Tasks) > 0 {
		cursor, err := s.TasksCollection.Find(ctx, bson.M{"_id": bson.M{"$in": project.Tasks}})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch project tasks: %w", err)
		}
		var found []models.Task
		if err := cursor.All(ctx, &found); err != nil {
			return nil, fmt.Errorf("failed to decode project tasks: %w", err)
		}
		for _, task := range found {
			tasks[task.ID] = task
		}
	}

	// One users query covers collaborators and every completedBy
	// reference on the tasks.
	userIDs := append([]primitive.ObjectID{}, project.Collaborators...)
	for _, task := range tasks {
		if task.CompletedBy != nil {
			userIDs = append(userIDs, *task.CompletedBy)
		}
	}
	users, err := s.lookupUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	detail := &models.ProjectDetail{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		DueDate:       project.DueDate,
		Client:        project.Client,
		Creator:       project.Creator,
		Collaborators: []models.UserSummary{},
		Tasks:         []models.TaskDetail{},
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}

	for _, id := range project.Collaborators {
		if user, ok := users[id]; ok {
			detail.Collaborators = append(detail.Collaborators, user.Summary())
		}
	}

	// Resolve in the order the project tracks its tasks.
	for _, id := range project.Tasks {
		task, ok := tasks[id]
		if !ok {
			continue
		}
		var completedBy *models.CompletedByRef
		if task.CompletedBy != nil {
			if user, ok := users[*task.CompletedBy]; ok {
				completedBy = &models.CompletedByRef{ID: user.ID, Name: user.Name}
			}
		}
		detail.Tasks = append(detail.Tasks, task.Detail(completedBy))
	}

	return detail, nil
}

func (s *ProjectService) lookupUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	users := map[primitive.ObjectID]models.User{}
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := s.UsersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, user := range found {
		users[user.ID] = user
	}
	return users, nil
}

// UpdateProject applies a partial edit; only the creator may edit.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, userID primitive.ObjectID, patch ProjectInput) (*models.Project, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanMutateProject(userID, project); err != nil {
		return nil, err
	}

	applyProjectPatch(project, patch)
	project.UpdatedAt = time.Now().UTC()

	if _, err := s.ProjectsCollection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project and its tasks; only the creator may
// delete. A failed task cleanup is reported, not masked.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string, userID primitive.ObjectID) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.Access.CanMutateProject(userID, project); err != nil {
		return err
	}

	if _, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": project.ID}); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if _, err := s.TasksCollection.DeleteMany(ctx, bson.M{"project": project.ID}); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_TASK_CASCADE_FAILED, Description: Project %s deleted but task cleanup failed: %v", project.ID.Hex(), err)
		return fmt.Errorf("project deleted but task cleanup failed: %w", err)
	}
	return nil
}

// CheckMembership reports whether the user participates in the project,
// as creator or collaborator. Used to gate realtime room joins.
func (s *ProjectService) CheckMembership(ctx context.Context, projectID string, userID primitive.ObjectID) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	return s.Access.CanReadProject(userID, project)
}

// appendCollaborator adds a candidate to the collaborator set. The
// creator can never join it, and a repeated grant fails instead of
// silently succeeding.
func appendCollaborator(project *models.Project, candidateID primitive.ObjectID) error {
	if candidateID == project.Creator {
		return ErrSelfCollaboration
	}
	if project.HasCollaborator(candidateID) {
		return ErrAlreadyCollaborator
	}
	project.Collaborators = append(project.Collaborators, candidateID)
	return nil
}

// FindCollaboratorByEmail looks up a candidate collaborator by exact
// email match, returning only the public projection.
func (s *ProjectService) FindCollaboratorByEmail(ctx context.Context, email string) (*models.UserSummary, error) {
	var user models.User
	err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	summary := user.Summary()
	return &summary, nil
}

// AddCollaborator grants a user collaborator access to a project. The
// same call repeated fails with ErrAlreadyCollaborator rather than
// silently succeeding.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID string, userID primitive.ObjectID, email string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.Access.CanMutateProject(userID, project); err != nil {
		return err
	}

	var candidate models.User
	if err := s.UsersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&candidate); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := appendCollaborator(project, candidate.ID); err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"collaborators": candidate.ID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, update); err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

// RemoveCollaborator revokes collaborator access. Removing a user who
// is not on the project is not an error.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectID string, userID primitive.ObjectID, collaboratorID string) error {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.Access.CanMutateProject(userID, project); err != nil {
		return err
	}

	collaboratorObjectID, err := parseID(collaboratorID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$pull": bson.M{"collaborators": collaboratorObjectID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, update); err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	return nil
}
