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
)

type TaskService struct {
	TasksCollection    *mongo.Collection
	ProjectsCollection *mongo.Collection
	UsersCollection    *mongo.Collection
	Access             AccessControl
}

func NewTaskService(tasksCollection, projectsCollection, usersCollection *mongo.Collection) *TaskService {
	return &TaskService{
		TasksCollection:    tasksCollection,
		ProjectsCollection: projectsCollection,
		UsersCollection:    usersCollection,
	}
}

type TaskInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     time.Time           `json:"dueDate"`
	Project     string              `json:"project"`
}

// applyTaskPatch replaces a stored field only when the incoming value is
// present; absent fields keep their stored value.
func applyTaskPatch(task *models.Task, patch TaskInput) {
	if patch.Name != "" {
		task.Name = patch.Name
	}
	if patch.Description != "" {
		task.Description = patch.Description
	}
	if patch.Priority != "" {
		task.Priority = patch.Priority
	}
	if !patch.DueDate.IsZero() {
		task.DueDate = patch.DueDate
	}
}

// toggleTask flips the completion state and records the toggling
// principal. completedBy is set on every toggle, including the
// transition back to pending, so it always names the last actor.
func toggleTask(task *models.Task, userID primitive.ObjectID) {
	task.State = !task.State
	completedBy := userID
	task.CompletedBy = &completedBy
}

// removeTaskID drops taskID from a project's task sequence, keeping the
// relative order of the remaining tasks.
func removeTaskID(tasks []primitive.ObjectID, taskID primitive.ObjectID) []primitive.ObjectID {
	remaining := make([]primitive.ObjectID, 0, len(tasks))
	for _, id := range tasks {
		if id != taskID {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// getTaskWithProject loads a task and its owning project in one call so
// every permission decision sees the same project snapshot.
func (s *TaskService) getTaskWithProject(ctx context.Context, taskID string) (*models.Task, *models.Project, error) {
	objectID, err := parseID(taskID)
	if err != nil {
		return nil, nil, err
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": task.Project}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			// A task must never outlive its project.
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	return &task, &project, nil
}

// CreateTask stores a new pending task and appends it to the project's
// task sequence; only the project creator may create tasks.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput, userID primitive.ObjectID) (*models.Task, error) {
	projectID, err := parseID(input.Project)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	if err := s.Access.CanCreateTask(userID, &project); err != nil {
		return nil, err
	}

	if input.Priority == "" {
		input.Priority = models.PriorityLow
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	now := time.Now().UTC()
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = now
	}

	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     dueDate,
		State:       false,
		Project:     project.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := s.TasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	update := bson.M{
		"$push": bson.M{"tasks": task.ID},
		"$set":  bson.M{"updatedAt": now},
	}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, update); err != nil {
		// The task record exists but the project does not track it;
		// report the inconsistency instead of claiming success.
		logging.Logger.Errorf("Event ID: TASK_LINK_FAILED, Description: Task %s created but project %s was not updated: %v", task.ID.Hex(), project.ID.Hex(), err)
		return nil, fmt.Errorf("task created but project was not updated: %w", err)
	}

	return task, nil
}

// GetTask returns a task with completedBy resolved for display. Reads
// are creator-only.
func (s *TaskService) GetTask(ctx context.Context, taskID string, userID primitive.ObjectID) (*models.TaskDetail, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanReadTask(userID, project); err != nil {
		return nil, err
	}
	return s.resolveTask(ctx, task)
}

func (s *TaskService) resolveTask(ctx context.Context, task *models.Task) (*models.TaskDetail, error) {
	var completedBy *models.CompletedByRef
	if task.CompletedBy != nil {
		var user models.User
		err := s.UsersCollection.FindOne(ctx, bson.M{"_id": *task.CompletedBy}).Decode(&user)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("failed to fetch user: %w", err)
		}
		if err == nil {
			completedBy = &models.CompletedByRef{ID: user.ID, Name: user.Name}
		}
	}
	detail := task.Detail(completedBy)
	return &detail, nil
}

// UpdateTask applies a partial field edit; creator-only.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, userID primitive.ObjectID, patch TaskInput) (*models.Task, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanEditTaskFields(userID, project); err != nil {
		return nil, err
	}

	if patch.Priority != "" && !patch.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	applyTaskPatch(task, patch)
	task.UpdatedAt = time.Now().UTC()

	if _, err := s.TasksCollection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return task, nil
}

// DeleteTask removes the task record and its id from the project's task
// sequence; creator-only. A half-applied deletion is surfaced.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string, userID primitive.ObjectID) error {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.Access.CanEditTaskFields(userID, project); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"tasks":     removeTaskID(project.Tasks, task.ID),
		"updatedAt": time.Now().UTC(),
	}}
	if _, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": project.ID}, update); err != nil {
		return fmt.Errorf("failed to detach task from project: %w", err)
	}
	if _, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": task.ID}); err != nil {
		logging.Logger.Errorf("Event ID: TASK_DELETE_PARTIAL, Description: Task %s detached from project %s but the record was not deleted: %v", task.ID.Hex(), project.ID.Hex(), err)
		return fmt.Errorf("task detached but not deleted: %w", err)
	}
	return nil
}

// ToggleState flips the completion state, recording the principal as the
// last toggler, and returns the task already resolved for display so the
// caller does not need a second racy read.
func (s *TaskService) ToggleState(ctx context.Context, taskID string, userID primitive.ObjectID) (*models.TaskDetail, error) {
	task, project, err := s.getTaskWithProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.CanToggleTaskState(userID, project); err != nil {
		return nil, err
	}

	toggleTask(task, userID)
	task.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"state":       task.State,
		"completedBy": task.CompletedBy,
		"updatedAt":   task.UpdatedAt,
	}}
	if _, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": task.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to save task state: %w", err)
	}

	return s.resolveTask(ctx, task)
}
