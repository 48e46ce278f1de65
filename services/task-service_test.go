package services

import (
	"testing"
	"time"

	"github.com/LeylaVieira/merntasks-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyTaskPatchPartialUpdate(t *testing.T) {
	dueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		Name:        "write report",
		Description: "quarterly numbers",
		Priority:    models.PriorityMedium,
		DueDate:     dueDate,
	}

	applyTaskPatch(&task, TaskInput{Name: "write annual report"})

	if task.Name != "write annual report" {
		t.Fatalf("name not replaced: %q", task.Name)
	}
	if task.Description != "quarterly numbers" {
		t.Fatalf("absent description should be retained, got %q", task.Description)
	}
	if task.Priority != models.PriorityMedium {
		t.Fatalf("absent priority should be retained, got %q", task.Priority)
	}
	if !task.DueDate.Equal(dueDate) {
		t.Fatalf("absent due date should be retained, got %v", task.DueDate)
	}

	newDue := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	applyTaskPatch(&task, TaskInput{Priority: models.PriorityHigh, DueDate: newDue})

	if task.Priority != models.PriorityHigh || !task.DueDate.Equal(newDue) {
		t.Fatalf("present fields should be replaced: %q %v", task.Priority, task.DueDate)
	}
}

// Toggling twice returns the state to its original value, and
// completedBy names the most recent toggler after either application —
// including the transition back to pending.
func TestToggleTaskInvolution(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	task := models.Task{State: false}

	toggleTask(&task, bob)
	if !task.State {
		t.Fatal("first toggle should complete the task")
	}
	if task.CompletedBy == nil || *task.CompletedBy != bob {
		t.Fatalf("completedBy should be bob, got %v", task.CompletedBy)
	}

	toggleTask(&task, alice)
	if task.State {
		t.Fatal("second toggle should return the task to pending")
	}
	if task.CompletedBy == nil || *task.CompletedBy != alice {
		t.Fatalf("completedBy should record the last toggler even on revert, got %v", task.CompletedBy)
	}
}

func TestParseIDRejectsMalformedIDs(t *testing.T) {
	for _, bad := range []string{"", "short", "zzzzzzzzzzzzzzzzzzzzzzzz", "123456789012345678901234567890"} {
		if _, err := parseID(bad); err != ErrInvalidID {
			t.Fatalf("parseID(%q): expected ErrInvalidID, got %v", bad, err)
		}
	}

	id := primitive.NewObjectID()
	parsed, err := parseID(" " + id.Hex() + " ")
	if err != nil {
		t.Fatalf("well-formed id rejected: %v", err)
	}
	if parsed != id {
		t.Fatalf("parsed %v, want %v", parsed, id)
	}
}

func TestTaskPriorityValidation(t *testing.T) {
	for _, p := range []models.TaskPriority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		if !p.Valid() {
			t.Fatalf("%q should be valid", p)
		}
	}
	if models.TaskPriority("urgent").Valid() {
		t.Fatal("unknown priority should be invalid")
	}
}

// Deleting a task removes its id from the project's sequence exactly
// once; the other tasks keep their positions.
func TestRemoveTaskIDShrinksSequenceByOne(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	third := primitive.NewObjectID()
	tasks := []primitive.ObjectID{first, second, third}

	remaining := removeTaskID(tasks, second)

	if len(remaining) != len(tasks)-1 {
		t.Fatalf("sequence should shrink by exactly one, got %d", len(remaining))
	}
	if remaining[0] != first || remaining[1] != third {
		t.Fatalf("remaining tasks must keep their order, got %v", remaining)
	}

	// An id outside the sequence leaves it untouched.
	unchanged := removeTaskID(remaining, primitive.NewObjectID())
	if len(unchanged) != 2 || unchanged[0] != first || unchanged[1] != third {
		t.Fatalf("removing an absent id must be a no-op, got %v", unchanged)
	}
}
