package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LeylaVieira/merntasks-backend/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	Service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var input services.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "Task name is required")
		return
	}

	task, err := h.Service.CreateTask(r.Context(), input, p.ID)
	if err != nil {
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GetTask returns a task with completedBy resolved. Reads are
// creator-only.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	task, err := h.Service.GetTask(r.Context(), mux.Vars(r)["id"], p.ID)
	if err != nil {
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var patch services.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.Service.UpdateTask(r.Context(), mux.Vars(r)["id"], p.ID, patch)
	if err != nil {
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteTask(r.Context(), mux.Vars(r)["id"], p.ID); err != nil {
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted")
}

// ToggleTaskState flips the completion state. Collaborators may toggle
// even though they cannot read the task endpoint directly.
func (h *TaskHandler) ToggleTaskState(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	task, err := h.Service.ToggleState(r.Context(), mux.Vars(r)["id"], p.ID)
	if err != nil {
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
