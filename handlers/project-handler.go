package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LeylaVieira/merntasks-backend/services"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

// ListProjects returns every project the principal participates in,
// without task ids.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	projects, err := h.Service.ListProjectsForUser(r.Context(), p.ID)
	if err != nil {
		handleServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var input services.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "Project name is required")
		return
	}

	project, err := h.Service.CreateProject(r.Context(), input, p.ID)
	if err != nil {
		handleServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// GetProject returns the fully resolved project. Non-participants get
// 401, matching the rest of the project surface.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	detail, err := h.Service.GetProjectDetail(r.Context(), mux.Vars(r)["id"], p.ID)
	if err != nil {
		handleServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var patch services.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	project, err := h.Service.UpdateProject(r.Context(), mux.Vars(r)["id"], p.ID, patch)
	if err != nil {
		handleServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteProject(r.Context(), mux.Vars(r)["id"], p.ID); err != nil {
		handleServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeMessage(w, http.StatusOK, "Project deleted")
}

// FindCollaborator resolves a user by email so the creator can preview
// who they are about to invite.
func (h *ProjectHandler) FindCollaborator(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := h.Service.FindCollaboratorByEmail(r.Context(), body.Email)
	if err != nil {
		handleServiceError(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AddCollaborator invites a user onto a project. Denials answer 400,
// matching the collaborator management surface.
func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.Service.AddCollaborator(r.Context(), mux.Vars(r)["id"], p.ID, body.Email); err != nil {
		handleServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeMessage(w, http.StatusOK, "Collaborator added successfully")
}

func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "Collaborator id is required")
		return
	}

	if err := h.Service.RemoveCollaborator(r.Context(), mux.Vars(r)["id"], p.ID, body.ID); err != nil {
		handleServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeMessage(w, http.StatusOK, "Collaborator removed successfully")
}
