package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LeylaVieira/merntasks-backend/models"
	"github.com/LeylaVieira/merntasks-backend/services"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	if err := h.Service.RegisterUser(r.Context(), input); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		handleServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeMessage(w, http.StatusOK, "User created successfully, check your email to confirm your account")
}

func (h *UserHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ConfirmUser(r.Context(), mux.Vars(r)["token"]); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeMessage(w, http.StatusOK, "Account confirmed successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.Service.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrNotConfirmed), errors.Is(err, services.ErrWrongPassword):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			handleServiceError(w, err, http.StatusForbidden)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.Service.ForgotPassword(r.Context(), body.Email); err != nil {
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeMessage(w, http.StatusOK, "We have sent an email with instructions")
}

func (h *UserHandler) CheckResetToken(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CheckResetToken(r.Context(), mux.Vars(r)["token"]); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeMessage(w, http.StatusOK, "Token is valid")
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if err := h.Service.ResetPassword(r.Context(), mux.Vars(r)["token"], body.Password); err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		handleServiceError(w, err, http.StatusForbidden)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

// Profile returns the principal's public projection straight from the
// session claims.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.UserSummary{ID: p.ID, Name: p.Name, Email: p.Email})
}
