package services

import "errors"

// Sentinel errors shared by the services. Handlers translate these into
// per-endpoint status codes; anything else bubbling out of a service is
// a persistence failure and maps to 500.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrForbidden means the entity exists but the principal lacks the
	// required relationship to it.
	ErrForbidden = errors.New("action not allowed")

	// ErrInvalidID means the supplied identifier is not a well-formed
	// object id. Raised before any store access.
	ErrInvalidID = errors.New("invalid id format")

	ErrSelfCollaboration   = errors.New("the project creator cannot be a collaborator")
	ErrAlreadyCollaborator = errors.New("user already belongs to the project")
	ErrInvalidPriority     = errors.New("invalid task priority")

	ErrEmailTaken    = errors.New("user already registered")
	ErrWeakPassword  = errors.New("password must be at least 6 characters long")
	ErrWrongPassword = errors.New("wrong password")
	ErrNotConfirmed  = errors.New("account has not been confirmed")
	ErrInvalidToken  = errors.New("invalid token")
)
