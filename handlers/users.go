package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"moviweb/models"
	"moviweb/services/library"
)

type userService interface {
	CreateUser(ctx context.Context, name string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

var _ userService = (*library.Service)(nil)

// UsersHandler exposes the user management endpoints.
type UsersHandler struct {
	Library userService
}

func NewUsersHandler(lib userService) *UsersHandler {
	return &UsersHandler{Library: lib}
}

// List returns all registered users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Library.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Create registers a new user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if strings.TrimSpace(request.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	user, err := h.Library.CreateUser(r.Context(), request.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Delete removes a user and every movie they own.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if err := h.Library.DeleteUser(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
