package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"orghub/internal/user"
)

// UsersHandler handles CRUD operations for users.
type UsersHandler struct {
	users *user.Manager
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users *user.Manager) *UsersHandler {
	return &UsersHandler{users: users}
}

// createUserRequest is the JSON request for creating a user directly.
type createUserRequest struct {
	DiscordID   string  `json:"discord_id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

// Create handles POST /api/users
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u := &user.User{
		DiscordID:   req.DiscordID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
	}

	if err := h.users.Create(r.Context(), u); err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidProfile):
			writeError(w, http.StatusBadRequest, "discord_id and display_name are required")
		case errors.Is(err, user.ErrDuplicateDiscord):
			writeError(w, http.StatusBadRequest, "user with this Discord ID already exists")
		default:
			log.Printf("failed to create user: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, u)
}

// Get handles GET /api/users/{id}
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("failed to get user: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	writeSuccess(w, http.StatusOK, u)
}

// GetByDiscordID handles GET /api/users/discord/{discord_id}
func (h *UsersHandler) GetByDiscordID(w http.ResponseWriter, r *http.Request) {
	discordID := r.PathValue("discord_id")
	if discordID == "" {
		writeError(w, http.StatusBadRequest, "discord_id is required")
		return
	}

	u, err := h.users.GetByDiscordID(r.Context(), discordID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("failed to get user by discord id: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	writeSuccess(w, http.StatusOK, u)
}

// updateUserRequest is the JSON request for a partial user update.
type updateUserRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
}

// Update handles PUT /api/users/{id}
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u, err := h.users.Update(r.Context(), id, user.UpdateParams{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("failed to update user: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeSuccess(w, http.StatusOK, u)
}

// Delete handles DELETE /api/users/{id}
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("failed to delete user: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		log.Printf("failed to list users: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	if users == nil {
		users = []*user.User{}
	}
	writeSuccess(w, http.StatusOK, users)
}

// Stats handles GET /api/users/stats
func (h *UsersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats(r.Context())
	if err != nil {
		log.Printf("failed to get user stats: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user stats")
		return
	}

	writeSuccess(w, http.StatusOK, stats)
}
