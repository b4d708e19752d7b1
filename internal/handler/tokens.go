package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"orghub/internal/token"
)

// TokensHandler handles CRUD operations for stored Discord tokens.
type TokensHandler struct {
	tokens *token.Manager
}

// NewTokensHandler creates a new tokens handler.
func NewTokensHandler(tokens *token.Manager) *TokensHandler {
	return &TokensHandler{tokens: tokens}
}

// storeTokenRequest is the JSON request for storing a token pair.
// ExpiresIn is relative seconds; zero means the token never expires.
type storeTokenRequest struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken *string   `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Scope        *string   `json:"scope"`
	ExpiresIn    int64     `json:"expires_in"`
}

// Store handles POST /api/discord-tokens
func (h *TokensHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req storeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	tok, err := h.tokens.Put(r.Context(), req.UserID, token.Pair{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
		Scope:        req.Scope,
		ExpiresIn:    req.ExpiresIn,
	})
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) {
			writeError(w, http.StatusBadRequest, "access_token is required")
			return
		}
		log.Printf("failed to store token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store token")
		return
	}

	writeSuccess(w, http.StatusCreated, tok)
}

// Get handles GET /api/discord-tokens/user/{user_id}
func (h *TokensHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	tok, err := h.tokens.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no token found for user")
			return
		}
		log.Printf("failed to get token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get token")
		return
	}

	writeSuccess(w, http.StatusOK, tok)
}

// updateTokenRequest is the JSON request for a partial token update.
type updateTokenRequest struct {
	AccessToken  *string    `json:"access_token"`
	RefreshToken *string    `json:"refresh_token"`
	TokenType    *string    `json:"token_type"`
	Scope        *string    `json:"scope"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// Update handles PUT /api/discord-tokens/user/{user_id}
func (h *TokensHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	tok, err := h.tokens.Update(r.Context(), userID, token.UpdateParams{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
		Scope:        req.Scope,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no token found for user")
			return
		}
		log.Printf("failed to update token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update token")
		return
	}

	writeSuccess(w, http.StatusOK, tok)
}

// Delete handles DELETE /api/discord-tokens/user/{user_id}
func (h *TokensHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.tokens.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, token.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no token found for user")
			return
		}
		log.Printf("failed to delete token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Verify handles GET /api/discord-tokens/verify/{user_id}
func (h *TokensHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	verification, err := h.tokens.Verify(r.Context(), userID)
	if err != nil {
		log.Printf("failed to verify token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to verify token")
		return
	}

	writeSuccess(w, http.StatusOK, verification)
}

// Cleanup handles POST /api/discord-tokens/cleanup
func (h *TokensHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tokens.Cleanup(r.Context())
	if err != nil {
		log.Printf("failed to cleanup expired tokens: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to cleanup expired tokens")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]int64{"deleted_count": deleted})
}
