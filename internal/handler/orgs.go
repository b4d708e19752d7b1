package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"orghub/internal/org"
)

// OrgsHandler handles CRUD operations for organizations.
type OrgsHandler struct {
	orgs *org.Manager
}

// NewOrgsHandler creates a new orgs handler.
func NewOrgsHandler(orgs *org.Manager) *OrgsHandler {
	return &OrgsHandler{orgs: orgs}
}

// createOrgRequest is the JSON request for creating an organization.
type createOrgRequest struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatar_url"`
	Description *string   `json:"description"`
}

// Create handles POST /api/orgs
func (h *OrgsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	o := &org.Org{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		AvatarURL:   req.AvatarURL,
		Description: req.Description,
	}

	if err := h.orgs.Create(r.Context(), o); err != nil {
		switch {
		case errors.Is(err, org.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "name is required")
		case errors.Is(err, org.ErrOwnerMissing):
			writeError(w, http.StatusBadRequest, "owner not found")
		default:
			log.Printf("failed to create organization: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to create organization")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, o)
}

// Get handles GET /api/orgs/{id}
func (h *OrgsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization ID")
		return
	}

	o, err := h.orgs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, org.ErrNotFound) {
			writeError(w, http.StatusNotFound, "organization not found")
			return
		}
		log.Printf("failed to get organization: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get organization")
		return
	}

	writeSuccess(w, http.StatusOK, o)
}

// ListByOwner handles GET /api/orgs/owner/{owner_id}
func (h *OrgsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(r.PathValue("owner_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner ID")
		return
	}

	orgs, err := h.orgs.ListByOwner(r.Context(), ownerID)
	if err != nil {
		log.Printf("failed to list organizations by owner: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list organizations")
		return
	}

	if orgs == nil {
		orgs = []*org.Org{}
	}
	writeSuccess(w, http.StatusOK, orgs)
}

// updateOrgRequest is the JSON request for a partial organization update.
type updateOrgRequest struct {
	Name        *string `json:"name"`
	AvatarURL   *string `json:"avatar_url"`
	Description *string `json:"description"`
}

// Update handles PUT /api/orgs/{id}
func (h *OrgsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization ID")
		return
	}

	var req updateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	o, err := h.orgs.Update(r.Context(), id, org.UpdateParams{
		Name:        req.Name,
		AvatarURL:   req.AvatarURL,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, org.ErrNotFound):
			writeError(w, http.StatusNotFound, "organization not found")
		case errors.Is(err, org.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "name cannot be empty")
		default:
			log.Printf("failed to update organization: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to update organization")
		}
		return
	}

	writeSuccess(w, http.StatusOK, o)
}

// Delete handles DELETE /api/orgs/{id}
func (h *OrgsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization ID")
		return
	}

	if err := h.orgs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, org.ErrNotFound) {
			writeError(w, http.StatusNotFound, "organization not found")
			return
		}
		log.Printf("failed to delete organization: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete organization")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/orgs
func (h *OrgsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orgs, err := h.orgs.List(r.Context(), limit, offset)
	if err != nil {
		log.Printf("failed to list organizations: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list organizations")
		return
	}

	if orgs == nil {
		orgs = []*org.Org{}
	}
	writeSuccess(w, http.StatusOK, orgs)
}
