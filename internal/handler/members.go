package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"orghub/internal/member"
)

// MembersHandler handles CRUD operations for organization memberships.
type MembersHandler struct {
	members *member.Manager
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(members *member.Manager) *MembersHandler {
	return &MembersHandler{members: members}
}

// createMemberRequest is the JSON request for adding a user to an organization.
type createMemberRequest struct {
	UserID uuid.UUID     `json:"user_id"`
	OrgID  uuid.UUID     `json:"org_id"`
	Status member.Status `json:"status"`
}

// Create handles POST /api/members
func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	mem := &member.Member{
		UserID: req.UserID,
		OrgID:  req.OrgID,
		Status: req.Status,
	}

	if err := h.members.Create(r.Context(), mem); err != nil {
		switch {
		case errors.Is(err, member.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid member status")
		case errors.Is(err, member.ErrAlreadyMember):
			writeError(w, http.StatusConflict, "user is already a member of this organization")
		case errors.Is(err, member.ErrRelationMissing):
			writeError(w, http.StatusBadRequest, "user or organization not found")
		default:
			log.Printf("failed to create membership: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to create membership")
		}
		return
	}

	writeSuccess(w, http.StatusCreated, mem)
}

// Get handles GET /api/members/{id}
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid membership ID")
		return
	}

	mem, err := h.members.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			writeError(w, http.StatusNotFound, "membership not found")
			return
		}
		log.Printf("failed to get membership: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get membership")
		return
	}

	writeSuccess(w, http.StatusOK, mem)
}

// updateMemberRequest is the JSON request for changing a member's status.
type updateMemberRequest struct {
	Status member.Status `json:"status"`
}

// Update handles PUT /api/members/{id}
func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid membership ID")
		return
	}

	var req updateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	mem, err := h.members.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, member.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid member status")
		case errors.Is(err, member.ErrNotFound):
			writeError(w, http.StatusNotFound, "membership not found")
		default:
			log.Printf("failed to update membership: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to update membership")
		}
		return
	}

	writeSuccess(w, http.StatusOK, mem)
}

// Delete handles DELETE /api/members/{id}
func (h *MembersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid membership ID")
		return
	}

	if err := h.members.Delete(r.Context(), id); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			writeError(w, http.StatusNotFound, "membership not found")
			return
		}
		log.Printf("failed to delete membership: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete membership")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByOrg handles GET /api/orgs/{id}/members
func (h *MembersHandler) ListByOrg(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization ID")
		return
	}

	members, err := h.members.ListByOrg(r.Context(), orgID)
	if err != nil {
		log.Printf("failed to list members: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	if members == nil {
		members = []*member.Member{}
	}
	writeSuccess(w, http.StatusOK, members)
}

// ListByUser handles GET /api/users/{id}/memberships
func (h *MembersHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	members, err := h.members.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("failed to list memberships: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list memberships")
		return
	}

	if members == nil {
		members = []*member.Member{}
	}
	writeSuccess(w, http.StatusOK, members)
}

// Counts handles GET /api/orgs/{id}/members/counts
func (h *MembersHandler) Counts(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization ID")
		return
	}

	counts, err := h.members.CountByOrg(r.Context(), orgID)
	if err != nil {
		log.Printf("failed to count members: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to count members")
		return
	}

	writeSuccess(w, http.StatusOK, counts)
}
