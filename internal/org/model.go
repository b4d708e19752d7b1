package org

import (
	"time"

	"github.com/google/uuid"
)

// Org is a Discord organization owned by a single user.
type Org struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateParams holds optional fields for a partial org update.
// Nil fields keep the stored value.
type UpdateParams struct {
	Name        *string
	AvatarURL   *string
	Description *string
}
