package member

import (
	"time"

	"github.com/google/uuid"
)

// Status is a member's standing within an organization.
type Status string

const (
	StatusSpectating Status = "spectating"
	StatusPlaying    Status = "playing"
	StatusBanned     Status = "banned"
)

// Valid reports whether s is one of the known member statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusSpectating, StatusPlaying, StatusBanned:
		return true
	}
	return false
}

// Member links a user to an organization. A user holds at most one
// membership per organization.
type Member struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	OrgID     uuid.UUID `json:"org_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusCounts summarizes an organization's membership by status.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Spectating int64 `json:"spectating"`
	Playing    int64 `json:"playing"`
	Banned     int64 `json:"banned"`
}
