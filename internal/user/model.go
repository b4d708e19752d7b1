package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a local identity record for a Discord account.
// The Discord id is the stable external key; the local id never changes
// for the lifetime of the record.
type User struct {
	ID          uuid.UUID `json:"id"`
	DiscordID   string    `json:"discord_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile is the subset of a fetched Discord profile the upsert consumes.
type Profile struct {
	DiscordID   string
	DisplayName string
	AvatarURL   *string // nil when the account has no avatar
}

// UpdateParams holds optional fields for a partial user update.
// Nil fields keep the stored value.
type UpdateParams struct {
	DisplayName *string
	AvatarURL   *string
	Bio         *string
}

// Stats summarizes the users table.
type Stats struct {
	TotalUsers      int64 `json:"total_users"`
	UsersWithBio    int64 `json:"users_with_bio"`
	UsersWithAvatar int64 `json:"users_with_avatar"`
}
