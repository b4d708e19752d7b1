package handler

import (
	"net/http"

	"orghub/internal/auth"
	"orghub/internal/config"
	"orghub/internal/database"
	"orghub/internal/member"
	"orghub/internal/org"
	"orghub/internal/token"
	"orghub/internal/user"
)

// Deps holds everything the HTTP layer needs to serve requests.
type Deps struct {
	Config  *config.Config
	DB      *database.DB
	Flow    *auth.Service
	Users   *user.Manager
	Orgs    *org.Manager
	Members *member.Manager
	Tokens  *token.Manager
}

// RegisterRoutes wires every route onto the mux.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	health := NewHealthHandler(deps.DB)
	authH := NewAuthHandler(deps.Flow, deps.Config)
	users := NewUsersHandler(deps.Users)
	orgs := NewOrgsHandler(deps.Orgs)
	members := NewMembersHandler(deps.Members)
	tokens := NewTokensHandler(deps.Tokens)

	// Health
	mux.HandleFunc("GET /health", health.Check)
	mux.HandleFunc("GET /health/db", health.CheckDB)

	// Discord OAuth
	mux.HandleFunc("GET /auth/discord/callback", authH.Callback)
	mux.HandleFunc("GET /auth/discord/exchange", authH.Exchange)

	// Users
	mux.HandleFunc("POST /api/users", users.Create)
	mux.HandleFunc("GET /api/users", users.List)
	mux.HandleFunc("GET /api/users/stats", users.Stats)
	mux.HandleFunc("GET /api/users/{id}", users.Get)
	mux.HandleFunc("PUT /api/users/{id}", users.Update)
	mux.HandleFunc("DELETE /api/users/{id}", users.Delete)
	mux.HandleFunc("GET /api/users/discord/{discord_id}", users.GetByDiscordID)
	mux.HandleFunc("GET /api/users/{id}/memberships", members.ListByUser)

	// Organizations
	mux.HandleFunc("POST /api/orgs", orgs.Create)
	mux.HandleFunc("GET /api/orgs", orgs.List)
	mux.HandleFunc("GET /api/orgs/{id}", orgs.Get)
	mux.HandleFunc("PUT /api/orgs/{id}", orgs.Update)
	mux.HandleFunc("DELETE /api/orgs/{id}", orgs.Delete)
	mux.HandleFunc("GET /api/orgs/owner/{owner_id}", orgs.ListByOwner)
	mux.HandleFunc("GET /api/orgs/{id}/members", members.ListByOrg)
	mux.HandleFunc("GET /api/orgs/{id}/members/counts", members.Counts)

	// Memberships
	mux.HandleFunc("POST /api/members", members.Create)
	mux.HandleFunc("GET /api/members/{id}", members.Get)
	mux.HandleFunc("PUT /api/members/{id}", members.Update)
	mux.HandleFunc("DELETE /api/members/{id}", members.Delete)

	// Discord tokens
	mux.HandleFunc("POST /api/discord-tokens", tokens.Store)
	mux.HandleFunc("POST /api/discord-tokens/cleanup", tokens.Cleanup)
	mux.HandleFunc("GET /api/discord-tokens/user/{user_id}", tokens.Get)
	mux.HandleFunc("PUT /api/discord-tokens/user/{user_id}", tokens.Update)
	mux.HandleFunc("DELETE /api/discord-tokens/user/{user_id}", tokens.Delete)
	mux.HandleFunc("GET /api/discord-tokens/verify/{user_id}", tokens.Verify)
}
