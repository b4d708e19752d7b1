package handler

import (
	"log"
	"net/http"

	"orghub/internal/auth"
	"orghub/internal/config"
)

// AuthHandler handles the Discord OAuth2 callback endpoints.
type AuthHandler struct {
	flow *auth.Service
	cfg  *config.Config
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(flow *auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{flow: flow, cfg: cfg}
}

// Callback handles GET /auth/discord/callback
//
// The browser is always redirected back to the frontend, never shown an
// error page. Failure reasons are coarse codes; Discord's raw error text
// stays in the server log.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		log.Printf("discord oauth error on callback: %s", providerErr)
		h.redirectError(w, r, auth.ReasonOAuthFailed)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectError(w, r, auth.ReasonMissingCode)
		return
	}

	result, err := h.flow.HandleCallback(r.Context(), code)
	if err != nil {
		log.Printf("discord callback flow failed: %v", err)
		h.redirectError(w, r, auth.ReasonOf(err))
		return
	}

	http.Redirect(w, r, h.cfg.OAuthSuccessRedirect(result.UserID.String()), http.StatusFound)
}

// Exchange handles GET /auth/discord/exchange
//
// JSON variant of the callback for SPA flows that hold the code themselves.
func (h *AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, string(auth.ReasonMissingCode))
		return
	}

	result, err := h.flow.HandleCallback(r.Context(), code)
	if err != nil {
		log.Printf("discord exchange flow failed: %v", err)
		writeError(w, http.StatusBadGateway, string(auth.ReasonOf(err)))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{
		"user_id": result.UserID.String(),
	})
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, reason auth.Reason) {
	http.Redirect(w, r, h.cfg.OAuthErrorRedirect(string(reason)), http.StatusFound)
}
