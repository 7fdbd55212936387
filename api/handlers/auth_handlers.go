package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipper-mock/config"
	"clipper-mock/core/auth"
	"clipper-mock/core/flow"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

const mfaTokenTTL = 5 * time.Minute

type AuthHandler struct {
	cfg    *config.AppConfig
	users  store.UserStore
	flows  *flow.Registry
	tokens *auth.TokenIssuer
	logger *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, users store.UserStore, flows *flow.Registry, tokens *auth.TokenIssuer, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users, flows: flows, tokens: tokens, logger: logger}
}

// TwitchLogin is the app-side entry point: it builds the provider
// authorize URL and redirects. State and PKCE parameters supplied by the
// client ride along; a missing state is generated here so the round trip
// can always be checked.
func (h *AuthHandler) TwitchLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := strings.TrimSpace(q.Get("state"))
	if state == "" {
		state, _ = utils.RandString(24)
	}
	authz := url.Values{}
	authz.Set("client_id", h.cfg.Auth.OAuthClientID)
	authz.Set("redirect_uri", h.cfg.Auth.RedirectURI)
	authz.Set("response_type", "code")
	authz.Set("state", state)
	if v := strings.TrimSpace(q.Get("code_challenge")); v != "" {
		authz.Set("code_challenge", v)
		authz.Set("code_challenge_method", q.Get("code_challenge_method"))
	}
	if v := strings.TrimSpace(q.Get("login")); v != "" {
		authz.Set("login", v)
	}
	http.Redirect(w, r, "/api/v1/auth/twitch/authorize?"+authz.Encode(), http.StatusFound)
}

// Authorize plays the provider. It captures the CSRF state and PKCE
// parameters into a new flow, binds the flow to the requested persona,
// and redirects back to the callback with a fresh authorization code,
// or with an error when the request asks for a simulated denial.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := strings.TrimSpace(q.Get("state"))
	redirectTo := strings.TrimSpace(q.Get("redirect_uri"))
	if redirectTo == "" {
		redirectTo = h.cfg.Auth.RedirectURI
	}

	f, err := h.flows.Begin(state, q.Get("code_challenge"), q.Get("code_challenge_method"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to start authorization")
		return
	}

	if simulated := strings.TrimSpace(q.Get("error")); simulated != "" {
		desc := strings.TrimSpace(q.Get("error_description"))
		if desc == "" {
			desc = "The user denied the request"
		}
		_, _ = h.flows.Fail(f.ID, simulated, desc)
		h.redirectError(w, r, redirectTo, state, simulated, desc)
		return
	}

	u, err := h.resolvePersona(r, strings.TrimSpace(q.Get("login")))
	if err != nil {
		_, _ = h.flows.Fail(f.ID, flow.ErrorCodeAccessDenied, "unknown user")
		h.redirectError(w, r, redirectTo, state, flow.ErrorCodeAccessDenied, "unknown user")
		return
	}
	issued, err := h.flows.IssueCode(f.ID, u.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to issue authorization code")
		return
	}

	cb := url.Values{}
	cb.Set("code", issued.AuthCode)
	cb.Set("state", state)
	http.Redirect(w, r, redirectTo+"?"+cb.Encode(), http.StatusFound)
}

// resolvePersona picks which seeded user the provider authenticates: the
// login query parameter when given, otherwise the earliest-seeded user.
func (h *AuthHandler) resolvePersona(r *http.Request, login string) (*store.User, error) {
	if login != "" {
		return h.users.FindByUsername(r.Context(), login)
	}
	all, err := h.users.List(r.Context(), store.UserFilter{})
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, store.ErrNotFound
	}
	return all[0], nil
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, redirectTo, state, code, desc string) {
	v := url.Values{}
	v.Set("error", code)
	v.Set("error_description", desc)
	if state != "" {
		v.Set("state", state)
	}
	http.Redirect(w, r, redirectTo+"?"+v.Encode(), http.StatusFound)
}

// Callback exchanges the authorization code. Validation order follows the
// flow machine: code lookup, CSRF state, PKCE verifier presence. A login
// gated by MFA returns a short-lived mfa token instead of cookies.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code         string `json:"code"`
		State        string `json:"state"`
		CodeVerifier string `json:"code_verifier"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	f, err := h.flows.Complete(payload.Code, payload.State, payload.CodeVerifier)
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrInvalidState):
			WriteError(w, http.StatusBadRequest, "Invalid state parameter")
		case f != nil && f.ErrorCode == flow.ErrorCodeInvalidRequest:
			WriteError(w, http.StatusBadRequest, "Invalid code verifier")
		default:
			// Unknown or reused code.
			WriteError(w, http.StatusBadRequest, "Invalid state parameter")
		}
		return
	}

	u, err := h.users.Get(r.Context(), f.UserID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}
	if u.IsBanned {
		WriteError(w, http.StatusForbidden, "Your account has been banned")
		return
	}
	if u.MFAEnabled {
		mfaToken, err := h.tokens.Mint(u.ID, auth.ScopeMFAPending, mfaTokenTTL)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to issue MFA token")
			return
		}
		writeJSON(w, http.StatusOK, AuthResponse{RequiresMFA: true, MFAToken: mfaToken})
		return
	}
	if err := h.setAuthCookies(w, u.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: u})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	u, err := h.users.Get(r.Context(), p.UserID)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: u})
}

// Refresh rotates the access token from the refresh cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ck, err := r.Cookie(RefreshTokenCookie)
	if err != nil || strings.TrimSpace(ck.Value) == "" {
		WriteError(w, http.StatusUnauthorized, "Missing refresh token")
		return
	}
	claims, err := h.tokens.Parse(ck.Value, auth.ScopeRefresh)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if _, err := h.users.Get(r.Context(), claims.Subject); err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	access, err := h.tokens.Mint(claims.Subject, auth.ScopeAccess, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	h.setCookie(w, AccessTokenCookie, access, h.cfg.Auth.AccessTokenTTL)
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, AccessTokenCookie, "", -time.Second)
	h.setCookie(w, RefreshTokenCookie, "", -time.Second)
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// FinishLogin mints both session cookies for a user, shared with the MFA
// verify path.
func (h *AuthHandler) FinishLogin(w http.ResponseWriter, userID string) error {
	return h.setAuthCookies(w, userID)
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, userID string) error {
	access, err := h.tokens.Mint(userID, auth.ScopeAccess, h.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return err
	}
	refresh, err := h.tokens.Mint(userID, auth.ScopeRefresh, h.cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return err
	}
	h.setCookie(w, AccessTokenCookie, access, h.cfg.Auth.AccessTokenTTL)
	h.setCookie(w, RefreshTokenCookie, refresh, h.cfg.Auth.RefreshTokenTTL)
	return nil
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
