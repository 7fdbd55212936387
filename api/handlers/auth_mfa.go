package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"clipper-mock/core/auth"
	"clipper-mock/core/mfa"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

type MFAHandler struct {
	svc    *mfa.Service
	users  store.UserStore
	tokens *auth.TokenIssuer
	auth   *AuthHandler
	logger *utils.Logger
}

func NewMFAHandler(svc *mfa.Service, users store.UserStore, tokens *auth.TokenIssuer, authHandler *AuthHandler, logger *utils.Logger) *MFAHandler {
	return &MFAHandler{svc: svc, users: users, tokens: tokens, auth: authHandler, logger: logger}
}

// Enroll starts MFA enrollment for the session user: fresh secret,
// provisioning URI, QR code, recovery codes.
func (h *MFAHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	enr, err := h.svc.Enroll(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, mfa.ErrAlreadyEnabled) {
			WriteError(w, http.StatusConflict, "MFA is already enabled for this account")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to start MFA enrollment")
		return
	}
	png, err := qrcode.Encode(enr.ProvisioningURI, qrcode.Medium, 256)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to render provisioning QR")
		return
	}
	writeJSON(w, http.StatusOK, MFAEnrollResponse{
		Secret:          enr.Secret,
		ProvisioningURI: enr.ProvisioningURI,
		QRCode:          "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		RecoveryCodes:   enr.RecoveryCodes,
	})
}

// VerifyEnrollment confirms the pending secret and switches MFA on.
func (h *MFAHandler) VerifyEnrollment(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.VerifyEnrollment(r.Context(), p.UserID, payload.Code); err != nil {
		switch {
		case errors.Is(err, mfa.ErrNoPending):
			WriteError(w, http.StatusBadRequest, "No pending MFA verification")
		case errors.Is(err, mfa.ErrInvalidCode):
			WriteError(w, http.StatusBadRequest, "Invalid MFA code")
		default:
			WriteError(w, http.StatusInternalServerError, "Failed to verify MFA enrollment")
		}
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// Verify checks a challenge code. During a login gated by MFA the caller
// presents the mfa-pending bearer token and a success mints the session
// cookies; with an established session it acts as a re-verification.
func (h *MFAHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, pending, ok := h.challengeSubject(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.svc.Verify(r.Context(), userID, payload.Code)
	if err != nil {
		h.writeChallengeError(w, res, err)
		return
	}
	resp := MFAVerifyResponse{
		Success:          true,
		UsedRecoveryCode: res.UsedRecoveryCode,
		RemainingCodes:   res.RemainingRecoveryCodes,
	}
	if pending {
		u, err := h.users.Get(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to complete login")
			return
		}
		if err := h.auth.FinishLogin(w, userID); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}
		resp.User = u
	}
	writeJSON(w, http.StatusOK, resp)
}

// Recovery redeems a recovery code, reporting how many remain.
func (h *MFAHandler) Recovery(w http.ResponseWriter, r *http.Request) {
	userID, pending, ok := h.challengeSubject(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.svc.UseRecoveryCode(r.Context(), userID, payload.Code)
	if err != nil {
		if errors.Is(err, mfa.ErrInvalidCode) {
			WriteError(w, http.StatusBadRequest, "Invalid recovery code")
			return
		}
		h.writeChallengeError(w, res, err)
		return
	}
	resp := MFAVerifyResponse{
		Success:          true,
		UsedRecoveryCode: true,
		RemainingCodes:   res.RemainingRecoveryCodes,
	}
	if pending {
		u, err := h.users.Get(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to complete login")
			return
		}
		if err := h.auth.FinishLogin(w, userID); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to issue tokens")
			return
		}
		resp.User = u
	}
	writeJSON(w, http.StatusOK, resp)
}

// RegenerateRecoveryCodes replaces the set after re-verifying a code.
func (h *MFAHandler) RegenerateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	codes, err := h.svc.RegenerateRecoveryCodes(r.Context(), p.UserID, payload.Code)
	if err != nil {
		if errors.Is(err, mfa.ErrInvalidCode) {
			WriteError(w, http.StatusBadRequest, "Invalid MFA code")
			return
		}
		if errors.Is(err, mfa.ErrNotEnrolled) {
			WriteError(w, http.StatusBadRequest, "MFA is not enabled")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to regenerate backup codes")
		return
	}
	writeJSON(w, http.StatusOK, RecoveryCodesResponse{Success: true, RecoveryCodes: codes})
}

// Disable requires both the account password and a current code; the
// response names whichever field is missing.
func (h *MFAHandler) Disable(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var payload struct {
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	err := h.svc.Disable(r.Context(), p.UserID, payload.Password, payload.Code)
	if err != nil {
		var fe *mfa.FieldError
		switch {
		case errors.As(err, &fe):
			writeFieldError(w, http.StatusBadRequest, fe.Msg, fe.Field)
		case errors.Is(err, mfa.ErrInvalidPassword):
			WriteError(w, http.StatusBadRequest, "Invalid password")
		case errors.Is(err, mfa.ErrInvalidCode):
			WriteError(w, http.StatusBadRequest, "Invalid MFA code")
		case errors.Is(err, mfa.ErrNotEnrolled):
			WriteError(w, http.StatusBadRequest, "MFA is not enabled")
		default:
			WriteError(w, http.StatusInternalServerError, "Failed to disable MFA")
		}
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *MFAHandler) Status(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	st, err := h.svc.Status(r.Context(), p.UserID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to get MFA status")
		return
	}
	writeJSON(w, http.StatusOK, MFAStatusResponse{
		Enabled:           st.Enabled,
		PendingEnrollment: st.PendingEnrollment,
		RemainingAttempts: st.RemainingAttempts,
		RemainingCodes:    st.RemainingRecoveryCodes,
		LockedUntil:       st.LockedUntil,
	})
}

// challengeSubject resolves who is answering the challenge. The route is
// sessionless because a login gated by MFA has no session yet, so the
// subject comes from an mfa-pending bearer token, an established session
// principal, or the access cookie directly for re-verification calls.
func (h *MFAHandler) challengeSubject(r *http.Request) (userID string, pending bool, ok bool) {
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		return p.UserID, false, true
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(raw, "Bearer ") {
		token := strings.TrimPrefix(raw, "Bearer ")
		if claims, err := h.tokens.Parse(token, auth.ScopeMFAPending); err == nil {
			return claims.Subject, true, true
		}
		if claims, err := h.tokens.Parse(token, auth.ScopeAccess); err == nil {
			return claims.Subject, false, true
		}
		return "", false, false
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		if claims, err := h.tokens.Parse(c.Value, auth.ScopeAccess); err == nil {
			return claims.Subject, false, true
		}
	}
	return "", false, false
}

func (h *MFAHandler) writeChallengeError(w http.ResponseWriter, res *mfa.VerifyResult, err error) {
	switch {
	case errors.Is(err, mfa.ErrLockedOut):
		out := MFAChallengeError{Error: "Too many failed attempts. Account temporarily locked."}
		if res != nil {
			out.LockedUntil = res.LockedUntil
		}
		writeJSON(w, http.StatusTooManyRequests, out)
	case errors.Is(err, mfa.ErrInvalidCode):
		out := MFAChallengeError{Error: "Invalid MFA code"}
		if res != nil {
			remaining := res.RemainingAttempts
			out.RemainingAttempts = &remaining
		}
		writeJSON(w, http.StatusBadRequest, out)
	case errors.Is(err, mfa.ErrNotEnrolled):
		WriteError(w, http.StatusBadRequest, "MFA is not enabled")
	default:
		WriteError(w, http.StatusInternalServerError, "Failed to verify MFA code")
	}
}
