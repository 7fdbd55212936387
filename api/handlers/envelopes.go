package handlers

import (
	"time"

	"clipper-mock/core/store"
)

// Typed response envelopes, one per endpoint category. Handlers never
// return a payload that is sometimes wrapped and sometimes bare.

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthResponse answers login-style endpoints. RequiresMFA set means no
// session cookies were issued yet; the client must present MFAToken to
// the verify endpoint.
type AuthResponse struct {
	User        *store.User `json:"user,omitempty"`
	RequiresMFA bool        `json:"requiresMfa,omitempty"`
	MFAToken    string      `json:"mfaToken,omitempty"`
}

type MFAEnrollResponse struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioningUri"`
	QRCode          string   `json:"qrCode"`
	RecoveryCodes   []string `json:"recoveryCodes"`
}

type MFAVerifyResponse struct {
	Success          bool        `json:"success"`
	UsedRecoveryCode bool        `json:"usedRecoveryCode,omitempty"`
	RemainingCodes   int         `json:"remainingCodes"`
	User             *store.User `json:"user,omitempty"`
}

// MFAChallengeError reports a failed verification attempt with the
// remaining budget, or a lockout with its expiry.
type MFAChallengeError struct {
	Error             string     `json:"error"`
	RemainingAttempts *int       `json:"remainingAttempts,omitempty"`
	LockedUntil       *time.Time `json:"lockedUntil,omitempty"`
}

type MFAStatusResponse struct {
	Enabled           bool       `json:"enabled"`
	PendingEnrollment bool       `json:"pendingEnrollment"`
	RemainingAttempts int        `json:"remainingAttempts"`
	RemainingCodes    int        `json:"remainingCodes"`
	LockedUntil       *time.Time `json:"lockedUntil,omitempty"`
}

type RecoveryCodesResponse struct {
	Success       bool     `json:"success"`
	RecoveryCodes []string `json:"recoveryCodes"`
}

type ModeratorsResponse struct {
	Moderators []*store.Moderator `json:"moderators"`
	Total      int                `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

type ModeratorCreatedResponse struct {
	Success   bool             `json:"success"`
	Moderator *store.Moderator `json:"moderator"`
	Message   string           `json:"message"`
}

type BansResponse struct {
	Bans   []*store.Ban `json:"bans"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// SyncStartedResponse mirrors the platform's wire shape for a sync kick:
// the status reads "syncing" even though the mock import completes before
// the response is written.
type SyncStartedResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type SyncJobResponse struct {
	Job  *store.SyncJob `json:"job"`
	Bans []*store.Ban   `json:"bans"`
}

type ListMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type AuditLogsResponse struct {
	Success bool                `json:"success"`
	Data    []*store.AuditEntry `json:"data"`
	Meta    ListMeta            `json:"meta"`
}
