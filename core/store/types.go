package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID           string     `json:"id"`
	TwitchID     string     `json:"twitch_id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	KarmaPoints  int        `json:"karma_points"`
	IsBanned     bool       `json:"is_banned"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BanExpiresAt *time.Time `json:"ban_expires_at,omitempty"`
	MFAEnabled   bool       `json:"mfa_enabled"`
	PasswordHash string     `json:"-"`
	PasswordSalt string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

type UserFilter struct {
	Role   string
	Banned *bool
}

type Ban struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	ChannelID string     `json:"channel_id"`
	Reason    string     `json:"reason"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Expired reports whether a temporary ban has lapsed.
func (b *Ban) Expired(now time.Time) bool {
	return b != nil && b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

type BanFilter struct {
	ChannelID  string
	UserID     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Moderator struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	ChannelID   string    `json:"channel_id"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	AddedBy     string    `json:"added_by"`
	AddedAt     time.Time `json:"added_at"`
}

type ModeratorFilter struct {
	ChannelID string
	Limit     int
	Offset    int
}

type AuditEntry struct {
	ID            string            `json:"id"`
	ActorID       string            `json:"actor_id"`
	ActorUsername string            `json:"actor_username"`
	Action        string            `json:"action"`
	ResourceType  string            `json:"resource_type"`
	ResourceID    string            `json:"resource_id"`
	Reason        string            `json:"reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

type AuditFilter struct {
	Action       string
	ResourceType string
	ResourceID   string
	ActorID      string
	Limit        int
	Offset       int
}

type MFAState struct {
	UserID                 string     `json:"user_id"`
	Secret                 string     `json:"-"`
	PendingSecret          string     `json:"-"`
	ExpectedCode           string     `json:"-"`
	RecoveryCodes          []string   `json:"-"`
	RemainingRecoveryCodes int        `json:"remaining_recovery_codes"`
	RemainingAttempts      int        `json:"remaining_attempts"`
	MaxAttempts            int        `json:"max_attempts"`
	LockedUntil            *time.Time `json:"locked_until,omitempty"`
	Enabled                bool       `json:"enabled"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Locked reports whether failed attempts have locked the account.
func (m *MFAState) Locked(now time.Time) bool {
	return m != nil && m.LockedUntil != nil && m.LockedUntil.After(now)
}

const (
	JobStatusSyncing   = "syncing"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type SyncJob struct {
	ID          string     `json:"id"`
	ChannelName string     `json:"channel_name"`
	Status      string     `json:"status"`
	RequestedBy string     `json:"requested_by"`
	BanIDs      []string   `json:"ban_ids,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
