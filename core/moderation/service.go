package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"clipper-mock/core/rbac"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

// Audit actions recorded by this service. Consumers filter the audit log
// by these exact strings.
const (
	ActionCreateModerator = "create_moderator"
	ActionRemoveModerator = "remove_moderator"
	ActionBanUser         = "ban_user"
	ActionUnbanUser       = "unban_user"
	ActionSyncBans        = "sync_bans"
)

const (
	ResourceModerator = "moderator"
	ResourceBan       = "ban"
	ResourceChannel   = "channel"
)

// SystemActorID attributes maintenance work that no user initiated.
const SystemActorID = "system"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyModerator  = errors.New("user is already a moderator")
	ErrModeratorNotFound = errors.New("moderator not found")
	ErrBanNotFound       = errors.New("ban not found")
	ErrBanInactive       = errors.New("ban is not active")
	ErrAlreadyBanned     = errors.New("user is already banned")
	ErrInvalidChannel    = errors.New("invalid channel name")
	ErrJobNotFound       = errors.New("sync job not found")
)

// Actor identifies who performed an action, for audit attribution only.
// Authorization is decided before the service is called.
type Actor struct {
	ID       string
	Username string
	Role     string
}

func SystemActor() Actor {
	return Actor{ID: SystemActorID, Username: "system", Role: rbac.RoleAdmin}
}

type Config struct {
	// SyncBanCount is how many synthetic bans a sync import produces.
	SyncBanCount int
}

func (c Config) withDefaults() Config {
	if c.SyncBanCount <= 0 {
		c.SyncBanCount = 3
	}
	return c
}

type Service struct {
	store  *store.Store
	cfg    Config
	logger *utils.Logger
	now    func() time.Time
}

func NewService(st *store.Store, cfg Config, logger *utils.Logger) *Service {
	return &Service{
		store:  st,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) ListModerators(ctx context.Context, f store.ModeratorFilter) ([]*store.Moderator, int, error) {
	return s.store.Moderators.List(ctx, f)
}

// AddModerator promotes an existing user and records the appointment.
func (s *Service) AddModerator(ctx context.Context, actor Actor, userID, channelID string) (*store.Moderator, error) {
	u, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if existing, err := s.store.Moderators.FindByUser(ctx, userID, channelID); err == nil && existing != nil {
		return nil, ErrAlreadyModerator
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	mod := &store.Moderator{
		UserID:      userID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		ChannelID:   channelID,
		Role:        rbac.RoleModerator,
		Permissions: rbac.DefaultPermissionNames(rbac.RoleModerator),
		AddedBy:     actor.ID,
	}
	if _, err := s.store.Moderators.Seed(ctx, mod); err != nil {
		return nil, err
	}
	// Admins keep their role; regular users are promoted.
	if u.Role == rbac.RoleUser {
		if err := s.store.Users.SetRole(ctx, userID, rbac.RoleModerator); err != nil {
			return nil, err
		}
	}
	if err := s.appendAudit(ctx, actor, ActionCreateModerator, ResourceModerator, mod.ID, "", map[string]string{
		"user_id":  userID,
		"username": u.Username,
	}); err != nil {
		return nil, err
	}
	s.logger.Printf("moderator added user=%s by=%s", u.Username, actor.ID)
	return mod, nil
}

// RemoveModerator deletes the appointment and demotes the user when no
// other appointments remain.
func (s *Service) RemoveModerator(ctx context.Context, actor Actor, moderatorID string) error {
	mod, err := s.store.Moderators.Delete(ctx, moderatorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrModeratorNotFound
		}
		return err
	}
	remaining, _, err := s.store.Moderators.List(ctx, store.ModeratorFilter{})
	if err != nil {
		return err
	}
	holdsOther := false
	for _, m := range remaining {
		if m.UserID == mod.UserID {
			holdsOther = true
			break
		}
	}
	if !holdsOther {
		if u, err := s.store.Users.Get(ctx, mod.UserID); err == nil && u.Role == rbac.RoleModerator {
			if err := s.store.Users.SetRole(ctx, mod.UserID, rbac.RoleUser); err != nil {
				return err
			}
		}
	}
	if err := s.appendAudit(ctx, actor, ActionRemoveModerator, ResourceModerator, mod.ID, "", map[string]string{
		"user_id":  mod.UserID,
		"username": mod.Username,
	}); err != nil {
		return err
	}
	s.logger.Printf("moderator removed user=%s by=%s", mod.Username, actor.ID)
	return nil
}

func (s *Service) ListBans(ctx context.Context, f store.BanFilter) ([]*store.Ban, int, error) {
	return s.store.Bans.List(ctx, f)
}

func (s *Service) GetBan(ctx context.Context, id string) (*store.Ban, error) {
	b, err := s.store.Bans.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBanNotFound
		}
		return nil, err
	}
	return b, nil
}

type CreateBanInput struct {
	UserID    string
	ChannelID string
	Reason    string
	ExpiresAt *time.Time
}

// CreateBan records a ban, flags the user, and audits the action.
func (s *Service) CreateBan(ctx context.Context, actor Actor, in CreateBanInput) (*store.Ban, error) {
	u, err := s.store.Users.Get(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	active, _, err := s.store.Bans.List(ctx, store.BanFilter{UserID: in.UserID, ChannelID: in.ChannelID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, ErrAlreadyBanned
	}

	ban := &store.Ban{
		UserID:    in.UserID,
		Username:  u.Username,
		ChannelID: in.ChannelID,
		Reason:    in.Reason,
		CreatedBy: actor.ID,
		ExpiresAt: in.ExpiresAt,
		IsActive:  true,
	}
	if _, err := s.store.Bans.Seed(ctx, ban); err != nil {
		return nil, err
	}
	if err := s.store.Users.SetBanned(ctx, in.UserID, true, in.Reason, in.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.appendAudit(ctx, actor, ActionBanUser, ResourceBan, ban.ID, in.Reason, map[string]string{
		"user_id":  in.UserID,
		"username": u.Username,
	}); err != nil {
		return nil, err
	}
	s.logger.Printf("user banned user=%s by=%s", u.Username, actor.ID)
	return ban, nil
}

// RevokeBan deactivates the ban, clears the user flag when no other
// active ban covers them, and appends exactly one unban entry.
func (s *Service) RevokeBan(ctx context.Context, actor Actor, banID, reason string) (*store.Ban, error) {
	ban, err := s.store.Bans.Get(ctx, banID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBanNotFound
		}
		return nil, err
	}
	if !ban.IsActive {
		return nil, ErrBanInactive
	}
	updated, err := s.store.Bans.Deactivate(ctx, banID)
	if err != nil {
		return nil, err
	}
	if err := s.clearUserBanFlag(ctx, ban.UserID); err != nil {
		return nil, err
	}
	if err := s.appendAudit(ctx, actor, ActionUnbanUser, ResourceBan, banID, reason, map[string]string{
		"user_id":  ban.UserID,
		"username": ban.Username,
	}); err != nil {
		return nil, err
	}
	s.logger.Printf("ban revoked user=%s by=%s", ban.Username, actor.ID)
	return updated, nil
}

// SyncBans imports a synthetic ban list for a channel. The import runs to
// completion before returning; the job record starts in the syncing state
// so callers can observe the lifecycle.
func (s *Service) SyncBans(ctx context.Context, actor Actor, channel string) (*store.SyncJob, error) {
	if err := utils.ValidateChannelName(channel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChannel, err)
	}
	now := s.now().UTC()
	job := &store.SyncJob{
		ID:          uuid.New().String(),
		ChannelName: channel,
		Status:      store.JobStatusSyncing,
		RequestedBy: actor.ID,
		CreatedAt:   now,
	}
	if err := s.store.SyncJobs.Put(ctx, job); err != nil {
		return nil, err
	}

	banIDs := make([]string, 0, s.cfg.SyncBanCount)
	for i := 1; i <= s.cfg.SyncBanCount; i++ {
		ban := &store.Ban{
			UserID:    fmt.Sprintf("twitch-%s-%d", job.ID[:8], i),
			Username:  fmt.Sprintf("synced_user_%d", i),
			ChannelID: channel,
			Reason:    "Imported from Twitch ban list",
			CreatedBy: actor.ID,
			IsActive:  true,
		}
		id, err := s.store.Bans.Seed(ctx, ban)
		if err != nil {
			job.Status = store.JobStatusFailed
			if perr := s.store.SyncJobs.Put(ctx, job); perr != nil {
				s.logger.Printf("sync job %s failed and could not be recorded: %v", job.ID, perr)
			}
			return nil, err
		}
		banIDs = append(banIDs, id)
	}

	done := s.now().UTC()
	job.Status = store.JobStatusCompleted
	job.BanIDs = banIDs
	job.CompletedAt = &done
	if err := s.store.SyncJobs.Put(ctx, job); err != nil {
		return nil, err
	}
	if err := s.appendAudit(ctx, actor, ActionSyncBans, ResourceChannel, channel, "", map[string]string{
		"job_id":    job.ID,
		"ban_count": strconv.Itoa(len(banIDs)),
	}); err != nil {
		return nil, err
	}
	s.logger.Printf("ban sync completed channel=%s job=%s bans=%d", channel, job.ID, len(banIDs))
	return job, nil
}

func (s *Service) GetSyncJob(ctx context.Context, id string) (*store.SyncJob, error) {
	j, err := s.store.SyncJobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return j, nil
}

// SweepExpiredBans lifts lapsed temporary bans and audits each one as a
// system unban.
func (s *Service) SweepExpiredBans(ctx context.Context) (int, error) {
	active, _, err := s.store.Bans.List(ctx, store.BanFilter{ActiveOnly: true})
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	actor := SystemActor()
	lifted := 0
	for _, ban := range active {
		if !ban.Expired(now) {
			continue
		}
		if _, err := s.store.Bans.Deactivate(ctx, ban.ID); err != nil {
			return lifted, err
		}
		if err := s.clearUserBanFlag(ctx, ban.UserID); err != nil {
			return lifted, err
		}
		if err := s.appendAudit(ctx, actor, ActionUnbanUser, ResourceBan, ban.ID, "Ban expired", map[string]string{
			"user_id":  ban.UserID,
			"username": ban.Username,
		}); err != nil {
			return lifted, err
		}
		lifted++
	}
	if lifted > 0 {
		s.logger.Printf("expired bans lifted count=%d", lifted)
	}
	return lifted, nil
}

// clearUserBanFlag resets the user record once no active ban remains.
// Synthetic sync users have no record; that is not an error.
func (s *Service) clearUserBanFlag(ctx context.Context, userID string) error {
	remaining, _, err := s.store.Bans.List(ctx, store.BanFilter{UserID: userID, ActiveOnly: true})
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}
	if err := s.store.Users.SetBanned(ctx, userID, false, "", nil); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) appendAudit(ctx context.Context, actor Actor, action, resourceType, resourceID, reason string, details map[string]string) error {
	_, err := s.store.Audit.Append(ctx, &store.AuditEntry{
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		Reason:        reason,
		Details:       details,
	})
	return err
}
