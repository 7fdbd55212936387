package bootstrap

import (
	"context"
	"time"

	"clipper-mock/config"
	"clipper-mock/core/auth"
	"clipper-mock/core/rbac"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

// Default fixture credentials. These are mock personas for tests and local
// runs, not real accounts.
const (
	AdminUsername     = "admin_ana"
	ModeratorUsername = "mod_max"
	UserUsername      = "user_uli"
	FixturePassword   = "Password123"
)

// EnsureDefaultFixtures seeds the personas every scenario builds on: an
// admin, a channel moderator, an ordinary user, and one historical
// (already revoked) ban with its audit trail. Seeding is idempotent; an
// existing persona is left untouched.
func EnsureDefaultFixtures(ctx context.Context, st *store.Store, cfg *config.AppConfig, logger *utils.Logger) error {
	if existing, err := st.Users.FindByUsername(ctx, AdminUsername); err == nil && existing != nil {
		return nil
	}

	ph := auth.MustHashPassword(FixturePassword)

	adminID, err := st.Users.Seed(ctx, &store.User{
		TwitchID:     "tw-admin-1",
		Username:     AdminUsername,
		DisplayName:  "Ana the Admin",
		Email:        "ana@clipper.test",
		Role:         rbac.RoleAdmin,
		KarmaPoints:  500,
		PasswordHash: ph.Hash,
		PasswordSalt: ph.Salt,
	})
	if err != nil {
		return err
	}
	modUserID, err := st.Users.Seed(ctx, &store.User{
		TwitchID:     "tw-mod-1",
		Username:     ModeratorUsername,
		DisplayName:  "Max the Mod",
		Email:        "max@clipper.test",
		Role:         rbac.RoleModerator,
		KarmaPoints:  120,
		PasswordHash: ph.Hash,
		PasswordSalt: ph.Salt,
	})
	if err != nil {
		return err
	}
	ordinaryID, err := st.Users.Seed(ctx, &store.User{
		TwitchID:     "tw-user-1",
		Username:     UserUsername,
		DisplayName:  "Uli",
		Email:        "uli@clipper.test",
		Role:         rbac.RoleUser,
		KarmaPoints:  12,
		PasswordHash: ph.Hash,
		PasswordSalt: ph.Salt,
	})
	if err != nil {
		return err
	}

	if _, err := st.Moderators.Seed(ctx, &store.Moderator{
		UserID:      modUserID,
		Username:    ModeratorUsername,
		DisplayName: "Max the Mod",
		ChannelID:   "main",
		Role:        rbac.RoleModerator,
		Permissions: rbac.DefaultPermissionNames(rbac.RoleModerator),
		AddedBy:     adminID,
	}); err != nil {
		return err
	}

	// One revoked ban so audit-log and history views have data on day one.
	created := time.Now().UTC().Add(-48 * time.Hour)
	banID, err := st.Bans.Seed(ctx, &store.Ban{
		UserID:    ordinaryID,
		Username:  UserUsername,
		ChannelID: "main",
		Reason:    "Spamming clip links",
		CreatedBy: modUserID,
		CreatedAt: created,
		IsActive:  false,
	})
	if err != nil {
		return err
	}
	if _, err := st.Audit.Append(ctx, &store.AuditEntry{
		ActorID:       modUserID,
		ActorUsername: ModeratorUsername,
		Action:        "ban_user",
		ResourceType:  "ban",
		ResourceID:    banID,
		Reason:        "Spamming clip links",
		Details:       map[string]string{"user_id": ordinaryID, "username": UserUsername},
	}); err != nil {
		return err
	}
	if _, err := st.Audit.Append(ctx, &store.AuditEntry{
		ActorID:       adminID,
		ActorUsername: AdminUsername,
		Action:        "unban_user",
		ResourceType:  "ban",
		ResourceID:    banID,
		Reason:        "Appeal accepted",
		Details:       map[string]string{"user_id": ordinaryID, "username": UserUsername},
	}); err != nil {
		return err
	}

	logger.Printf("default fixtures seeded admin=%s moderator=%s user=%s", AdminUsername, ModeratorUsername, UserUsername)
	return nil
}
