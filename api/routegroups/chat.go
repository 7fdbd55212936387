package routegroups

import (
	"github.com/go-chi/chi/v5"

	"clipper-mock/api/handlers"
	"clipper-mock/core/rbac"
)

func RegisterChat(apiRouter chi.Router, g Guards, h *handlers.ChatHandler) {
	apiRouter.Route("/chat", func(r chi.Router) {
		r.MethodFunc("GET", "/bans", g.SessionPerm("bans.view", h.ListBans))
		r.MethodFunc("POST", "/bans", g.SessionPerm("bans.manage", h.CreateBan))
		r.MethodFunc("GET", "/bans/{id}", g.SessionPerm("bans.view", h.GetBan))
		r.MethodFunc("DELETE", "/bans/{id}", g.SessionPerm("bans.manage", h.DeleteBan))
		r.MethodFunc("GET", "/channels/{channel}/bans", g.SessionPerm("bans.view", h.ChannelBans))
		r.MethodFunc("POST", "/channels/{channel}/sync-bans", g.SessionPerm("bans.sync", h.SyncBans))
		// Sync job records interest both ban managers and auditors.
		r.MethodFunc("GET", "/sync-jobs/{id}", g.SessionAnyPerm([]rbac.Permission{"bans.view", "audit.view"}, h.GetSyncJob))
	})
}
