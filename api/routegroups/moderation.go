package routegroups

import (
	"github.com/go-chi/chi/v5"

	"clipper-mock/api/handlers"
)

func RegisterModeration(apiRouter chi.Router, g Guards, h *handlers.ModerationHandler) {
	apiRouter.Route("/moderation", func(r chi.Router) {
		r.MethodFunc("GET", "/moderators", g.SessionPerm("moderators.view", h.ListModerators))
		r.MethodFunc("POST", "/moderators", g.SessionPerm("moderators.manage", h.CreateModerator))
		r.MethodFunc("DELETE", "/moderators/{id}", g.SessionPerm("moderators.manage", h.DeleteModerator))
	})
}
