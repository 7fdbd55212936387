package routegroups

import (
	"github.com/go-chi/chi/v5"

	"clipper-mock/api/handlers"
)

func RegisterAdmin(apiRouter chi.Router, g Guards, h *handlers.AuditHandler) {
	apiRouter.Route("/admin", func(r chi.Router) {
		r.MethodFunc("GET", "/audit-logs", g.SessionPerm("audit.view", h.List))
		r.MethodFunc("GET", "/audit-logs/export", g.SessionPerm("audit.export", h.ExportCSV))
	})
}
