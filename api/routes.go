package api

import (
	"github.com/go-chi/chi/v5"

	"clipper-mock/api/handlers"
	"clipper-mock/api/routegroups"
)

func (s *Server) registerRoutes() {
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.securityHeadersMiddleware)

	s.registerObservabilityRoutes()

	g := routegroups.Guards{
		WithSession:          s.withSession,
		RequirePermission:    s.requirePermission,
		RequireAnyPermission: s.requireAnyPermission,
	}

	authHandler := handlers.NewAuthHandler(s.cfg, s.store.Users, s.flows, s.tokens, s.logger)
	mfaHandler := handlers.NewMFAHandler(s.mfaSvc, s.store.Users, s.tokens, authHandler, s.logger)
	modHandler := handlers.NewModerationHandler(s.modSvc, s.logger)
	chatHandler := handlers.NewChatHandler(s.modSvc, s.logger)
	auditHandler := handlers.NewAuditHandler(s.store.Audit, s.logger)

	apiRouter := chi.NewRouter()
	apiRouter.Use(s.jsonMiddleware)

	routegroups.RegisterAuth(apiRouter, g, authHandler, mfaHandler)
	routegroups.RegisterModeration(apiRouter, g, modHandler)
	routegroups.RegisterChat(apiRouter, g, chatHandler)
	routegroups.RegisterAdmin(apiRouter, g, auditHandler)

	s.router.Mount("/api/v1", apiRouter)
}
