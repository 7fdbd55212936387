package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"clipper-mock/config"
	"clipper-mock/core/auth"
	"clipper-mock/core/flow"
	"clipper-mock/core/maintenance"
	"clipper-mock/core/mfa"
	"clipper-mock/core/moderation"
	"clipper-mock/core/rbac"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

type Server struct {
	cfg    *config.AppConfig
	router chi.Router
	logger *utils.Logger

	store   *store.Store
	policy  *rbac.Policy
	flows   *flow.Registry
	tokens  *auth.TokenIssuer
	mfaSvc  *mfa.Service
	modSvc  *moderation.Service
	sweeper *maintenance.Sweeper

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

func NewServer(cfg *config.AppConfig, st *store.Store, logger *utils.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger,
		store:  st,
		policy: rbac.NewPolicy(rbac.DefaultRoles()),
		flows:  flow.NewRegistry(),
		tokens: auth.NewTokenIssuer(cfg.Auth.JWTSecret),
	}
	s.mfaSvc = mfa.NewService(st.Users, st.MFA, mfa.Config{
		ExpectedCode:      cfg.MFA.ExpectedCode,
		MaxAttempts:       cfg.MFA.MaxAttempts,
		LockoutDuration:   cfg.MFA.LockoutDuration,
		RecoveryCodeCount: cfg.MFA.RecoveryCodeCount,
		Issuer:            cfg.MFA.Issuer,
	}, logger)
	s.modSvc = moderation.NewService(st, moderation.Config{SyncBanCount: cfg.Sync.BanCount}, logger)
	s.sweeper = maintenance.NewSweeper(maintenance.Config{
		Schedule: cfg.Maintenance.Schedule,
		FlowTTL:  cfg.Maintenance.FlowTTL,
	}, s.modSvc, s.mfaSvc, s.flows, logger)
	s.registerRoutes()
	return s
}

// Handler exposes the routing tree for in-process tests via httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store exposes the entity store so tests can seed and assert directly.
func (s *Server) Store() *store.Store {
	return s.store
}

// Flows exposes the flow registry for assertions on authorization state.
func (s *Server) Flows() *flow.Registry {
	return s.flows
}

func (s *Server) Config() *config.AppConfig {
	return s.cfg
}

// BackgroundWorkers returns the workers the background controller should
// drive alongside the HTTP listener.
func (s *Server) BackgroundWorkers() []BackgroundWorker {
	var out []BackgroundWorker
	if s.cfg.Maintenance.Enabled && s.sweeper != nil {
		out = append(out, s.sweeper)
	}
	return out
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.listener = ln
	s.mu.Unlock()
	s.logger.Printf("listening on %s", ln.Addr())
	err = srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Addr reports the bound listen address, useful with ":0" configs.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.cfg.ListenAddr
	}
	return s.listener.Addr().String()
}
