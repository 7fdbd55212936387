package api

import (
	"errors"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"clipper-mock/core/auth"
	"clipper-mock/core/rbac"
	"clipper-mock/core/store"

	"clipper-mock/api/handlers"
)

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.logger != nil {
			s.logger.Printf("REQ %s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if s.logger != nil {
			user := "-"
			if p := auth.PrincipalFromContext(r.Context()); p != nil {
				user = p.Username
			}
			s.logger.Printf("RESP %s %s user=%s ip=%s status=%d dur=%s bytes=%d", r.Method, r.URL.Path, user, s.clientIP(r), rec.status, time.Since(start), rec.size)
		}
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if s.logger != nil {
					s.logger.Errorf("panic %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				}
				handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// withSession resolves the access token (cookie or bearer) into a
// Principal backed by a live user record. Banned users keep their
// session but read-only identity endpoints still work; mutating routes
// are gated by permissions, not the ban flag.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerOrCookie(r, handlers.AccessTokenCookie)
		if raw == "" {
			if s.logger != nil {
				s.logger.Printf("AUTH fail (missing token) %s %s", r.Method, r.URL.Path)
			}
			handlers.WriteError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.tokens.Parse(raw, auth.ScopeAccess)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("AUTH fail (token invalid) %s %s: %v", r.Method, r.URL.Path, err)
			}
			handlers.WriteError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		u, err := s.store.Users.Get(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				if s.logger != nil {
					s.logger.Printf("AUTH fail (user missing) %s %s", r.Method, r.URL.Path)
				}
				handlers.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		p := &auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role, Scope: auth.ScopeAccess}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), p)))
	}
}

func (s *Server) requirePermission(perm rbac.Permission) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if p == nil {
				if s.logger != nil {
					s.logger.Printf("PERM fail (no session) %s %s need=%s", r.Method, r.URL.Path, perm)
				}
				handlers.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !s.policy.Allowed([]string{p.Role}, perm) {
				if s.logger != nil {
					s.logger.Printf("PERM fail %s %s user=%s role=%s need=%s", r.Method, r.URL.Path, p.Username, p.Role, perm)
				}
				handlers.WriteError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

func (s *Server) requireAnyPermission(perms ...rbac.Permission) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if p == nil {
				handlers.WriteError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			for _, perm := range perms {
				if s.policy.Allowed([]string{p.Role}, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if s.logger != nil {
				s.logger.Printf("PERM fail %s %s user=%s role=%s need_any=%v", r.Method, r.URL.Path, p.Username, p.Role, perms)
			}
			handlers.WriteError(w, http.StatusForbidden, "Insufficient permissions")
		}
	}
}

func bearerOrCookie(r *http.Request, cookieName string) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if ck, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

func (s *Server) clientIP(r *http.Request) string {
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	if ip == "" {
		ip = r.RemoteAddr
	}
	ip = strings.TrimSpace(ip)
	if s == nil || s.cfg == nil || !isTrustedProxy(ip, s.cfg.Security.TrustedProxies) {
		return ip
	}
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if candidate := strings.TrimSpace(part); candidate != "" {
				return candidate
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return ip
}

func isTrustedProxy(ip string, trusted []string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	for _, raw := range trusted {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if strings.Contains(val, "/") {
			if _, block, err := net.ParseCIDR(val); err == nil && block.Contains(parsed) {
				return true
			}
			continue
		}
		if parsed.Equal(net.ParseIP(val)) {
			return true
		}
	}
	return false
}
