package routegroups

import (
	"net/http"

	"clipper-mock/core/rbac"
)

type Guards struct {
	WithSession          func(http.HandlerFunc) http.HandlerFunc
	RequirePermission    func(rbac.Permission) func(http.HandlerFunc) http.HandlerFunc
	RequireAnyPermission func(...rbac.Permission) func(http.HandlerFunc) http.HandlerFunc
}

func (g Guards) Session(handler http.HandlerFunc) http.HandlerFunc {
	return g.WithSession(handler)
}

func (g Guards) SessionPerm(perm rbac.Permission, handler http.HandlerFunc) http.HandlerFunc {
	return g.WithSession(g.RequirePermission(perm)(handler))
}

func (g Guards) SessionAnyPerm(perms []rbac.Permission, handler http.HandlerFunc) http.HandlerFunc {
	return g.WithSession(g.RequireAnyPermission(perms...)(handler))
}
