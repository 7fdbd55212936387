package routegroups

import (
	"github.com/go-chi/chi/v5"

	"clipper-mock/api/handlers"
)

// RegisterAuth wires the OAuth flow and MFA endpoints. Login entry, the
// mock provider authorize page, the callback exchange, and the MFA
// challenge endpoints stay sessionless: a login in progress has no
// session yet.
func RegisterAuth(apiRouter chi.Router, g Guards, auth *handlers.AuthHandler, mfa *handlers.MFAHandler) {
	apiRouter.Route("/auth", func(r chi.Router) {
		r.MethodFunc("GET", "/twitch", auth.TwitchLogin)
		r.MethodFunc("GET", "/twitch/authorize", auth.Authorize)
		r.MethodFunc("POST", "/twitch/callback", auth.Callback)
		r.MethodFunc("GET", "/me", g.Session(auth.Me))
		r.MethodFunc("POST", "/refresh", auth.Refresh)
		r.MethodFunc("POST", "/logout", auth.Logout)

		r.Route("/mfa", func(m chi.Router) {
			m.MethodFunc("POST", "/enroll", g.Session(mfa.Enroll))
			m.MethodFunc("POST", "/enroll/verify", g.Session(mfa.VerifyEnrollment))
			m.MethodFunc("POST", "/verify", mfa.Verify)
			m.MethodFunc("POST", "/recovery", mfa.Recovery)
			m.MethodFunc("POST", "/recovery/regenerate", g.Session(mfa.RegenerateRecoveryCodes))
			m.MethodFunc("POST", "/disable", g.Session(mfa.Disable))
			m.MethodFunc("GET", "/status", g.Session(mfa.Status))
		})
	})
}
