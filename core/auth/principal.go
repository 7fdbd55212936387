package auth

import "context"

type contextKey string

// PrincipalContextKey carries the authenticated Principal through request
// contexts.
const PrincipalContextKey contextKey = "principal"

// Principal is the authenticated identity resolved from an access token.
type Principal struct {
	UserID   string
	Username string
	Role     string
	// Scope distinguishes a full session from an mfa-pending login.
	Scope string
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(PrincipalContextKey).(*Principal)
	return p
}
