// Package auth turns a verified identity-provider token into the acting
// user. Authentication itself is delegated to the external OIDC provider;
// this package only consumes "who is acting".
package auth

import (
	"context"

	"github.com/danekja/ymanager/internal/user"
)

// Claims are the profile fields the identity provider vouches for.
type Claims struct {
	Subject string
	Email   string
	Name    string
}

// TokenVerifier checks a bearer token's signature and issuer and extracts
// the claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// IdentityResolver maps a verified subject to the internal user, creating
// the account on first sight.
type IdentityResolver interface {
	ResolveSubject(ctx context.Context, subject, email, name string) (*user.User, error)
}
