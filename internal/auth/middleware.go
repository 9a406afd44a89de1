package auth

import (
	"log/slog"
	"net/http"

	"github.com/danekja/ymanager/internal/transport"
	"github.com/danekja/ymanager/internal/user"
)

// Middleware authenticates requests: it verifies the bearer token, resolves
// the subject through the identity resolver (creating the user on first
// sight) and attaches the acting user to the request context.
type Middleware struct {
	*transport.BaseHandler
	verifier TokenVerifier
	resolver IdentityResolver
}

func NewMiddleware(verifier TokenVerifier, resolver IdentityResolver, logger *slog.Logger) *Middleware {
	return &Middleware{
		BaseHandler: transport.NewBaseHandler(logger),
		verifier:    verifier,
		resolver:    resolver,
	}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.Logger.Warn("token verification failed", "error", err)
			m.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
			return
		}

		actor, err := m.resolver.ResolveSubject(r.Context(), claims.Subject, claims.Email, claims.Name)
		if err != nil {
			m.Logger.Error("failed to resolve subject", "error", err, "subject", claims.Subject)
			m.HandleServiceError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), actor)))
	})
}
