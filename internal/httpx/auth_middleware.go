package httpx

import (
	"context"
	"net/http"
	"strings"

	"bookstore/internal/apperror"
	"bookstore/internal/platform/crypto"
)

// IdentityResolver looks up the account behind a verified token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (Identity, error)
}

var errNotAuthorized = apperror.New(http.StatusUnauthorized, "Not authorized to access this route")

// AuthMiddleware rejects requests without a valid bearer token and attaches
// the resolved Identity to the request context.
func AuthMiddleware(secret string, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, r, errNotAuthorized)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			identity, err := resolver.ResolveIdentity(r.Context(), claims.UserID)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			reportUserID(r.Context(), identity.ID)
			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}
