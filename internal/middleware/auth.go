package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/thanawat-r/account-api/internal/auth"
	"github.com/thanawat-r/account-api/internal/model"
	"github.com/thanawat-r/account-api/internal/repository"
)

type contextKey struct{}

var userContextKey = contextKey{}

// UserFromContext returns the authenticated user stored by Authenticate,
// if any.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

// ContextWithUser stores the given user in the context. Exposed for tests.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Authenticate validates a Bearer session token and loads the corresponding
// user into the request context. Requests without a valid token pass through
// unauthenticated; handlers decide how to respond to a missing user.
func Authenticate(
	jwtAuth auth.JWTAuthenticator,
	secret string,
	users repository.UserRepository,
	logger *zerolog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims := &auth.SessionClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(tokenString, secret, claims); err != nil {
				logger.Debug().Err(err).Msg("invalid session token")
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if err != nil {
				logger.Debug().Err(err).Msg("failed to load authenticated user")
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	return parts[1], true
}
