package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/thanawat-r/account-api/internal/auth"
	"github.com/thanawat-r/account-api/internal/model"
	"github.com/thanawat-r/account-api/internal/repository"
)

type stubUserRepo struct {
	repository.UserRepository
	user *model.User
}

func (s *stubUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	if s.user != nil && s.user.ID.Hex() == id {
		return s.user, nil
	}
	return nil, mongo.ErrNoDocuments
}

func signSessionToken(t *testing.T, jwtAuth auth.JWTAuthenticator, userID, secret string, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := auth.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "account-api",
			Audience:  jwt.ClaimStrings{"account-api"},
		},
	}

	token, err := jwtAuth.GenerateToken(claims, secret)
	require.NoError(t, err)

	return token
}

func runAuthenticated(t *testing.T, users repository.UserRepository, authorization string) (*model.User, bool) {
	t.Helper()

	logger := zerolog.Nop()
	jwtAuth := auth.NewJWTAuthenticator("account-api", "account-api")

	var (
		gotUser *model.User
		gotOK   bool
	)
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser, gotOK = UserFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	Authenticate(jwtAuth, "secret", users, &logger)(next).ServeHTTP(httptest.NewRecorder(), req)

	return gotUser, gotOK
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID(), Email: "ada@example.com"}
	jwtAuth := auth.NewJWTAuthenticator("account-api", "account-api")
	token := signSessionToken(t, jwtAuth, user.ID.Hex(), "secret", time.Minute)

	gotUser, ok := runAuthenticated(t, &stubUserRepo{user: user}, "Bearer "+token)

	require.True(t, ok)
	assert.Equal(t, user.Email, gotUser.Email)
}

func TestAuthenticate_MissingHeaderPassesThrough(t *testing.T) {
	_, ok := runAuthenticated(t, &stubUserRepo{}, "")
	assert.False(t, ok)
}

func TestAuthenticate_ExpiredTokenPassesThrough(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID(), Email: "ada@example.com"}
	jwtAuth := auth.NewJWTAuthenticator("account-api", "account-api")
	token := signSessionToken(t, jwtAuth, user.ID.Hex(), "secret", -time.Minute)

	_, ok := runAuthenticated(t, &stubUserRepo{user: user}, "Bearer "+token)
	assert.False(t, ok)
}

func TestAuthenticate_UnknownUserPassesThrough(t *testing.T) {
	jwtAuth := auth.NewJWTAuthenticator("account-api", "account-api")
	token := signSessionToken(t, jwtAuth, bson.NewObjectID().Hex(), "secret", time.Minute)

	_, ok := runAuthenticated(t, &stubUserRepo{}, "Bearer "+token)
	assert.False(t, ok)
}

func TestAuthenticate_MalformedHeaderPassesThrough(t *testing.T) {
	_, ok := runAuthenticated(t, &stubUserRepo{}, "Token abc")
	assert.False(t, ok)
}
