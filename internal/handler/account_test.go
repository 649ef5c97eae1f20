package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/thanawat-r/account-api/internal/middleware"
	"github.com/thanawat-r/account-api/internal/model"
	"github.com/thanawat-r/account-api/internal/payload"
	"github.com/thanawat-r/account-api/internal/repository"
	"github.com/thanawat-r/account-api/internal/usecase"
)

// -------- test stubs --------

type stubAccountUsecase struct {
	requestVerificationErr error
	confirmToken           string
	confirmErr             error
	updateProfileUser      *model.User
	updateProfileErr       error
	updateEmailResult      string
	updateEmailErr         error
	updatePasswordErr      error
	deleteAccountErr       error
}

func (s *stubAccountUsecase) RequestVerification(context.Context, *model.User, string) error {
	return s.requestVerificationErr
}

func (s *stubAccountUsecase) ConfirmVerification(context.Context, string) (string, error) {
	return s.confirmToken, s.confirmErr
}

func (s *stubAccountUsecase) UpdateProfile(
	_ context.Context,
	user *model.User,
	_ repository.UpdateProfileParams,
) (*model.User, error) {
	if s.updateProfileUser != nil {
		return s.updateProfileUser, s.updateProfileErr
	}
	return user, s.updateProfileErr
}

func (s *stubAccountUsecase) UpdateEmail(context.Context, *model.User, string, string) (string, error) {
	return s.updateEmailResult, s.updateEmailErr
}

func (s *stubAccountUsecase) UpdatePassword(context.Context, *model.User, string, string) error {
	return s.updatePasswordErr
}

func (s *stubAccountUsecase) DeleteAccount(context.Context, *model.User, string) error {
	return s.deleteAccountErr
}

type stubPasswordResetUsecase struct {
	requestErr error
	resetErr   error
}

func (s *stubPasswordResetUsecase) RequestPasswordReset(context.Context, string) error {
	return s.requestErr
}

func (s *stubPasswordResetUsecase) ResetPassword(context.Context, string, string) error {
	return s.resetErr
}

func newTestRouter(account usecase.AccountUsecase, reset usecase.PasswordResetUsecase, user *model.User) http.Handler {
	logger := zerolog.Nop()
	accountHandler := NewAccountHandler(account, reset, &logger)

	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				r = r.WithContext(middleware.ContextWithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}

	router := chi.NewRouter()
	accountHandler.RegisterRoutes(router, authenticate)

	return router
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, payload.Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var envelope payload.Envelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))

	return recorder, envelope
}

func testUser() *model.User {
	return &model.User{
		ID:        bson.NewObjectID(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
}

// -------- tests --------

func TestMe_NoAuthenticatedUser(t *testing.T) {
	router := newTestRouter(&stubAccountUsecase{}, &stubPasswordResetUsecase{}, nil)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/account", "")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Not Found", envelope.Message)
	assert.Equal(t, http.StatusNotFound, envelope.Status)
	assert.Nil(t, envelope.Data)
}

func TestMe_EchoesUser(t *testing.T) {
	user := testUser()
	router := newTestRouter(&stubAccountUsecase{}, &stubPasswordResetUsecase{}, user)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/account", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", envelope.Message)
	assert.Equal(t, http.StatusOK, envelope.Status)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, user.Email, data["email"])
}

func TestRequestVerification_Conflict(t *testing.T) {
	router := newTestRouter(
		&stubAccountUsecase{requestVerificationErr: usecase.ErrEmailTaken},
		&stubPasswordResetUsecase{},
		testUser(),
	)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/account/verification",
		`{"email":"taken@example.com"}`)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "Conflict", envelope.Message)
	assert.Equal(t, http.StatusConflict, envelope.Status)
}

func TestRequestVerification_InvalidEmail(t *testing.T) {
	router := newTestRouter(&stubAccountUsecase{}, &stubPasswordResetUsecase{}, testUser())

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/account/verification",
		`{"email":"not-an-email"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Bad Request", envelope.Message)
}

func TestConfirmVerification_InvalidToken(t *testing.T) {
	router := newTestRouter(
		&stubAccountUsecase{confirmErr: usecase.ErrInvalidToken},
		&stubPasswordResetUsecase{},
		nil,
	)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/account/verification/bad-token", "")

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Forbidden", envelope.Message)
	assert.Equal(t, http.StatusForbidden, envelope.Status)
}

func TestConfirmVerification_ReturnsSessionToken(t *testing.T) {
	router := newTestRouter(
		&stubAccountUsecase{confirmToken: "signed-session-token"},
		&stubPasswordResetUsecase{},
		nil,
	)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/account/verification/good-token", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", envelope.Message)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "signed-session-token", data["access_token"])
}

func TestUpdateProfile_RespondsWithUpdatedFields(t *testing.T) {
	updated := testUser()
	updated.FirstName = "Augusta"
	router := newTestRouter(
		&stubAccountUsecase{updateProfileUser: updated},
		&stubPasswordResetUsecase{},
		testUser(),
	)

	recorder, envelope := doRequest(t, router, http.MethodPatch, "/api/v1/account/profile",
		`{"first_name":"Augusta"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Augusta", data["first_name"])
	assert.Equal(t, "Lovelace", data["last_name"])
}

func TestUpdateEmail_WrongPassword(t *testing.T) {
	router := newTestRouter(
		&stubAccountUsecase{updateEmailErr: usecase.ErrInvalidPassword},
		&stubPasswordResetUsecase{},
		testUser(),
	)

	recorder, envelope := doRequest(t, router, http.MethodPatch, "/api/v1/account/email",
		`{"email":"new@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Forbidden", envelope.Message)
}

func TestUpdatePassword_MissingFields(t *testing.T) {
	router := newTestRouter(&stubAccountUsecase{}, &stubPasswordResetUsecase{}, testUser())

	recorder, envelope := doRequest(t, router, http.MethodPatch, "/api/v1/account/password",
		`{"old_password":"abc123xyz"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Bad Request", envelope.Message)
}

func TestDeleteAccount_UnexpectedErrorCollapsesTo400(t *testing.T) {
	router := newTestRouter(
		&stubAccountUsecase{deleteAccountErr: assert.AnError},
		&stubPasswordResetUsecase{},
		testUser(),
	)

	recorder, envelope := doRequest(t, router, http.MethodDelete, "/api/v1/account",
		`{"password":"abc123xyz"}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Bad Request", envelope.Message)
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestMutatingRoutesRequireAuthUser(t *testing.T) {
	router := newTestRouter(&stubAccountUsecase{}, &stubPasswordResetUsecase{}, nil)

	routes := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/api/v1/account/verification", `{"email":"ada@example.com"}`},
		{http.MethodPatch, "/api/v1/account/profile", `{"first_name":"Ada"}`},
		{http.MethodPatch, "/api/v1/account/email", `{"email":"a@b.co","password":"p"}`},
		{http.MethodPatch, "/api/v1/account/password", `{"old_password":"a","new_password":"abc123xyz"}`},
		{http.MethodDelete, "/api/v1/account", `{"password":"p"}`},
	}

	for _, route := range routes {
		recorder, envelope := doRequest(t, router, route.method, route.target, route.body)
		assert.Equal(t, http.StatusNotFound, recorder.Code, "%s %s", route.method, route.target)
		assert.Equal(t, "Not Found", envelope.Message)
	}
}

func TestRequestPasswordReset_OK(t *testing.T) {
	router := newTestRouter(&stubAccountUsecase{}, &stubPasswordResetUsecase{}, nil)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/account/password-reset",
		`{"email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "OK", envelope.Message)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	router := newTestRouter(
		&stubAccountUsecase{},
		&stubPasswordResetUsecase{resetErr: usecase.ErrInvalidToken},
		nil,
	)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/account/password-reset/confirm",
		`{"token":"bad","new_password":"xyz789xyz"}`)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Forbidden", envelope.Message)
}
