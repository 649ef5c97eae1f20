package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/zerolog"

	"github.com/thanawat-r/account-api/internal/middleware"
	"github.com/thanawat-r/account-api/internal/payload"
	"github.com/thanawat-r/account-api/internal/repository"
	"github.com/thanawat-r/account-api/internal/usecase"
)

// AccountHandler serves the account lifecycle HTTP endpoints. Every response
// uses the uniform {data?, message, status} envelope.
type AccountHandler struct {
	account       usecase.AccountUsecase
	passwordReset usecase.PasswordResetUsecase
	validate      *validator.Validate
	translator    ut.Translator
	logger        *zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler instance.
func NewAccountHandler(
	account usecase.AccountUsecase,
	passwordReset usecase.PasswordResetUsecase,
	logger *zerolog.Logger,
) *AccountHandler {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		logger.Fatal().Err(err).Msg("failed to register validator translations")
	}

	return &AccountHandler{
		account:       account,
		passwordReset: passwordReset,
		validate:      validate,
		translator:    translator,
		logger:        logger,
	}
}

// RegisterRoutes mounts the account routes. The authenticate middleware is
// applied to the routes that operate on the caller's own account; the
// verification-confirm and password-reset routes are public.
func (h *AccountHandler) RegisterRoutes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Route("/api/v1/account", func(r chi.Router) {
		r.Get("/verification/{token}", h.ConfirmVerification)
		r.Post("/password-reset", h.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", h.Me)
			r.Post("/verification", h.RequestVerification)
			r.Patch("/profile", h.UpdateProfile)
			r.Patch("/email", h.UpdateEmail)
			r.Patch("/password", h.UpdatePassword)
			r.Delete("/", h.DeleteAccount)
		})
	})
}

// Me echoes the authenticated user's own record.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondNotFound(w)
		return
	}

	respondOK(w, user)
}

// RequestVerification starts an email-verification flow for the caller.
func (h *AccountHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondNotFound(w)
		return
	}

	var req payload.RequestVerificationRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.account.RequestVerification(r.Context(), user, req.Email); err != nil {
		h.respondError(w, err, "failed to request verification")
		return
	}

	respondOK(w, nil)
}

// ConfirmVerification consumes a verification token from the URL and returns
// a fresh session token.
func (h *AccountHandler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	sessionToken, err := h.account.ConfirmVerification(r.Context(), token)
	if err != nil {
		h.respondError(w, err, "failed to confirm verification")
		return
	}

	respondOK(w, payload.ConfirmVerificationResponse{AccessToken: sessionToken})
}

// UpdateProfile updates the caller's name fields.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondNotFound(w)
		return
	}

	var req payload.UpdateProfileRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	updated, err := h.account.UpdateProfile(r.Context(), user, repositoryProfileParams(req))
	if err != nil {
		h.respondError(w, err, "failed to update profile")
		return
	}

	respondOK(w, payload.UpdateProfileResponse{
		FirstName: updated.FirstName,
		LastName:  updated.LastName,
	})
}

// UpdateEmail changes the caller's email after a password check.
func (h *AccountHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondNotFound(w)
		return
	}

	var req payload.UpdateEmailRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	email, err := h.account.UpdateEmail(r.Context(), user, req.Email, req.Password)
	if err != nil {
		h.respondError(w, err, "failed to update email")
		return
	}

	respondOK(w, payload.UpdateEmailResponse{Email: email})
}

// UpdatePassword replaces the caller's password after checking the old one.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondNotFound(w)
		return
	}

	var req payload.UpdatePasswordRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.account.UpdatePassword(r.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(w, err, "failed to update password")
		return
	}

	respondOK(w, nil)
}

// DeleteAccount deletes the caller's account after a password check.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondNotFound(w)
		return
	}

	var req payload.DeleteAccountRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.account.DeleteAccount(r.Context(), user, req.Password); err != nil {
		h.respondError(w, err, "failed to delete account")
		return
	}

	respondOK(w, nil)
}

// RequestPasswordReset mails a reset link to the given address, if known.
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.RequestPasswordResetRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.passwordReset.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.respondError(w, err, "failed to request password reset")
		return
	}

	respondOK(w, nil)
}

// ResetPassword consumes a reset token and sets a new password.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := h.decode(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.passwordReset.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.respondError(w, err, "failed to reset password")
		return
	}

	respondOK(w, nil)
}

func repositoryProfileParams(req payload.UpdateProfileRequest) repository.UpdateProfileParams {
	return repository.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

func (h *AccountHandler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}

	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldError := range validationErrors {
				h.logger.Debug().
					Str("field", fieldError.Field()).
					Msg(fieldError.Translate(h.translator))
			}
		}
		return err
	}

	return nil
}

// respondError maps usecase errors to the envelope statuses. Precondition
// failures get their dedicated status; everything unexpected collapses to a
// logged 400.
func (h *AccountHandler) respondError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrEmailTaken):
		respondConflict(w)
	case errors.Is(err, usecase.ErrInvalidPassword), errors.Is(err, usecase.ErrInvalidToken):
		respondForbidden(w)
	case errors.Is(err, usecase.ErrUserNotFound):
		respondNotFound(w)
	default:
		h.logger.Error().Err(err).Msg(msg)
		respondBadRequest(w)
	}
}
