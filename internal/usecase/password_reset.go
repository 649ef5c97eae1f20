package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/thanawat-r/account-api/internal/config"
	"github.com/thanawat-r/account-api/internal/model"
	"github.com/thanawat-r/account-api/internal/repository"
	"github.com/thanawat-r/account-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password-reset flows.
type PasswordResetUsecase interface {
	// RequestPasswordReset initiates the password reset process for a given
	// email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword resets the user's password using the provided token and
	// new password.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetUsecase struct {
	userRepo       repository.UserRepository
	passwordResets repository.PasswordResetRepository
	mailer         Mailer
	cfg            *config.Config
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	passwordResets repository.PasswordResetRepository,
	mailer Mailer,
	cfg *config.Config,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:       userRepo,
		passwordResets: passwordResets,
		mailer:         mailer,
		cfg:            cfg,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email
			// does not exist.
			return nil
		}
		return err
	}

	// Invalidate any previous reset requests for this user.
	if _, err := u.passwordResets.DeleteManyByUserID(ctx, user.ID); err != nil {
		return err
	}

	token, err := security.CryptoString()
	if err != nil {
		return err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(u.cfg.PasswordResetExpiresIn),
	}

	if _, err := u.passwordResets.Create(ctx, reset); err != nil {
		return err
	}

	u.mailer.SendPasswordReset(user.Email, token)

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := u.passwordResets.GetByValidToken(ctx, token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidToken
		}
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdatePassword(ctx, reset.UserID.Hex(), passwordHash); err != nil {
		return err
	}

	if err := u.passwordResets.MarkUsed(ctx, token); err != nil {
		return err
	}

	u.mailer.SendPasswordUpdated(reset.Email)

	return nil
}
