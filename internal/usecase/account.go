package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/thanawat-r/account-api/internal/auth"
	"github.com/thanawat-r/account-api/internal/config"
	"github.com/thanawat-r/account-api/internal/model"
	"github.com/thanawat-r/account-api/internal/repository"
	"github.com/thanawat-r/account-api/internal/security"
)

// AccountUsecase defines the business logic for account lifecycle operations.
type AccountUsecase interface {
	// RequestVerification creates or refreshes a verification record for the
	// given candidate email and mails the verification link.
	RequestVerification(ctx context.Context, user *model.User, email string) error

	// ConfirmVerification consumes a verification access token, marks the
	// user's email verified, and returns a signed session token.
	ConfirmVerification(ctx context.Context, accessToken string) (string, error)

	// UpdateProfile updates the user's name fields.
	UpdateProfile(ctx context.Context, user *model.User, params repository.UpdateProfileParams) (*model.User, error)

	// UpdateEmail changes the account email after verifying the password and
	// starts a fresh verification flow for the new address.
	UpdateEmail(ctx context.Context, user *model.User, newEmail, password string) (string, error)

	// UpdatePassword replaces the password after verifying the old one.
	UpdatePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error

	// DeleteAccount removes the user and every verification and
	// password-reset record belonging to them.
	DeleteAccount(ctx context.Context, user *model.User, password string) error
}

// Mailer sends account lifecycle notifications. Implementations must not
// block the caller on delivery.
type Mailer interface {
	SendVerification(email, accessToken string)
	SendVerified(email string)
	SendProfileUpdated(email string)
	SendEmailUpdated(email string)
	SendPasswordUpdated(email string)
	SendAccountDeleted(email string)
	SendPasswordReset(email, token string)
}

var (
	ErrEmailTaken      = errors.New("email is already taken")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("token is invalid or has expired")
	ErrUserNotFound    = errors.New("user not found")
)

type accountUsecase struct {
	userRepo         repository.UserRepository
	verificationRepo repository.VerificationRepository
	passwordResets   repository.PasswordResetRepository
	transactor       repository.Transactor
	jwtAuth          auth.JWTAuthenticator
	mailer           Mailer
	cfg              *config.Config
}

// NewAccountUsecase creates a new instance of AccountUsecase.
func NewAccountUsecase(
	userRepo repository.UserRepository,
	verificationRepo repository.VerificationRepository,
	passwordResets repository.PasswordResetRepository,
	transactor repository.Transactor,
	jwtAuth auth.JWTAuthenticator,
	mailer Mailer,
	cfg *config.Config,
) AccountUsecase {
	return &accountUsecase{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		passwordResets:   passwordResets,
		transactor:       transactor,
		jwtAuth:          jwtAuth,
		mailer:           mailer,
		cfg:              cfg,
	}
}

func (u *accountUsecase) RequestVerification(ctx context.Context, user *model.User, email string) error {
	// The caller's own current email is never checked against itself.
	if email != user.Email {
		taken, err := u.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
	}

	accessToken, err := security.CryptoString()
	if err != nil {
		return err
	}
	expiresAt := security.DateAddDaysFromNow(u.cfg.VerificationExpiresInDays)

	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		return u.upsertVerification(ctx, user, email, accessToken, expiresAt, false)
	})
	if err != nil {
		return err
	}

	u.mailer.SendVerification(email, accessToken)

	return nil
}

func (u *accountUsecase) ConfirmVerification(ctx context.Context, accessToken string) (string, error) {
	verification, err := u.verificationRepo.GetByValidAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	var sessionToken string
	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.userRepo.SetVerifiedEmail(ctx, verification.UserID.Hex(), verification.Email); err != nil {
			return err
		}

		// The access token is single-use: purge every verification record
		// for this user so it cannot be replayed.
		if _, err := u.verificationRepo.DeleteManyByUserID(ctx, verification.UserID); err != nil {
			return err
		}

		token, err := u.generateSessionToken(verification.UserID.Hex())
		if err != nil {
			return err
		}
		sessionToken = token

		return nil
	})
	if err != nil {
		return "", err
	}

	u.mailer.SendVerified(verification.Email)

	return sessionToken, nil
}

func (u *accountUsecase) UpdateProfile(
	ctx context.Context,
	user *model.User,
	params repository.UpdateProfileParams,
) (*model.User, error) {
	// Single-document write, no transaction needed.
	updated, err := u.userRepo.UpdateProfile(ctx, user.ID.Hex(), params)
	if err != nil {
		return nil, err
	}

	u.mailer.SendProfileUpdated(updated.Email)

	return updated, nil
}

func (u *accountUsecase) UpdateEmail(
	ctx context.Context,
	user *model.User,
	newEmail, password string,
) (string, error) {
	if newEmail == user.Email {
		return user.Email, nil
	}

	taken, err := u.userRepo.ExistsByEmail(ctx, newEmail)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrEmailTaken
	}

	current, err := u.userRepo.GetUser(ctx, user.ID.Hex())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidPassword
		}
		return "", err
	}

	if ok, err := security.VerifyPassword(password, current.PasswordHash); err != nil {
		return "", err
	} else if !ok {
		return "", ErrInvalidPassword
	}

	accessToken, err := security.CryptoString()
	if err != nil {
		return "", err
	}
	expiresAt := security.DateAddDaysFromNow(u.cfg.VerificationExpiresInDays)

	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.userRepo.UpdateEmail(ctx, current.ID.Hex(), newEmail); err != nil {
			return err
		}

		return u.upsertVerification(ctx, current, newEmail, accessToken, expiresAt, true)
	})
	if err != nil {
		return "", err
	}

	u.mailer.SendEmailUpdated(newEmail)
	u.mailer.SendVerification(newEmail, accessToken)

	return newEmail, nil
}

func (u *accountUsecase) UpdatePassword(
	ctx context.Context,
	user *model.User,
	oldPassword, newPassword string,
) error {
	current, err := u.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidPassword
		}
		return err
	}

	if ok, err := security.VerifyPassword(oldPassword, current.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrInvalidPassword
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Single-document write, no transaction needed.
	if err := u.userRepo.UpdatePassword(ctx, current.ID.Hex(), passwordHash); err != nil {
		return err
	}

	u.mailer.SendPasswordUpdated(current.Email)

	return nil
}

func (u *accountUsecase) DeleteAccount(ctx context.Context, user *model.User, password string) error {
	current, err := u.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidPassword
		}
		return err
	}

	if ok, err := security.VerifyPassword(password, current.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrInvalidPassword
	}

	err = u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.userRepo.DeleteUser(ctx, current.ID.Hex()); err != nil {
			return err
		}

		if _, err := u.passwordResets.DeleteManyByUserID(ctx, current.ID); err != nil {
			return err
		}

		_, err := u.verificationRepo.DeleteManyByUserID(ctx, current.ID)
		return err
	})
	if err != nil {
		return err
	}

	u.mailer.SendAccountDeleted(current.Email)

	return nil
}

// upsertVerification refreshes the verification record keyed by
// (user, email). The record id is appended to the user's verification list
// on first creation, or unconditionally when alwaysPush is set (the
// email-change path).
func (u *accountUsecase) upsertVerification(
	ctx context.Context,
	user *model.User,
	email, accessToken string,
	expiresAt time.Time,
	alwaysPush bool,
) error {
	verification, created, err := u.verificationRepo.Upsert(ctx, repository.UpsertVerificationParams{
		UserID:      user.ID,
		Email:       email,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return err
	}

	if created || alwaysPush {
		return u.userRepo.PushVerificationID(ctx, user.ID.Hex(), verification.ID)
	}

	return nil
}

func (u *accountUsecase) generateSessionToken(userID string) (string, error) {
	now := time.Now()
	claims := auth.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.cfg.Token.ExpiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    u.cfg.Token.Issuer,
			Audience:  jwt.ClaimStrings{u.cfg.Token.Issuer},
		},
	}

	return u.jwtAuth.GenerateToken(claims, u.cfg.Token.Secret)
}
