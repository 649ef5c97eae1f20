package mailer

import (
	"fmt"

	"github.com/rs/zerolog"
)

// AccountMailer sends account lifecycle notifications. Delivery happens in
// the background; the HTTP response never waits on SMTP, and failures are
// logged rather than surfaced to the caller.
type AccountMailer struct {
	mailer              *Mailer
	logger              *zerolog.Logger
	appVerifyURL        string
	appPasswordResetURL string
}

// NewAccountMailer creates a new AccountMailer instance.
func NewAccountMailer(mailer *Mailer, logger *zerolog.Logger, appVerifyURL, appPasswordResetURL string) *AccountMailer {
	return &AccountMailer{
		mailer:              mailer,
		logger:              logger,
		appVerifyURL:        appVerifyURL,
		appPasswordResetURL: appPasswordResetURL,
	}
}

// SendVerification sends the "please verify your email" mail containing the
// verification link.
func (m *AccountMailer) SendVerification(email, accessToken string) {
	verifyLink := fmt.Sprintf("%s?token=%s", m.appVerifyURL, accessToken)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Please confirm that %s is your email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>If you did not request this, you can safely ignore this email.</p>
	`, email, verifyLink, verifyLink)

	m.dispatch(email, "Verify your email address", htmlBody)
}

// SendVerified notifies the user that their email has been verified.
func (m *AccountMailer) SendVerified(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your email address has been verified successfully.</p>
	`

	m.dispatch(email, "Email verified", htmlBody)
}

// SendProfileUpdated notifies the user that their profile has been updated.
func (m *AccountMailer) SendProfileUpdated(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your profile has been updated successfully.</p>
	`

	m.dispatch(email, "Profile updated", htmlBody)
}

// SendEmailUpdated notifies the user that their account email has changed.
func (m *AccountMailer) SendEmailUpdated(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>The email address of your account has been changed.</p>
		<p>If you did not make this change, please contact support immediately.</p>
	`

	m.dispatch(email, "Email address changed", htmlBody)
}

// SendPasswordUpdated notifies the user that their password has changed.
func (m *AccountMailer) SendPasswordUpdated(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your password has been changed successfully.</p>
		<p>If you did not make this change, please contact support immediately.</p>
	`

	m.dispatch(email, "Password changed", htmlBody)
}

// SendAccountDeleted confirms the account deletion.
func (m *AccountMailer) SendAccountDeleted(email string) {
	htmlBody := `
		<p>Hi,</p>
		<p>Your account and all associated data have been deleted.</p>
	`

	m.dispatch(email, "Account deleted", htmlBody)
}

// SendPasswordReset sends the password-reset mail containing the reset link.
func (m *AccountMailer) SendPasswordReset(email, token string) {
	resetLink := fmt.Sprintf("%s?token=%s", m.appPasswordResetURL, token)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, resetLink, resetLink)

	m.dispatch(email, "Password reset request", htmlBody)
}

func (m *AccountMailer) dispatch(email, subject, htmlBody string) {
	go func() {
		if err := m.mailer.SendHTML([]string{email}, subject, htmlBody); err != nil {
			m.logger.Error().Err(err).Str("subject", subject).Msg("failed to send email")
		}
	}()
}
