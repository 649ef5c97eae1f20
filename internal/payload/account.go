package payload

// Envelope is the uniform response shape returned by every handler.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type RequestVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmVerificationResponse struct {
	AccessToken string `json:"access_token"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
}

type UpdateProfileResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateEmailRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateEmailResponse struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
