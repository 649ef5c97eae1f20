package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordReset represents a pending password-reset request.
type PasswordReset struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Email     string        `bson:"email"`
	Token     string        `bson:"token"`
	Used      bool          `bson:"used"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
