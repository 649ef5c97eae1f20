package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Verification represents a pending email-verification attempt. The access
// token is an opaque single-use string; all of a user's records are purged
// once one of them is consumed.
type Verification struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"user_id"`
	Email       string        `bson:"email"`
	AccessToken string        `bson:"access_token"`
	ExpiresAt   time.Time     `bson:"expires_at"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
