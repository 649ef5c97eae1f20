package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account holder.
type User struct {
	ID            bson.ObjectID   `bson:"_id,omitempty"    json:"id"`
	FirstName     string          `bson:"first_name"       json:"first_name"`
	LastName      string          `bson:"last_name"        json:"last_name"`
	Email         string          `bson:"email"            json:"email"`
	PasswordHash  string          `bson:"password_hash"    json:"-"`
	Verified      bool            `bson:"verified"         json:"verified"`
	Verifications []bson.ObjectID `bson:"verifications"    json:"-"`
	CreatedAt     time.Time       `bson:"created_at"       json:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at"       json:"updated_at"`
}
