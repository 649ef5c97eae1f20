package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/thanawat-r/account-api/internal/model"
)

// PasswordResetRepository defines the interface for password-reset record
// operations.
type PasswordResetRepository interface {
	// Create creates a new password-reset record.
	Create(ctx context.Context, reset *model.PasswordReset) (*model.PasswordReset, error)

	// GetByValidToken retrieves an unexpired, unused record by its token.
	GetByValidToken(ctx context.Context, token string) (*model.PasswordReset, error)

	// MarkUsed marks a record as used.
	MarkUsed(ctx context.Context, token string) error

	// DeleteManyByUserID removes all password-reset records for a user.
	DeleteManyByUserID(ctx context.Context, userID bson.ObjectID) (int64, error)
}

const passwordResetCollection = "password_resets"

type passwordResetMongoRepository struct {
	db *mongo.Database
}

// NewPasswordResetMongoRepository creates a new MongoDB repository for
// password-reset records.
func NewPasswordResetMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetRepository {
	collection := db.Collection(passwordResetCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset indexes")
	}

	return &passwordResetMongoRepository{db: db}
}

func (r *passwordResetMongoRepository) Create(
	ctx context.Context,
	reset *model.PasswordReset,
) (*model.PasswordReset, error) {
	now := time.Now()
	reset.CreatedAt = now
	reset.UpdatedAt = now
	reset.Used = false

	result, err := r.db.Collection(passwordResetCollection).InsertOne(ctx, reset)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		reset.ID = objectID
	}

	return reset, nil
}

func (r *passwordResetMongoRepository) GetByValidToken(
	ctx context.Context,
	token string,
) (*model.PasswordReset, error) {
	filter := bson.M{
		"token":      token,
		"used":       false,
		"expires_at": bson.M{"$gt": time.Now()},
	}

	var reset model.PasswordReset
	err := r.db.Collection(passwordResetCollection).FindOne(ctx, filter).Decode(&reset)
	if err != nil {
		return nil, err
	}

	return &reset, nil
}

func (r *passwordResetMongoRepository) MarkUsed(ctx context.Context, token string) error {
	filter := bson.M{"token": token}
	update := bson.M{
		"$set": bson.M{
			"used":       true,
			"updated_at": time.Now(),
		},
	}

	_, err := r.db.Collection(passwordResetCollection).UpdateOne(ctx, filter, update)
	return err
}

func (r *passwordResetMongoRepository) DeleteManyByUserID(
	ctx context.Context,
	userID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(passwordResetCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
