package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/thanawat-r/account-api/internal/model"
)

// VerificationRepository defines the interface for email-verification record
// operations.
type VerificationRepository interface {
	// Upsert updates the verification record keyed by (userID, email) with a
	// fresh access token and expiry, creating it if absent. The returned flag
	// reports whether a new record was created.
	Upsert(ctx context.Context, params UpsertVerificationParams) (*model.Verification, bool, error)

	// GetByValidAccessToken retrieves an unexpired record by its access token.
	GetByValidAccessToken(ctx context.Context, accessToken string) (*model.Verification, error)

	// DeleteManyByUserID removes all verification records for a user.
	DeleteManyByUserID(ctx context.Context, userID bson.ObjectID) (int64, error)
}

// UpsertVerificationParams defines the parameters for upserting a
// verification record.
type UpsertVerificationParams struct {
	UserID      bson.ObjectID
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

const verificationCollection = "verifications"

type verificationMongoRepository struct {
	db *mongo.Database
}

// NewVerificationMongoRepository creates a new MongoDB repository for
// email-verification records.
func NewVerificationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) VerificationRepository {
	collection := db.Collection(verificationCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "email", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "access_token", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create verification indexes")
	}

	return &verificationMongoRepository{db: db}
}

func (r *verificationMongoRepository) Upsert(
	ctx context.Context,
	params UpsertVerificationParams,
) (*model.Verification, bool, error) {
	now := time.Now()

	filter := bson.M{
		"user_id": params.UserID,
		"email":   params.Email,
	}
	update := bson.M{
		"$set": bson.M{
			"access_token": params.AccessToken,
			"expires_at":   params.ExpiresAt,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"user_id":    params.UserID,
			"email":      params.Email,
			"created_at": now,
		},
	}

	result := r.db.Collection(verificationCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, false, result.Err()
	}

	var verification model.Verification
	if err := result.Decode(&verification); err != nil {
		return nil, false, err
	}

	// On insert both timestamps come from the same write, so they match; an
	// update only touches updated_at.
	created := verification.CreatedAt.Equal(verification.UpdatedAt)

	return &verification, created, nil
}

func (r *verificationMongoRepository) GetByValidAccessToken(
	ctx context.Context,
	accessToken string,
) (*model.Verification, error) {
	if accessToken == "" {
		return nil, errors.New("access token is empty")
	}

	filter := bson.M{
		"access_token": accessToken,
		"expires_at":   bson.M{"$gt": time.Now()},
	}

	var verification model.Verification
	err := r.db.Collection(verificationCollection).FindOne(ctx, filter).Decode(&verification)
	if err != nil {
		return nil, err
	}

	return &verification, nil
}

func (r *verificationMongoRepository) DeleteManyByUserID(
	ctx context.Context,
	userID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(verificationCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
