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

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (*model.User, error)
	UpdateEmail(ctx context.Context, id, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	PushVerificationID(ctx context.Context, id string, verificationID bson.ObjectID) error
	SetVerifiedEmail(ctx context.Context, id, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)
}

// UpdateProfileParams defines the optional parameters for updating a user's
// profile. Only the fields that are not nil will be updated.
type UpdateProfileParams struct {
	FirstName *string
	LastName  *string
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Verifications == nil {
		user.Verifications = []bson.ObjectID{}
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.db.Collection(userCollection).CountDocuments(
		ctx,
		bson.M{"email": email},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *userMongoRepository) UpdateProfile(
	ctx context.Context,
	id string,
	params UpdateProfileParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.FirstName != nil {
		updateMap["first_name"] = *params.FirstName
	}
	if params.LastName != nil {
		updateMap["last_name"] = *params.LastName
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no profile fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateEmail(ctx context.Context, id, email string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"email": email, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now()}},
	)
	return err
}

func (r *userMongoRepository) PushVerificationID(
	ctx context.Context,
	id string,
	verificationID bson.ObjectID,
) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$push": bson.M{"verifications": verificationID},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

func (r *userMongoRepository) SetVerifiedEmail(ctx context.Context, id, email string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"verified":   true,
			"email":      email,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
