package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Transactor runs a function inside a database transaction. The session is
// acquired per call and released on every exit path.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client *mongo.Client
}

// NewMongoTransactor creates a Transactor backed by MongoDB sessions.
func NewMongoTransactor(client *mongo.Client) Transactor {
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
