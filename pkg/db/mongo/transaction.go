package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	apperrors "aqevent/pkg/errors"
)

type TransactionFunc func(ctx mongo.SessionContext) error

// TransactionManager runs a function against both event lists atomically.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client    *mongo.Client
	passThru  []error
	txOptions *options.TransactionOptions
}

// NewTransactionManager returns a manager whose transactions read a snapshot
// and commit with majority acknowledgement. Errors matching one of passThru
// (for example a store's not-found sentinel) are returned as they are.
func NewTransactionManager(client *mongo.Client, passThru ...error) TransactionManager {
	return &mongoTransactionManager{
		client:   client,
		passThru: passThru,
		txOptions: options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.txOptions)
	if err == nil {
		return nil
	}

	if apperrors.IsAppError(err) {
		return err
	}
	for _, sentinel := range m.passThru {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("transaction failed: %w", err)
}
