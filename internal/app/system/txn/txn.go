// Package txn runs multi-document work inside a MongoDB transaction.
//
// Transactions need a replica set or mongos. On a standalone server the
// driver fails with a recognizable error; Run detects that and falls back to
// executing the function without a transaction so local development still
// works. Workflows that rely on all-or-nothing visibility keep their
// status-guarded conditional updates as the race arbiter either way.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. fn must perform all
// collection operations with the context it receives. Any error returned by
// fn aborts the transaction and is returned unchanged.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("mongo sessions unavailable, running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("mongo transactions unsupported, running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are not available
// (standalone mongod, old server, or an operation illegal in a transaction).
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: "Transaction numbers are only allowed on a replica set member"
	51:  true, // illegal operation
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run this work
// in a transaction (as opposed to the work itself failing).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return notSupportedCodes[ce.Code]
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") {
		if strings.Contains(msg, "replica set") ||
			strings.Contains(msg, "session") ||
			strings.Contains(msg, "illegal operation") {
			return true
		}
	}
	return strings.Contains(msg, "session") && strings.Contains(msg, "not supported")
}
