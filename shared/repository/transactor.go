package repository

//go:generate go run go.uber.org/mock/mockgen -source=./transactor.go -destination=./mocks/transactor_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/shared/constant"
	"parkspot/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const msgConcurrentModification = "resource was modified concurrently, please retry"

type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

// Transactor runs fn inside a single write transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn TxFunc) error
}

type transactor struct {
	db   *postgres.Connection
	otel otel.Otel
}

func NewTransactor(db *postgres.Connection, otl otel.Otel) Transactor {
	return &transactor{
		db:   db,
		otel: otl,
	}
}

func (t *transactor) WithTx(ctx context.Context, fn TxFunc) (err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".WithTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := t.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return TranslateError(err)
	}

	if err = tx.Commit(); err != nil {
		return TranslateError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// TranslateError maps postgres conflicts onto failure.Conflict and leaves other errors untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeUniqueViolation:
		return failure.Conflict("resource already exists")
	case constant.PqErrorCodeSerializationFailed, constant.PqErrorCodeDeadlockDetected:
		return failure.Conflict(msgConcurrentModification)
	default:
		return err
	}
}
