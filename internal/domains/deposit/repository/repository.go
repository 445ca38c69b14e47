package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/internal/domains/deposit/model"
	gDto "parkspot/shared/dto"
	gRepo "parkspot/shared/repository"

	"github.com/jmoiron/sqlx"
)

// Transaction is the append-only deposit ledger.
type Transaction interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Transaction) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Transaction, error)
	GetAllTx(ctx context.Context, tx *sqlx.Tx, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Transaction, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Transaction]
}

func New(db *postgres.Connection, otel otel.Otel) Transaction {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Transaction](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
