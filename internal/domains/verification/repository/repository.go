package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/internal/domains/verification/model"
	gDto "parkspot/shared/dto"
	gRepo "parkspot/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Verification interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Verification) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Verification, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Verification, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Verification, error)
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Verification]
}

func New(db *postgres.Connection, otel otel.Otel) Verification {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Verification](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
