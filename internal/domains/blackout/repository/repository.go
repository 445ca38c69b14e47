package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/internal/domains/blackout/model"
	gDto "parkspot/shared/dto"
	gRepo "parkspot/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Blackout interface {
	Insert(ctx context.Context, model model.Blackout) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Blackout, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Blackout, error)
	GetAllTx(ctx context.Context, tx *sqlx.Tx, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Blackout, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Blackout]
}

func New(db *postgres.Connection, otel otel.Otel) Blackout {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Blackout](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
