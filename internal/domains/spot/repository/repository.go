package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/internal/domains/spot/model"
	gDto "parkspot/shared/dto"
	gRepo "parkspot/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Spot interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Spot) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Spot, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Spot, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Spot, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, tx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
}

type Photo interface {
	Insert(ctx context.Context, model model.Photo) error
	InsertTx(ctx context.Context, tx *sqlx.Tx, model model.Photo) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Photo, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Spot]
}

func New(db *postgres.Connection, otel otel.Otel) Spot {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Spot](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type photoRepositoryImpl struct {
	gRepo.Repository[model.Photo]
}

func NewPhoto(db *postgres.Connection, otel otel.Otel) Photo {
	return &photoRepositoryImpl{
		Repository: gRepo.NewRepository[model.Photo](model.PhotoEntityName, model.PhotoTableName, model.PhotoFieldID, db, otel),
	}
}
