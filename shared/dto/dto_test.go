package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"parkspot/shared/constant"
	"parkspot/shared/dto"
	"parkspot/shared/model"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	metadata := dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: createdAt.Add(time.Hour),
		CreatedBy:  "owner-1",
		ModifiedBy: "admin-1",
	})

	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, createdAt.Add(time.Hour).Format(constant.DateFormat), metadata.ModifiedAt)
	assert.Equal(t, "owner-1", metadata.CreatedBy)
	assert.Equal(t, "admin-1", metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		want           dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "page=2&limit=20&sort_by=price_per_hour&sort_dir=asc",
			want:  dto.QueryParams{Page: 2, Limit: 20, SortBy: "price_per_hour", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults when empty",
			defaultRequest: true,
			want:           dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "nothing set without defaults",
			want: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back to defaults",
			query:          "page=-1&limit=abc",
			defaultRequest: true,
			want:           dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:           "limit is capped",
			query:          "limit=5000",
			defaultRequest: true,
			want:           dto.QueryParams{Page: constant.DefaultValuePage, Limit: dto.MaxLimit},
		},
		{
			name:  "sort without direction sorts descending",
			query: "sort_by=created_at&sort_dir=sideways",
			want:  dto.QueryParams{SortBy: "created_at", SortDir: dto.SortDirDesc},
		},
		{
			name:  "unknown sort direction is ignored",
			query: "sort_dir=sideways",
			want:  dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/v1/spots?"+tt.query, nil)

			params := dto.QueryParams{}
			params.FromRequest(request, tt.defaultRequest)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		group     dto.FilterGroup
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:     "empty group",
			group:    dto.FilterGroup{},
			wantArgs: map[string]any{},
		},
		{
			name: "equality and in list",
			group: dto.FilterGroup{
				Operator: dto.FilterGroupOperatorAnd,
				Filters: []any{
					dto.Filter{Field: "owner_id", Value: "owner-1", Operator: dto.FilterOperatorEq, Table: "spots"},
					dto.Filter{Field: "status", Value: []string{"APPROVED", "AUTO_APPROVED"}, Operator: dto.FilterOperatorIn, Table: "spots"},
				},
			},
			wantWhere: "(spots.owner_id = :owner_id AND spots.status IN (:status_0, :status_1) )",
			wantArgs: map[string]any{
				"owner_id": "owner-1",
				"status_0": "APPROVED",
				"status_1": "AUTO_APPROVED",
			},
		},
		{
			name: "nested or group",
			group: dto.FilterGroup{
				Filters: []any{
					dto.Filter{Field: "spot_id", Value: "spot-1", Operator: dto.FilterOperatorEq},
					dto.FilterGroup{
						Operator: dto.FilterGroupOperatorOr,
						Filters: []any{
							dto.Filter{ArgName: "pending", Field: "status", Value: "PENDING", Operator: dto.FilterOperatorEq},
							dto.Filter{ArgName: "approved", Field: "status", Value: "APPROVED", Operator: dto.FilterOperatorEq},
						},
					},
				},
			},
			wantWhere: "(spot_id = :spot_id AND (status = :pending OR status = :approved))",
			wantArgs: map[string]any{
				"spot_id":  "spot-1",
				"pending":  "PENDING",
				"approved": "APPROVED",
			},
		},
		{
			name: "case insensitive like",
			group: dto.FilterGroup{
				Filters: []any{
					dto.Filter{Field: "email", Value: "renter", Operator: dto.FilterOperatorLike},
				},
			},
			wantWhere: "(LOWER(email) LIKE LOWER(:email) )",
			wantArgs:  map[string]any{"email": "%renter%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.group.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
