package shared_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"parkspot/shared"
	"parkspot/shared/cache/mocks"
	"parkspot/shared/constant"
	"parkspot/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		input string
		want  *bool
	}{
		{input: "", want: nil},
		{input: "true", want: boolPtr(true)},
		{input: "0", want: boolPtr(false)},
		{input: "covered", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.ConvertStringToBool(tt.input))
		})
	}
}

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name         string
		total, limit int
		want         int
	}{
		{name: "no rows", total: 0, limit: 10, want: 1},
		{name: "exact pages", total: 30, limit: 10, want: 3},
		{name: "partial last page", total: 31, limit: 10, want: 4},
		{name: "invalid limit", total: 31, limit: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type spotPatch struct {
		Title   string  `db:"title"`
		Price   int64   `db:"price_per_hour"`
		Covered *bool   `db:"covered"`
		Rules   *string `db:"rules"`
		Note    string
	}

	fields := shared.TransformFields(spotPatch{
		Title:   "Garage near station",
		Covered: boolPtr(false),
		Note:    "not a column",
	}, "owner-1")

	assert.Equal(t, "Garage near station", fields["title"])
	assert.Equal(t, false, fields["covered"])
	assert.NotContains(t, fields, "price_per_hour")
	assert.NotContains(t, fields, "rules")
	assert.Len(t, fields, 4)
	assert.Equal(t, "owner-1", fields[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, fields[constant.FieldModifiedAt])
}

func TestWithModified(t *testing.T) {
	fields := shared.WithModified(map[string]any{"refund_amount": int64(0)}, "renter-1")

	assert.Equal(t, int64(0), fields["refund_amount"])
	assert.Equal(t, "renter-1", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
}

func TestFilterByID(t *testing.T) {
	want := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "id", Value: "spot-1", Operator: dto.FilterOperatorEq, Table: "spots"},
		},
	}

	assert.Equal(t, want, shared.FilterByID("spot-1", "id", "spots"))
	assert.Equal(t, want, shared.FilterByField("id", "spot-1", "spots"))
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "spots", shared.BuildCacheKey("spots"))
	assert.Equal(t, "spots:spot-1:photos", shared.BuildCacheKey("spots", "spot-1", "photos"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10, SortBy: "created_at", SortDir: "DESC"}
	filter := shared.FilterByField("access_type", "GARAGE", "spots")

	first := shared.BuildCacheKeyWithQuery("spots", params, filter)
	second := shared.BuildCacheKeyWithQuery("spots", params, filter)
	other := shared.BuildCacheKeyWithQuery("spots", params, shared.FilterByField("access_type", "STREET", "spots"))

	assert.True(t, strings.HasPrefix(first, "spots:"))
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestInvalidateCaches(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "clears the prefix"},
		{name: "errors are swallowed", err: errors.New("redis down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			redisCache := mocks.NewMockRedisCache(ctrl)
			redisCache.EXPECT().Clear(gomock.Any(), "spots*").Return(tt.err)

			require.NotPanics(t, func() {
				shared.InvalidateCaches(context.Background(), redisCache, "spots")
			})
		})
	}
}

func TestPrincipal(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "owner-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleOwner)

	id, role := shared.Principal(ctx)
	assert.Equal(t, "owner-1", id)
	assert.Equal(t, constant.RoleOwner, role)

	id, role = shared.Principal(context.Background())
	assert.Empty(t, id)
	assert.Empty(t, role)
}

func boolPtr(b bool) *bool {
	return &b
}
