package dto

import (
	"net/http"
	"strconv"
	"strings"

	"parkspot/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// MaxLimit caps the page size a client can ask for.
const MaxLimit = 100

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string.
//
//	q := dto.QueryParams{}
//	q.FromRequest(req, true)
//
// With defaultRequest set, a missing page or limit falls back to the defaults.
// A sort_by without a usable sort_dir sorts descending. Whether the column may be
// sorted on at all is decided by the repository.
func (q *QueryParams) FromRequest(r *http.Request, defaultRequest bool) {
	query := r.URL.Query()

	if page, ok := positive(query.Get(constant.RequestParamPage)); ok {
		q.Page = page
	}

	if limit, ok := positive(query.Get(constant.RequestParamLimit)); ok {
		q.Limit = min(limit, MaxLimit)
	}

	if sortBy := strings.TrimSpace(query.Get(constant.RequestParamSortBy)); sortBy != "" {
		q.SortBy = sortBy
	}

	switch sortDir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); sortDir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = sortDir
	default:
		if q.SortBy != "" && q.SortDir == "" {
			q.SortDir = constant.DefaultValueSortDir
		}
	}

	if defaultRequest {
		if q.Page == 0 {
			q.Page = constant.DefaultValuePage
		}

		if q.Limit == 0 {
			q.Limit = constant.DefaultValueLimit
		}
	}
}

func positive(value string) (int, bool) {
	if value == "" {
		return 0, false
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}
