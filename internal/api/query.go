package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/llamaio/task-api/internal/repository"
	"github.com/llamaio/task-api/pkg/apierror"
)

// QueryOptions is a parsed read request: the store-facing options plus the
// render-time projection and the count-only switch.
type QueryOptions struct {
	Store     repository.QueryOptions
	Select    *Projection
	CountOnly bool
}

// QueryDefaults tunes parsing per collection.
type QueryDefaults struct {
	// DefaultLimit applies when the request carries no limit. Zero means
	// unlimited.
	DefaultLimit uint64
}

// ParseQueryOptions reads the list-endpoint query parameters: where, sort and
// select carry JSON values; skip and limit are non-negative integers; a
// count=true request drops limit, select, and sort.
func ParseQueryOptions(query url.Values, defaults QueryDefaults) (QueryOptions, error) {
	opts := QueryOptions{}

	where, err := parseJSONParam(query.Get("where"))
	if err != nil {
		return opts, apierror.BadRequest(`invalid JSON in query parameter "where"`)
	}
	opts.Store.Where = where

	sortSpec, err := parseJSONParam(query.Get("sort"))
	if err != nil {
		return opts, apierror.BadRequest(`invalid JSON in query parameter "sort"`)
	}
	opts.Store.Sort = toSortFields(sortSpec)

	selectSpec, err := parseJSONParam(query.Get("select"))
	if err != nil {
		return opts, apierror.BadRequest(`invalid JSON in query parameter "select"`)
	}
	if selectSpec != nil {
		opts.Select = toProjection(selectSpec)
	}

	skip, err := parseNonNegativeInt(query.Get("skip"), "skip")
	if err != nil {
		return opts, err
	}
	opts.Store.Skip = skip

	if raw := query.Get("limit"); raw != "" {
		limit, err := parseNonNegativeInt(raw, "limit")
		if err != nil {
			return opts, err
		}
		opts.Store.Limit = &limit
	} else if defaults.DefaultLimit > 0 {
		limit := defaults.DefaultLimit
		opts.Store.Limit = &limit
	}

	if query.Get("count") == "true" {
		opts.CountOnly = true
		opts.Store.Limit = nil
		opts.Store.Sort = nil
		opts.Select = nil
	}

	return opts, nil
}

func parseJSONParam(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func parseNonNegativeInt(raw, field string) (uint64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apierror.BadRequest(fmt.Sprintf("query parameter %q must be a non-negative integer", field))
	}
	return value, nil
}

// toSortFields turns a {"field": 1|-1} spec into an ordered field list.
// JSON object key order is not preserved by the decoder, so fields are
// ordered alphabetically for determinism.
func toSortFields(spec map[string]interface{}) []repository.SortField {
	if len(spec) == 0 {
		return nil
	}
	fields := make([]string, 0, len(spec))
	for field := range spec {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]repository.SortField, 0, len(fields))
	for _, field := range fields {
		direction, ok := spec[field].(float64)
		if !ok {
			direction = 1
		}
		out = append(out, repository.SortField{Field: field, Desc: direction < 0})
	}
	return out
}
