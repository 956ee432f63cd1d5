package repository

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/llamaio/task-api/pkg/apierror"
)

// SortField orders a filtered read by one field.
type SortField struct {
	Field string
	Desc  bool
}

// QueryOptions captures a filtered read: equality conditions on persisted
// field names, ordering, and pagination. CountOnly switches the read to a
// bare count.
type QueryOptions struct {
	Where     map[string]interface{}
	Sort      []SortField
	Skip      uint64
	Limit     *uint64
	CountOnly bool
}

// psql builds statements with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildWhere maps persisted field names onto columns. Field names outside the
// persisted format are rejected rather than silently matching nothing.
func buildWhere(columns map[string]string, where map[string]interface{}) (sq.And, error) {
	conds := make(sq.And, 0, len(where))
	for field, value := range where {
		column, ok := columns[field]
		if !ok {
			return nil, apierror.BadRequest(fmt.Sprintf("unknown filter field %q", field))
		}
		conds = append(conds, sq.Eq{column: value})
	}
	return conds, nil
}

func applyOptions(builder sq.SelectBuilder, columns map[string]string, opts QueryOptions) (sq.SelectBuilder, error) {
	if len(opts.Where) > 0 {
		conds, err := buildWhere(columns, opts.Where)
		if err != nil {
			return builder, err
		}
		builder = builder.Where(conds)
	}
	for _, sort := range opts.Sort {
		column, ok := columns[sort.Field]
		if !ok {
			return builder, apierror.BadRequest(fmt.Sprintf("unknown sort field %q", sort.Field))
		}
		direction := "ASC"
		if sort.Desc {
			direction = "DESC"
		}
		builder = builder.OrderBy(column + " " + direction)
	}
	if opts.Skip > 0 {
		builder = builder.Offset(opts.Skip)
	}
	if opts.Limit != nil {
		builder = builder.Limit(*opts.Limit)
	}
	return builder, nil
}
