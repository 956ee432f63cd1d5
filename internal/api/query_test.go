package api

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llamaio/task-api/internal/repository"
)

func TestParseQueryOptions(t *testing.T) {
	t.Run("parses where sort skip and limit", func(t *testing.T) {
		query := url.Values{}
		query.Set("where", `{"completed": false}`)
		query.Set("sort", `{"deadline": 1, "name": -1}`)
		query.Set("skip", "5")
		query.Set("limit", "20")

		opts, err := ParseQueryOptions(query, QueryDefaults{})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"completed": false}, opts.Store.Where)
		assert.Equal(t, []repository.SortField{
			{Field: "deadline", Desc: false},
			{Field: "name", Desc: true},
		}, opts.Store.Sort)
		assert.Equal(t, uint64(5), opts.Store.Skip)
		require.NotNil(t, opts.Store.Limit)
		assert.Equal(t, uint64(20), *opts.Store.Limit)
	})

	t.Run("default limit applies when absent", func(t *testing.T) {
		opts, err := ParseQueryOptions(url.Values{}, QueryDefaults{DefaultLimit: 100})
		require.NoError(t, err)
		require.NotNil(t, opts.Store.Limit)
		assert.Equal(t, uint64(100), *opts.Store.Limit)
	})

	t.Run("explicit limit beats the default", func(t *testing.T) {
		query := url.Values{}
		query.Set("limit", "3")
		opts, err := ParseQueryOptions(query, QueryDefaults{DefaultLimit: 100})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), *opts.Store.Limit)
	})

	t.Run("count drops limit sort and select", func(t *testing.T) {
		query := url.Values{}
		query.Set("count", "true")
		query.Set("limit", "3")
		query.Set("sort", `{"name": 1}`)
		query.Set("select", `{"name": 1}`)

		opts, err := ParseQueryOptions(query, QueryDefaults{DefaultLimit: 100})
		require.NoError(t, err)
		assert.True(t, opts.CountOnly)
		assert.Nil(t, opts.Store.Limit)
		assert.Nil(t, opts.Store.Sort)
		assert.Nil(t, opts.Select)
	})

	t.Run("invalid JSON in where", func(t *testing.T) {
		query := url.Values{}
		query.Set("where", `{broken`)
		_, err := ParseQueryOptions(query, QueryDefaults{})
		require.Error(t, err)
	})

	t.Run("negative skip is rejected", func(t *testing.T) {
		query := url.Values{}
		query.Set("skip", "-1")
		_, err := ParseQueryOptions(query, QueryDefaults{})
		require.Error(t, err)
	})
}

func TestProjection(t *testing.T) {
	type record struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Mail string `json:"email"`
	}
	rec := record{ID: "1", Name: "Alice", Mail: "a@b.c"}

	t.Run("include mode keeps id by default", func(t *testing.T) {
		p := toProjection(map[string]interface{}{"name": float64(1)})
		out, err := p.Apply(rec)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"id": "1", "name": "Alice"}, out)
	})

	t.Run("include mode can exclude id", func(t *testing.T) {
		p := toProjection(map[string]interface{}{"name": float64(1), "id": float64(0)})
		out, err := p.Apply(rec)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"name": "Alice"}, out)
	})

	t.Run("exclude mode drops listed fields", func(t *testing.T) {
		p := toProjection(map[string]interface{}{"email": float64(0)})
		out, err := p.Apply(rec)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"id": "1", "name": "Alice"}, out)
	})

	t.Run("applies across a slice", func(t *testing.T) {
		p := toProjection(map[string]interface{}{"name": float64(1)})
		out, err := p.ApplyAll([]record{rec, {ID: "2", Name: "Bob"}})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Bob", out[1]["name"])
	})
}
