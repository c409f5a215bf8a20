package domain_test

import (
	"errors"
	"testing"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuery_Values(t *testing.T) {
	t.Run("stringifies every field and passes empty filters through", func(t *testing.T) {
		v := domain.DefaultQuery().Values()

		assert.Equal(t, "1", v.Get("page"))
		assert.Equal(t, "24", v.Get("limit"))
		assert.Equal(t, "name", v.Get("sortBy"))
		assert.Equal(t, "asc", v.Get("sortOrder"))
		for _, key := range []string{"search", "type", "status", "hasFeatures", "hasMarket"} {
			require.Contains(t, v, key)
			assert.Equal(t, "", v.Get(key), key)
		}
	})

	t.Run("sends a concrete type unchanged", func(t *testing.T) {
		q := domain.DefaultQuery()
		q.Type = "web-app"
		assert.Equal(t, "web-app", q.Values().Get("type"))
	})
}

func TestListQuery_Validate(t *testing.T) {
	valid := domain.DefaultQuery()
	require.NoError(t, valid.Validate())

	cases := map[string]func(q *domain.ListQuery){
		"page zero":        func(q *domain.ListQuery) { q.Page = 0 },
		"limit zero":       func(q *domain.ListQuery) { q.PageSize = 0 },
		"unknown status":   func(q *domain.ListQuery) { q.Status = "archived" },
		"bad hasFeatures":  func(q *domain.ListQuery) { q.HasFeat = "maybe" },
		"bad hasMarket":    func(q *domain.ListQuery) { q.HasMarket = "true" },
		"unknown sortBy":   func(q *domain.ListQuery) { q.SortBy = "size" },
		"unknown ordering": func(q *domain.ListQuery) { q.SortOrder = "up" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := domain.DefaultQuery()
			mutate(&q)
			err := q.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
		})
	}
}

func TestBaseType(t *testing.T) {
	assert.Equal(t, "api-service", domain.BaseType("api-service-city-service"))
	assert.Equal(t, "web-app", domain.BaseType("web-app"))
	assert.Equal(t, "game", domain.BaseType("game"))
}

func TestProject_CreatedTime(t *testing.T) {
	assert.True(t, domain.Project{}.CreatedTime().IsZero())
	assert.True(t, domain.Project{CreatedAt: "yesterday"}.CreatedTime().IsZero())
	assert.Equal(t, 2024, domain.Project{CreatedAt: "2024-03-01T10:00:00Z"}.CreatedTime().Year())
	assert.Equal(t, 2023, domain.Project{CreatedAt: "2023-12-31"}.CreatedTime().Year())
}

func TestFeaturesAndMarket(t *testing.T) {
	var f *domain.Features
	assert.Equal(t, 0, f.Total())
	assert.Equal(t, 5, (&domain.Features{Core: 3, Advanced: 2}).Total())

	var m *domain.Market
	assert.False(t, m.Known())
	assert.False(t, (&domain.Market{}).Known())
	assert.True(t, (&domain.Market{SAM: "$1B"}).Known())
}
