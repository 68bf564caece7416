package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
)

func TestPage_WithAppended(t *testing.T) {
	page := &models.Page[models.Notification]{
		Items: []models.Notification{{ID: "n1"}},
		Total: 1,
	}

	next, ok := page.WithAppended(models.Notification{ID: "n2"})
	require.True(t, ok)
	appended := next.(*models.Page[models.Notification])
	require.Equal(t, 2, appended.Total)
	require.Equal(t, "n2", appended.Items[1].ID)

	// Original snapshot untouched.
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	// Wrong element type is refused.
	_, ok = page.WithAppended(models.Patient{ID: "p1"})
	require.False(t, ok)
}

func TestPage_WithoutID(t *testing.T) {
	page := &models.Page[models.Patient]{
		Items: []models.Patient{{ID: "p1"}, {ID: "p2"}, {ID: "p1"}},
		Total: 3,
	}

	next, ok := page.WithoutID("p1")
	require.True(t, ok)
	pruned := next.(*models.Page[models.Patient])
	require.Equal(t, 1, pruned.Total)
	require.Equal(t, "p2", pruned.Items[0].ID)
	require.Len(t, page.Items, 3, "original snapshot untouched")

	_, ok = pruned.WithoutID("missing")
	require.False(t, ok)
}

func TestListParams_CacheKeyDeterministic(t *testing.T) {
	a := models.ListParams{Page: 2, Limit: 10, Search: "kofi", Filters: map[string]string{"b": "2", "a": "1"}}
	b := models.ListParams{Page: 2, Limit: 10, Search: "kofi", Filters: map[string]string{"a": "1", "b": "2"}}

	require.Equal(t, a.CacheKey(), b.CacheKey())
	require.Equal(t, "a=1&b=2&limit=10&page=2&search=kofi", a.CacheKey())
	require.Equal(t, "all", models.ListParams{}.CacheKey())
}
