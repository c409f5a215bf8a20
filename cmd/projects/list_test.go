package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/projecthubv3/projecthub-backend/config"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

func setupCLI(t *testing.T, h http.HandlerFunc) {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg = &config.Config{Client: config.ClientConfig{
		BaseURL:  srv.URL,
		Timeout:  time.Second,
		Debounce: time.Hour,
	}}
	logger = zap.NewNop()
}

func TestRunList(t *testing.T) {
	var queries []string
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "48", q.Get("limit"))
		assert.Equal(t, "saas-tool", q.Get("type"))
		assert.Equal(t, "desc", q.Get("sortOrder"))
		_ = json.NewEncoder(w).Encode(domain.ListResult{
			Projects:     []domain.Project{{ID: "cvp-saas-tool-49", Name: "Billing", Type: "saas-tool", Status: "pending"}},
			Total:        49,
			Page:         2,
			Limit:        48,
			TotalPages:   2,
			ProjectTypes: []string{"saas-tool"},
		})
	})

	var out bytes.Buffer
	err := runList(&out, listFlags{
		page: 2, size: 48, typ: "saas-tool", sortBy: domain.SortByName, order: domain.SortDesc,
	})
	require.NoError(t, err)

	assert.Len(t, queries, 1)
	assert.Contains(t, out.String(), "cvp-saas-tool-49")
	assert.Contains(t, out.String(), "Showing 49 to 49 of 49 projects (page 2 of 2)")
}

func TestRunList_InvalidFlag(t *testing.T) {
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	err := runList(&bytes.Buffer{}, listFlags{page: 1, size: 30, typ: domain.TypeAll, sortBy: domain.SortByName, order: domain.SortAsc})
	assert.Error(t, err)
}

func TestRunList_ServerError(t *testing.T) {
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid project ID"}`, http.StatusBadRequest)
	})

	err := runList(&bytes.Buffer{}, listFlags{page: 1, size: 24, typ: domain.TypeAll, sortBy: domain.SortByName, order: domain.SortAsc})
	assert.ErrorContains(t, err, "400")
}

func TestRunList_PagePastEndShowsLastPage(t *testing.T) {
	var pages []string
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		res := domain.ListResult{
			Projects:     []domain.Project{},
			Total:        49,
			Limit:        48,
			TotalPages:   2,
			ProjectTypes: []string{"saas-tool"},
		}
		switch page {
		case "99":
			res.Page = 99
		case "2":
			res.Page = 2
			res.Projects = []domain.Project{{ID: "cvp-saas-tool-49", Name: "Billing", Type: "saas-tool", Status: "pending"}}
		default:
			t.Errorf("unexpected page %q", page)
		}
		_ = json.NewEncoder(w).Encode(res)
	})

	var out bytes.Buffer
	err := runList(&out, listFlags{page: 99, size: 48, typ: domain.TypeAll, sortBy: domain.SortByName, order: domain.SortAsc})
	require.NoError(t, err)

	assert.Equal(t, []string{"99", "2"}, pages)
	assert.Contains(t, out.String(), "cvp-saas-tool-49")
	assert.Contains(t, out.String(), "Showing 49 to 49 of 49 projects (page 2 of 2)")
}
