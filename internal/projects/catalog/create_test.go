package catalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthubv3/projecthub-backend/internal/projects/catalog"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

func TestNewProjectID(t *testing.T) {
	id, err := catalog.NewProjectID("  Invoice Hub 2.0! ", "SaaS Tool")
	require.NoError(t, err)
	assert.Equal(t, "cvp-saas-tool-invoice-hub-20", id)

	id, err = catalog.NewProjectID("a -- b", "web-app")
	require.NoError(t, err)
	assert.Equal(t, "cvp-web-app-a-b", id)

	_, err = catalog.NewProjectID("!!!", "web-app")
	assert.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = catalog.NewProjectID("../../etc", "web-app")
	require.NoError(t, err, "dots and slashes are stripped")
}

func TestScanner_Create(t *testing.T) {
	root := filepath.Join(t.TempDir(), "projects")
	s := catalog.NewScanner(root, 0, nil)

	p, err := s.Create(domain.NewProject{
		Name:         "Invoice Hub",
		Type:         "saas-tool",
		Description:  "Send invoices",
		Requirements: "# Requirements\n- invoices\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "cvp-saas-tool-invoice-hub", p.ID)
	assert.Equal(t, "Invoice Hub", p.Name)
	assert.Equal(t, "saas-tool", p.Type)
	assert.Equal(t, "Send invoices", p.Description)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.NotEmpty(t, p.CreatedAt)

	dir := filepath.Join(root, p.ID)
	info, err := os.Stat(filepath.Join(dir, catalog.GeneratedDir))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	req, err := os.ReadFile(filepath.Join(dir, catalog.RequirementsFile))
	require.NoError(t, err)
	assert.Equal(t, "# Requirements\n- invoices\n", string(req))

	raw, err := os.ReadFile(filepath.Join(dir, catalog.MetadataFile))
	require.NoError(t, err)
	var meta struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Pipeline struct {
			CurrentStep int `json:"currentStep"`
			Steps       map[string]struct {
				Status string `json:"status"`
			} `json:"steps"`
		} `json:"pipeline"`
	}
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, p.ID, meta.ID)
	assert.Equal(t, catalog.StatusStepZeroComplete, meta.Status)
	assert.Len(t, meta.Pipeline.Steps, 9)
	assert.Equal(t, "completed", meta.Pipeline.Steps["0"].Status)
	assert.Equal(t, "pending", meta.Pipeline.Steps["8"].Status)

	scanned, err := s.Read(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Invoice Hub", scanned.Name)
}

func TestScanner_CreateConflict(t *testing.T) {
	root := t.TempDir()
	s := catalog.NewScanner(root, 0, nil)
	in := domain.NewProject{Name: "Runner", Type: "mobile-app", Requirements: "run"}

	_, err := s.Create(in)
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "cvp-mobile-app-runner", catalog.RequirementsFile), "edited")

	_, err = s.Create(in)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := os.ReadFile(filepath.Join(root, "cvp-mobile-app-runner", catalog.RequirementsFile))
	require.NoError(t, err)
	assert.Equal(t, "edited", string(got), "existing project is not overwritten")
}

func TestScanner_CreateMissingFields(t *testing.T) {
	root := t.TempDir()
	s := catalog.NewScanner(root, 0, nil)

	_, err := s.Create(domain.NewProject{Name: "Runner", Type: "mobile-app"})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
	assert.ErrorContains(t, err, "requirements")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
