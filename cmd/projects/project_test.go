package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

func TestRunCreate(t *testing.T) {
	var got domain.NewProject
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/step0", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"projectId":"cvp-saas-tool-invoice-hub","project":{"id":"cvp-saas-tool-invoice-hub"}}`))
	})

	reqs := filepath.Join(t.TempDir(), "requirements.md")
	require.NoError(t, os.WriteFile(reqs, []byte("# Invoices"), 0o644))

	var out bytes.Buffer
	err := runCreate(context.Background(), strings.NewReader(""), &out, createFlags{
		name: "Invoice Hub", typ: "saas-tool", requirements: reqs,
	})
	require.NoError(t, err)
	assert.Equal(t, "# Invoices", got.Requirements)
	assert.Equal(t, "created cvp-saas-tool-invoice-hub\n", out.String())
}

func TestRunCreate_RequirementsFromStdin(t *testing.T) {
	var got domain.NewProject
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"projectId":"cvp-mobile-app-runner","project":{"id":"cvp-mobile-app-runner"}}`))
	})

	err := runCreate(context.Background(), strings.NewReader("# Runner"), &bytes.Buffer{}, createFlags{
		name: "Runner", typ: "mobile-app", requirements: "-",
	})
	require.NoError(t, err)
	assert.Equal(t, "# Runner", got.Requirements)
}

func TestRunCreate_EmptyRequirements(t *testing.T) {
	setupCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	err := runCreate(context.Background(), strings.NewReader("  "), &bytes.Buffer{}, createFlags{
		name: "Runner", typ: "mobile-app", requirements: "-",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
}
