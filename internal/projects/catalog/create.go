package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

const (
	MetadataFile     = "project.json"
	RequirementsFile = "requirements.md"

	// StatusStepZeroComplete is the pipeline status written for a new project.
	StatusStepZeroComplete = "step-0-complete"
	pipelineSteps          = 8
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace  = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// metadata is project.json, written on creation and read back by the scanner.
type metadata struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"createdAt"`
	Pipeline    pipeline `json:"pipeline"`
}

type pipeline struct {
	CurrentStep  int                  `json:"currentStep"`
	LastExecuted string               `json:"lastExecuted"`
	Steps        map[string]stepState `json:"steps"`
}

type stepState struct {
	Status      string `json:"status"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// NewProjectID builds "cvp-<type>-<name>" from the slugs of type and name.
func NewProjectID(name, typ string) (string, error) {
	n, t := slug(name), slug(typ)
	if n == "" || t == "" {
		return "", fmt.Errorf("%w: name and type need letters or digits", domain.ErrInvalidProject)
	}
	id := DirPrefix + t + "-" + n
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Create lays out a new project directory: ai-generated/, requirements.md
// and project.json. An existing directory yields ErrAlreadyExists and is
// left untouched.
func (s *Scanner) Create(in domain.NewProject) (*domain.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := NewProjectID(in.Name, in.Type)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("create projects dir: %w", err)
	}
	dir := filepath.Join(s.root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, id)
		}
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	if err := writeLayout(dir, id, in, time.Now().UTC()); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.log.Warn("cleanup after failed create", zap.String("id", id), zap.Error(rmErr))
		}
		return nil, err
	}
	return s.read(id)
}

func writeLayout(dir, id string, in domain.NewProject, now time.Time) error {
	if err := os.Mkdir(filepath.Join(dir, GeneratedDir), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", GeneratedDir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, RequirementsFile), []byte(in.Requirements), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", RequirementsFile, err)
	}

	stamp := now.Format(time.RFC3339)
	steps := make(map[string]stepState, pipelineSteps+1)
	steps["0"] = stepState{Status: "completed", CompletedAt: stamp}
	for i := 1; i <= pipelineSteps; i++ {
		steps[strconv.Itoa(i)] = stepState{Status: "pending"}
	}
	meta := metadata{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Type:        slug(in.Type),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusStepZeroComplete,
		CreatedAt:   stamp,
		Pipeline:    pipeline{LastExecuted: stamp, Steps: steps},
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", MetadataFile, err)
	}
	return nil
}

// readMetadata returns nil when project.json is absent or unreadable.
func (s *Scanner) readMetadata(id string) *metadata {
	data, err := os.ReadFile(filepath.Join(s.root, id, MetadataFile))
	if err != nil {
		return nil
	}
	var m metadata
	if err := json.Unmarshal(data, &m); err != nil {
		s.log.Debug("project.json malformed", zap.String("id", id), zap.Error(err))
		return nil
	}
	return &m
}

func applyMetadata(p *domain.Project, m *metadata) {
	if m.Name != "" {
		p.Name = m.Name
	}
	if m.Type != "" {
		p.Type = m.Type
	}
	if m.Description != "" {
		p.Description = m.Description
	}
	if m.CreatedAt != "" {
		p.CreatedAt = m.CreatedAt
	}
}
