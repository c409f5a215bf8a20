package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project is a single catalog entry as served by GET /api/projects.
// JSON names follow the console contract (camelCase).
type Project struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	HasSpecification  bool      `json:"hasSpecification"`
	HasMarketEnhanced bool      `json:"hasMarketEnhanced"`
	CreatedAt         string    `json:"createdAt,omitempty"`
	Features          *Features `json:"features,omitempty"`
	Market            *Market   `json:"market,omitempty"`
}

type Features struct {
	Core     int `json:"core"`
	Advanced int `json:"advanced"`
}

// Total is core+advanced; a nil receiver counts as zero.
func (f *Features) Total() int {
	if f == nil {
		return 0
	}
	return f.Core + f.Advanced
}

type Market struct {
	TAM string `json:"tam,omitempty"`
	SAM string `json:"sam,omitempty"`
}

// Known reports whether at least one market figure is present.
func (m *Market) Known() bool {
	return m != nil && (m.TAM != "" || m.SAM != "")
}

// CreatedTime parses CreatedAt, returning the zero time when it is missing or malformed.
func (p Project) CreatedTime() time.Time {
	if p.CreatedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, p.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Stats aggregates the whole catalog, independent of the active filters.
type Stats struct {
	Total              int `json:"total"`
	WithSpecification  int `json:"withSpecification"`
	WithMarketEnhanced int `json:"withMarketEnhanced"`
}

// ListResult is one page of the catalog plus the metadata needed to render filters.
type ListResult struct {
	Projects     []Project `json:"projects"`
	Total        int       `json:"total"`
	Page         int       `json:"page"`
	Limit        int       `json:"limit"`
	TotalPages   int       `json:"totalPages"`
	ProjectTypes []string  `json:"projectTypes"`
	Stats        Stats     `json:"stats"`
}

// NewProject is the payload of POST /api/projects/step0.
type NewProject struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

// Validate reports ErrInvalidProject when a required field is blank.
func (n NewProject) Validate() error {
	var missing []string
	if strings.TrimSpace(n.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(n.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(n.Requirements) == "" {
		missing = append(missing, "requirements")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidProject, strings.Join(missing, ", "))
	}
	return nil
}
