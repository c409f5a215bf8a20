package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

// ProjectService is what the handlers need from the service layer.
type ProjectService interface {
	List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	Create(ctx context.Context, in domain.NewProject) (*domain.Project, error)
	Refresh(ctx context.Context) (int, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc ProjectService
	log *zap.Logger
}

func New(svc ProjectService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// listParams mirrors the query string of GET /api/projects. Empty values
// mean "use the default".
type listParams struct {
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	Search      string `form:"search"`
	Type        string `form:"type"`
	Status      string `form:"status"`
	HasFeatures string `form:"hasFeatures"`
	HasMarket   string `form:"hasMarket"`
	SortBy      string `form:"sortBy"`
	SortOrder   string `form:"sortOrder"`
}

func (p listParams) query() domain.ListQuery {
	q := domain.ListQuery{
		Page:      p.Page,
		PageSize:  p.Limit,
		Search:    p.Search,
		Type:      p.Type,
		Status:    p.Status,
		HasFeat:   p.HasFeatures,
		HasMarket: p.HasMarket,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = domain.DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortByName
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortAsc
	}
	return q
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type refreshResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type createResponse struct {
	Success   bool            `json:"success"`
	ProjectID string          `json:"projectId"`
	Message   string          `json:"message"`
	Project   *domain.Project `json:"project"`
}
