package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthubv3/projecthub-backend/internal/logging"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	var params listParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	res, err := h.svc.List(c.Request.Context(), params.query())
	if err != nil {
		h.fail(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get_project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete_project", err)
		return
	}
	c.JSON(http.StatusOK, deleteResponse{Success: true, Message: "Project deleted successfully"})
}

// create handles step 0 of the pipeline: a project directory with its
// requirements and metadata.
func (h *Handler) create(c *gin.Context) {
	var in domain.NewProject
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create_project", err)
		return
	}
	c.JSON(http.StatusCreated, createResponse{
		Success:   true,
		ProjectID: p.ID,
		Message:   "Project created successfully",
		Project:   p,
	})
}

func (h *Handler) refresh(c *gin.Context) {
	n, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, "refresh_catalog", err)
		return
	}
	c.JSON(http.StatusOK, refreshResponse{Success: true, Count: n})
}

// fail maps service errors onto status codes. Internal errors are logged and
// not echoed to the caller.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, domain.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidProject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.log).LogError(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + failVerb(op)})
	}
}

func failVerb(op string) string {
	switch op {
	case "list_projects":
		return "fetch projects"
	case "get_project":
		return "fetch project"
	case "delete_project":
		return "delete project"
	case "create_project":
		return "create project"
	default:
		return "refresh catalog"
	}
}
