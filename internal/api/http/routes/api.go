package routes

import (
	"github.com/gin-gonic/gin"

	projectshttp "github.com/projecthubv3/projecthub-backend/internal/projects/http"
)

type APIDeps struct {
	Projects *projectshttp.Handler
}

// RegisterAPI mounts the public API. /api/v1 is kept as an alias of /api.
func RegisterAPI(r *gin.Engine, dep APIDeps) {
	for _, prefix := range []string{"/api", "/api/v1"} {
		api := r.Group(prefix)
		dep.Projects.Register(api.Group("/projects"))
	}
}
