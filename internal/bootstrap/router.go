package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/projecthubv3/projecthub-backend/internal/api/http"
	"github.com/projecthubv3/projecthub-backend/internal/api/http/middleware"
	"github.com/projecthubv3/projecthub-backend/internal/api/http/routes"
	projectshttp "github.com/projecthubv3/projecthub-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	DB          *sql.DB
	Redis       *goredis.Client
	Projects    projectshttp.ProjectService
	Log         *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	var dbPing, cachePing httpapi.PingFunc
	if dep.DB != nil {
		dbPing = dep.DB.PingContext
	}
	if dep.Redis != nil {
		cachePing = func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() }
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dbPing, cachePing)
	healthHandler.RegisterRoutes(r)

	routes.RegisterAPI(r, routes.APIDeps{
		Projects: projectshttp.New(dep.Projects, dep.Log),
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
