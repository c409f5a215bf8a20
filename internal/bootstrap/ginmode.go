package bootstrap

import (
	"os"

	"github.com/gin-gonic/gin"
)

// SetGinMode maps APP_ENV onto a gin mode. An explicit GIN_MODE wins.
func SetGinMode(env string) {
	if os.Getenv(gin.EnvGinMode) != "" {
		return
	}
	switch env {
	case "production", "staging":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
