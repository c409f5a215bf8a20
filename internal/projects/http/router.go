package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("/refresh", h.refresh)
	rg.POST("/step0", h.create)
	rg.GET("/:id", h.get)
	rg.DELETE("/:id", h.delete)
}
