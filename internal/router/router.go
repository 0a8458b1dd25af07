package router

import (
	"github.com/gin-gonic/gin"

	"github.com/seiflotfy/huffpack/internal/handler"
)

type Dependencies struct {
	CompressionHandler *handler.CompressionHandler
}

func Register(r *gin.Engine, d Dependencies) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/compress", d.CompressionHandler.Compress)
		v1.POST("/decompress", d.CompressionHandler.Decompress)
		v1.POST("/codebook", d.CompressionHandler.Codebook)
	}
}
