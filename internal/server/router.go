package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the handler set and the optional static image
// directory into router construction.
type RouterConfig struct {
	Images    *ImageHandler
	StaticDir string
}

// NewRouter wires all routes. CORS is allow-all: the API is fronted by the
// ad studio frontend during development and by a gateway in production.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"*"}
	corsCfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Ad Creative Generation Studio API"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}

	api := r.Group("/api/v1/images")
	{
		api.POST("/generate", cfg.Images.Generate)
		api.POST("/generate/stream", cfg.Images.GenerateStream)
		api.POST("/modify", cfg.Images.Modify)
		api.GET("/styles", cfg.Images.Styles)
		api.GET("/request/:sessionId", cfg.Images.GetSession)
		api.DELETE("/request/:sessionId", cfg.Images.DeleteSession)
	}

	return r
}
