// internal/api/api.go
package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/retail-ars/internal/api/handlers"
	"github.com/andresuchdata/retail-ars/internal/api/middleware"
	"github.com/andresuchdata/retail-ars/internal/config"
	"github.com/andresuchdata/retail-ars/internal/service"
)

// NewRouter wires the analytics API.
func NewRouter(cfg *config.Config, metrics *service.MetricsService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.Logger(), middleware.Recovery())

	corsCfg := cors.DefaultConfig()
	origins := normalizeAllowedOrigins(cfg.Server.AllowedOrigins)
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := handlers.NewMetricsHandler(metrics)
	v1 := r.Group("/api/v1")
	{
		ars := v1.Group("/ars")
		{
			ars.GET("/summary", h.GetSummary)
			ars.GET("/items", h.GetItems)
			ars.GET("/channels", h.GetChannels)
		}
	}
	return r
}

// normalizeAllowedOrigins trims whitespace and trailing slashes so values
// from env like "https://a.example/, https://b.example" behave.
func normalizeAllowedOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		o = strings.TrimSuffix(o, "/")
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}
