package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/svirin/newswatch/app/database"
	"github.com/svirin/newswatch/app/dedup"
	"github.com/svirin/newswatch/app/sources"
	"github.com/svirin/newswatch/app/tasks"
)

func NewHandler(configCache *sources.ConfigCache, postRepo database.PostRepository,
	cache *dedup.Cache, registry *tasks.Registry, version string) *Handler {
	return &Handler{
		configCache: configCache,
		postRepo:    postRepo,
		cache:       cache,
		registry:    registry,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"sources":          h.registry.Snapshot(),
		"dedup_cache_size": h.cache.Count(),
	}

	if postCount, err := h.postRepo.GetPostCount(c.Request.Context()); err == nil {
		stats["delivered_posts"] = postCount
	}

	c.JSON(http.StatusOK, stats)
}
