package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	resp := healthResponse{
		Status:      "ok",
		Database:    "ok",
		Cache:       "disabled",
		Environment: h.cfg.Environment,
	}

	if err := h.pingDatabase(ctx); err != nil {
		h.log.Error().Err(err).Msg("database ping failed")
		resp.Status = "degraded"
		resp.Database = "error"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			h.log.Error().Err(err).Msg("redis ping failed")
			resp.Cache = "error"
		}
	}

	c.JSON(status, resp)
}

func (h HandlerSet) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
