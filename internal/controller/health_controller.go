package controller

import (
	"context"
	"lms_console_backend/internal/service"
	"lms_console_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HealthController struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Storage *service.StorageService
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, storage *service.StorageService) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Storage: storage}
}

type HealthReport struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// @Summary 健康检查
// @Description 数据库不可用时返回 503；缓存只影响 components 字段
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response{data=HealthReport}
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := c.DB.DB()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	report := HealthReport{
		Status:     "ok",
		Components: map[string]string{"database": "up", "cache": "disabled", "archive": "disabled"},
	}
	if c.Redis != nil {
		report.Components["cache"] = "up"
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			report.Components["cache"] = "down"
			report.Status = "degraded"
		}
	}
	if c.Storage != nil {
		report.Components["archive"] = c.Storage.Backend
	}

	util.Success(ctx, report)
}
