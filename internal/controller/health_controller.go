package controller

import (
	"context"
	"net/http"
	"time"

	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// OracleStatus 评分服务是否已配置
type OracleStatus interface {
	Configured() bool
}

type HealthController struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Oracle OracleStatus
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, oracle OracleStatus) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Oracle: oracle}
}

// @Summary 健康检查
// @Description 检查数据库、Redis，并报告评分服务是否处于兜底模式
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{}

	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	if err := sqlDB.PingContext(reqCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	components["database"] = "up"

	if c.Redis != nil {
		if err := c.Redis.Ping(reqCtx).Err(); err != nil {
			components["redis"] = "down"
		} else {
			components["redis"] = "up"
		}
	} else {
		components["redis"] = "disabled"
	}

	if c.Oracle != nil && c.Oracle.Configured() {
		components["scoring"] = "oracle"
	} else {
		components["scoring"] = "fallback"
	}

	if version, err := util.GetFFmpegVersion(); err == nil {
		components["ffmpeg"] = version
	} else {
		components["ffmpeg"] = "missing"
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
