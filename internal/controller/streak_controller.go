package controller

import (
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StreakController struct {
	StreakService *service.StreakService
}

func NewStreakController(streakService *service.StreakService) *StreakController {
	return &StreakController{StreakService: streakService}
}

// @Summary 打卡
// @Description 每个自然日只计一次，重复调用返回当前值
// @Tags 连续打卡
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StreakStatus}
// @Router /api/streak/check-in [post]
func (c *StreakController) CheckIn(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	status, err := c.StreakService.CheckIn(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary 连续打卡状态
// @Tags 连续打卡
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StreakStatus}
// @Router /api/streak [get]
func (c *StreakController) GetStreak(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	status, err := c.StreakService.GetStreak(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}
