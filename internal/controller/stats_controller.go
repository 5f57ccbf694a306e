package controller

import (
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService       *service.StatsService
	LeaderboardService *service.LeaderboardService
}

func NewStatsController(statsService *service.StatsService, leaderboardService *service.LeaderboardService) *StatsController {
	return &StatsController{StatsService: statsService, LeaderboardService: leaderboardService}
}

// @Summary 个人总览
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StatsOverview}
// @Router /api/stats/overview [get]
func (c *StatsController) Overview(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	overview, err := c.StatsService.Overview(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 分类统计
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CategoryStat}
// @Router /api/stats/by-category [get]
func (c *StatsController) ByCategory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	stats, err := c.StatsService.ByCategory(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 近 30 天趋势
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TrendPoint}
// @Router /api/stats/progress [get]
func (c *StatsController) Progress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	points, err := c.StatsService.ProgressTrend(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, points)
}

// @Summary 薄弱项
// @Description 平均分低于 6 的分类，从低到高
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CategoryStat}
// @Router /api/stats/weak-areas [get]
func (c *StatsController) WeakAreas(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	weak, err := c.StatsService.WeakAreas(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, weak)
}

// @Summary 得分排行榜
// @Description 窗口内至少 3 次作答才上榜，取前 10
// @Tags 排行榜
// @Produce json
// @Security ApiKeyAuth
// @Param period query string false "时间窗口" Enums(week, month, all)
// @Success 200 {object} util.Response{data=[]model.LeaderboardEntry}
// @Router /api/leaderboard [get]
func (c *StatsController) Leaderboard(ctx *gin.Context) {
	period, err := service.ParsePeriod(ctx.Query("period"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	entries, err := c.LeaderboardService.Leaderboard(ctx.Request.Context(), period)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 连续打卡排行榜
// @Tags 排行榜
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.StreakEntry}
// @Router /api/leaderboard/streaks [get]
func (c *StatsController) StreakLeaderboard(ctx *gin.Context) {
	entries, err := c.LeaderboardService.StreakLeaderboard(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
