package controller

import (
	"context"

	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuestionRecomputer 全量重算题目统计
type QuestionRecomputer interface {
	RefreshAll(ctx context.Context) (int, error)
}

type AdminController struct {
	Recomputer QuestionRecomputer
}

func NewAdminController(recomputer QuestionRecomputer) *AdminController {
	return &AdminController{Recomputer: recomputer}
}

// @Summary 重算题目统计
// @Description 从作答记录全量重算所有上线题目的作答次数和平均分
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/admin/questions/recompute [post]
func (c *AdminController) RecomputeQuestions(ctx *gin.Context) {
	count, err := c.Recomputer.RefreshAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"recomputed": count})
}
