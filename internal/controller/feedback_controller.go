package controller

import (
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	FeedbackService *service.FeedbackService
}

func NewFeedbackController(feedbackService *service.FeedbackService) *FeedbackController {
	return &FeedbackController{FeedbackService: feedbackService}
}

// @Summary 获取反馈
// @Description 返回反馈、参考答案和用时
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param answerId path int true "作答ID"
// @Success 200 {object} util.Response{data=model.FeedbackDetail}
// @Router /api/feedback/{answerId} [get]
func (c *FeedbackController) GetFeedback(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	answerID, ok := pathID(ctx, "answerId")
	if !ok {
		return
	}

	detail, err := c.FeedbackService.GetFeedback(ctx.Request.Context(), userID, answerID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 重新生成反馈
// @Description 对已保存的作答重新评分，整体替换原反馈
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param answerId path int true "作答ID"
// @Success 200 {object} util.Response{data=model.Feedback}
// @Router /api/feedback/{answerId}/regenerate [post]
func (c *FeedbackController) Regenerate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	answerID, ok := pathID(ctx, "answerId")
	if !ok {
		return
	}

	feedback, err := c.FeedbackService.Regenerate(ctx.Request.Context(), userID, answerID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}
