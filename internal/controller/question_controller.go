package controller

import (
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// @Summary 题目列表
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "分类"
// @Param difficulty query string false "难度"
// @Param tags query string false "标签，逗号分隔，命中任一即可"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, limit := pagination(ctx)
	questions, total, err := c.QuestionService.ListQuestions(ctx.Request.Context(),
		model.QuestionCategory(ctx.Query("category")),
		model.Difficulty(ctx.Query("difficulty")),
		util.SplitList(ctx.Query("tags")),
		page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, questions, total, page, limit)
}

// @Summary 每日一题
// @Description 同一天内所有用户看到同一道题
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param date query string false "日期 YYYY-MM-DD，默认今天"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/daily [get]
func (c *QuestionController) DailyQuestion(ctx *gin.Context) {
	var day time.Time
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(util.DateFormat, raw, c.QuestionService.Location)
		if err != nil {
			util.BadRequest(ctx, "invalid date")
			return
		}
		day = parsed
	}

	question, err := c.QuestionService.SelectDailyQuestion(ctx.Request.Context(), day)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 随机抽题
// @Description 不放回地随机抽取，题库不足时返回全部可用题目
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param count query int false "数量 1-50，默认 5"
// @Param category query string false "分类"
// @Param difficulty query string false "难度，mixed 表示不限"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/questions/random [get]
func (c *QuestionController) RandomQuestions(ctx *gin.Context) {
	count := util.ParseIntDefault(ctx.Query("count"), service.DefaultRandomCount)
	questions, err := c.QuestionService.SelectRandomQuestions(ctx.Request.Context(), count,
		model.QuestionCategory(ctx.Query("category")),
		model.Difficulty(ctx.Query("difficulty")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary 题目详情
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	question, err := c.QuestionService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}
