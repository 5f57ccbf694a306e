package controller

import (
	"io"
	"strconv"

	"prepace_backend/internal/repository"
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

type SelfRatingRequest struct {
	Rating int `json:"rating"`
}

// @Summary 提交作答
// @Description 评分后保存作答并更新题目统计。评分服务不可用时返回兜底反馈
// @Tags 作答
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.SubmitAnswerInput true "作答内容"
// @Success 201 {object} util.Response{data=model.Answer}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/answers [post]
func (c *AnswerController) SubmitAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.SubmitAnswerInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "invalid request body")
		return
	}

	answer, err := c.AnswerService.SubmitAnswer(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, answer)
}

// @Summary 提交语音作答
// @Description 上传录音和转写文本，录音时长由 ffprobe 读取
// @Tags 作答
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param recording formData file true "录音文件"
// @Param sessionId formData int true "会话ID"
// @Param questionId formData int true "题目ID"
// @Param answerText formData string false "转写文本"
// @Param timeTaken formData int false "用时（秒）"
// @Param timeLimit formData int false "时限（秒）"
// @Param timedOut formData bool false "是否超时"
// @Success 201 {object} util.Response{data=model.Answer}
// @Router /api/answers/voice [post]
func (c *AnswerController) SubmitVoiceAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	header, err := ctx.FormFile("recording")
	if err != nil {
		util.BadRequest(ctx, "recording is required")
		return
	}
	if !util.HasAllowedExtension(header.Filename, util.AllowedAudioExtensions) {
		util.BadRequest(ctx, "unsupported recording format")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, util.AllowedAudioMimeTypes)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	timedOut, _ := strconv.ParseBool(ctx.PostForm("timedOut"))
	input := service.SubmitAnswerInput{
		SessionID:  util.MustParseUint(ctx.PostForm("sessionId")),
		QuestionID: util.MustParseUint(ctx.PostForm("questionId")),
		AnswerText: ctx.PostForm("answerText"),
		TimeTaken:  util.ParseIntDefault(ctx.PostForm("timeTaken"), 0),
		TimeLimit:  util.ParseIntDefault(ctx.PostForm("timeLimit"), 0),
		TimedOut:   timedOut,
	}

	answer, err := c.AnswerService.SubmitVoiceAnswer(ctx.Request.Context(), userID, input, service.VoiceRecording{
		Reader:      file,
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: mimeType,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, answer)
}

// @Summary 作答列表
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param questionId query int false "题目ID"
// @Param bookmarked query bool false "只看收藏"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/answers [get]
func (c *AnswerController) ListAnswers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	page, limit := pagination(ctx)
	bookmarked, _ := strconv.ParseBool(ctx.Query("bookmarked"))
	filter := repository.AnswerFilter{
		QuestionID:     util.MustParseUint(ctx.Query("questionId")),
		BookmarkedOnly: bookmarked,
	}

	answers, total, err := c.AnswerService.ListAnswers(ctx.Request.Context(), userID, filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, answers, total, page, limit)
}

// @Summary 作答详情
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /api/answers/{id} [get]
func (c *AnswerController) GetAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	answerID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	answer, err := c.AnswerService.GetAnswer(ctx.Request.Context(), userID, answerID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// @Summary 切换收藏
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/answers/{id}/bookmark [patch]
func (c *AnswerController) ToggleBookmark(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	answerID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	bookmarked, err := c.AnswerService.ToggleBookmark(ctx.Request.Context(), userID, answerID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"bookmarked": bookmarked})
}

// @Summary 自评
// @Tags 作答
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作答ID"
// @Param request body SelfRatingRequest true "自评 1-5"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /api/answers/{id}/self-rating [patch]
func (c *AnswerController) SetSelfRating(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	answerID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req SelfRatingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "invalid request body")
		return
	}

	answer, err := c.AnswerService.SetSelfRating(ctx.Request.Context(), userID, answerID, req.Rating)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}
