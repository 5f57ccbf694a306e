package controller

import (
	"prepace_backend/internal/model"
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

type CompleteSessionRequest struct {
	TotalTimeTaken int `json:"totalTimeTaken"`
}

// @Summary 开始练习会话
// @Description 使用客户端抽好的题目列表创建会话，题目列表在创建时固定
// @Tags 练习会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.CreateSessionInput true "会话参数"
// @Success 201 {object} util.Response{data=model.Session}
// @Failure 400 {object} util.Response
// @Router /api/sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.CreateSessionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "invalid request body")
		return
	}

	session, err := c.SessionService.CreateSession(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// @Summary 会话历史
// @Tags 练习会话
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "状态" Enums(in-progress, completed, abandoned)
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	page, limit := pagination(ctx)

	sessions, total, err := c.SessionService.ListSessions(ctx.Request.Context(), userID, model.SessionStatus(ctx.Query("status")), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, sessions, total, page, limit)
}

// @Summary 会话详情
// @Description 返回会话及其全部作答
// @Tags 练习会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.SessionDetail}
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.SessionService.GetSession(ctx.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 完成会话
// @Description 汇总作答数和平均分。已结束的会话原样返回
// @Tags 练习会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Param request body CompleteSessionRequest false "总用时（秒）"
// @Success 200 {object} util.Response{data=model.Session}
// @Router /api/sessions/{id}/complete [patch]
func (c *SessionController) CompleteSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, "invalid request body")
			return
		}
	}

	session, err := c.SessionService.CompleteSession(ctx.Request.Context(), userID, sessionID, req.TotalTimeTaken)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// @Summary 放弃会话
// @Tags 练习会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.Session}
// @Router /api/sessions/{id}/abandon [patch]
func (c *SessionController) AbandonSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	session, err := c.SessionService.AbandonSession(ctx.Request.Context(), userID, sessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}
