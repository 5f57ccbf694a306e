package controller

import (
	"errors"
	"strconv"

	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为 HTTP 响应
func respondError(ctx *gin.Context, err error) {
	var validation *service.ValidationError
	var notFound *service.NotFoundError
	switch {
	case errors.As(err, &validation):
		util.BadRequest(ctx, validation.Message)
	case errors.As(err, &notFound):
		util.NotFound(ctx, notFound.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// pathID 解析路径中的数字 ID，失败时已经写出 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUserID 未登录时已经写出 401
func currentUserID(ctx *gin.Context) (uint, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return user.UserID, true
}

func pagination(ctx *gin.Context) (int, int) {
	page := util.ParseIntDefault(ctx.Query("page"), 1)
	limit := util.ParseIntDefault(ctx.Query("limit"), 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
