package controller

import (
	"errors"
	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/service"
	"lang_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// swagger:model StartAttemptRequest
type StartAttemptRequest struct {
	ExamID string `json:"examId" binding:"required"`
}

// StartAttempt godoc
// @Summary 开始答题
// @Description 同一试卷存在进行中的记录时直接返回该记录
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StartAttemptRequest true "试卷ID"
// @Success 201 {object} util.Response{data=model.ExamAttempt}
// @Failure 404 {object} util.Response "试卷不存在或未发布"
// @Router /api/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.StartAttempt(claims.UserID, req.ExamID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound), errors.Is(err, util.ErrExamNotPublished):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, attempt)
}

// SaveAnswer godoc
// @Summary 保存作答
// @Description partial 题型按小题提交（subQuestionId 非空），重复提交覆盖旧答案
// @Tags 考试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "答题记录ID"
// @Param body body service.AnswerSubmission true "作答内容"
// @Success 200 {object} util.Response{data=model.UserAnswer}
// @Failure 409 {object} util.Response "已交卷"
// @Router /api/attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var sub service.AnswerSubmission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AttemptService.SaveAnswer(claims.UserID, ctx.Param("id"), sub)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptSubmitted):
			util.Error(ctx, 409, "已交卷，无法继续作答")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, answer)
}

// SubmitAttempt godoc
// @Summary 交卷并判分
// @Description 触发整卷评分，返回逐题得分明细
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "答题记录ID"
// @Success 200 {object} util.Response{data=service.AttemptScore}
// @Failure 409 {object} util.Response "重复交卷"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	score, err := c.AttemptService.SubmitAttempt(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptSubmitted):
			util.Error(ctx, 409, "重复交卷")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, score)
}

// GetResult godoc
// @Summary 成绩单
// @Description 逐题的标准化题目、作答记录、得分与完成状态
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "答题记录ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 409 {object} util.Response "尚未交卷"
// @Router /api/attempts/{id}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	isTeacher := claims.Role == model.Teacher || claims.Role == model.Admin
	result, err := c.AttemptService.GetResult(claims.UserID, ctx.Param("id"), isTeacher)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAttemptNotSubmitted):
			util.Error(ctx, 409, "尚未交卷")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// ListAttempts godoc
// @Summary 我的答题记录
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pageParams(ctx)
	attempts, total, err := c.AttemptService.ListAttempts(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// RescoreAttempt godoc
// @Summary 整卷重评（教师端）
// @Description 强制重算机器评分，人工改分保留
// @Tags 评分
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "答题记录ID"
// @Success 200 {object} util.Response{data=service.AttemptScore}
// @Router /api/teacher/attempts/{id}/rescore [post]
func (c *AttemptController) RescoreAttempt(ctx *gin.Context) {
	score, err := c.AttemptService.RescoreAttempt(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAttemptNotSubmitted):
			util.Error(ctx, 409, "尚未交卷")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, score)
}

// swagger:model ManualScoreRequest
type ManualScoreRequest struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ManualScore godoc
// @Summary 人工改分（教师端）
// @Description 写作等转人工的记录由此落分，改分后整卷重汇总
// @Tags 评分
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "答题记录ID"
// @Param answerId path string true "作答记录ID"
// @Param body body ManualScoreRequest true "分数与评语"
// @Success 200 {object} util.Response{data=model.UserAnswer}
// @Router /api/teacher/attempts/{id}/answers/{answerId}/score [put]
func (c *AttemptController) ManualScore(ctx *gin.Context) {
	var req ManualScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AttemptService.ManualScore(ctx.Param("id"), ctx.Param("answerId"), req.Score, req.Feedback)
	if err != nil {
		if errors.Is(err, util.ErrAnswerNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, answer)
}
