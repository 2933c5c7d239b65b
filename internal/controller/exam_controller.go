package controller

import (
	"errors"
	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/service"
	"lang_exam_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", strconv.Itoa(util.DefaultPage)))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(util.DefaultLimit)))
	if page < 1 {
		page = util.DefaultPage
	}
	if limit < 1 || limit > util.MaxLimit {
		limit = util.DefaultLimit
	}
	return page, limit
}

// swagger:model CreateExamRequest
type CreateExamRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required,oneof=reading listening writing grammar"`
	TimeLimit   int    `json:"timeLimit"`
}

// CreateExam godoc
// @Summary 创建试卷
// @Tags 试卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateExamRequest true "试卷信息"
// @Success 201 {object} util.Response{data=model.Exam} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/teacher/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam := &model.Exam{
		Title:       req.Title,
		Description: req.Description,
		Category:    model.ExamCategory(req.Category),
		TimeLimit:   req.TimeLimit,
	}
	if err := c.ExamService.CreateExam(exam, claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// ListExams godoc
// @Summary 试卷列表
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "类别 reading/listening/writing/grammar"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	category := model.ExamCategory(ctx.Query("category"))

	exams, total, err := c.ExamService.ListExams(category, false, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}

// GetExam godoc
// @Summary 试卷详情（教师端，含答案与编号）
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response{data=service.ExamView}
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/teacher/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	view, err := c.ExamService.BuildExamView(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// swagger:model UpdateExamRequest
type UpdateExamRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TimeLimit   *int   `json:"timeLimit"`
}

// UpdateExam godoc
// @Summary 更新试卷基本信息
// @Tags 试卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param body body UpdateExamRequest true "更新内容"
// @Success 200 {object} util.Response{data=model.Exam}
// @Router /api/teacher/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	exam, err := c.ExamService.GetExam(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var req UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != "" {
		exam.Description = req.Description
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = *req.TimeLimit
	}

	if err := c.ExamService.UpdateExam(exam); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// DeleteExam godoc
// @Summary 删除试卷及其分区与题目
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	if err := c.ExamService.DeleteExam(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// ValidateExam godoc
// @Summary 整卷校验
// @Description 汇总每道题的校验错误与警告，发布前检查
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/teacher/exams/{id}/validate [get]
func (c *ExamController) ValidateExam(ctx *gin.Context) {
	results, allValid, err := c.ExamService.ValidateExam(ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"isValid": allValid, "questions": results})
}

// PublishExam godoc
// @Summary 发布试卷
// @Description 存在校验错误的试卷拒绝发布
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "试卷存在校验错误"
// @Router /api/teacher/exams/{id}/publish [post]
func (c *ExamController) PublishExam(ctx *gin.Context) {
	if err := c.ExamService.PublishExam(ctx.Param("id")); err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrExamNotReady):
			util.Error(ctx, 409, "试卷存在校验错误，无法发布")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"published": true})
}

// UnpublishExam godoc
// @Summary 下线试卷
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/unpublish [post]
func (c *ExamController) UnpublishExam(ctx *gin.Context) {
	if err := c.ExamService.UnpublishExam(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"published": false})
}

// swagger:model CreateSectionRequest
type CreateSectionRequest struct {
	Title        string `json:"title" binding:"required"`
	Instructions string `json:"instructions"`
	PassageText  string `json:"passageText"`
	AudioURL     string `json:"audioUrl"`
	Order        int    `json:"order"`
}

// CreateSection godoc
// @Summary 新建试卷分区
// @Tags 试卷
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Param body body CreateSectionRequest true "分区信息"
// @Success 201 {object} util.Response{data=model.ExamSection}
// @Router /api/teacher/exams/{id}/sections [post]
func (c *ExamController) CreateSection(ctx *gin.Context) {
	if _, err := c.ExamService.GetExam(ctx.Param("id")); err != nil {
		util.NotFound(ctx)
		return
	}

	var req CreateSectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section := &model.ExamSection{
		ExamID:       ctx.Param("id"),
		Title:        req.Title,
		Instructions: req.Instructions,
		PassageText:  req.PassageText,
		AudioURL:     req.AudioURL,
		Order:        req.Order,
	}
	if err := c.ExamService.CreateSection(section); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// DeleteSection godoc
// @Summary 删除分区及其题目
// @Tags 试卷
// @Produce json
// @Security ApiKeyAuth
// @Param sectionId path string true "分区ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/sections/{sectionId} [delete]
func (c *ExamController) DeleteSection(ctx *gin.Context) {
	if err := c.ExamService.DeleteSection(ctx.Param("sectionId")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// swagger:model CreateQuestionRequest
type CreateQuestionRequest struct {
	Type string `json:"type" binding:"required"`
}

// CreateQuestion godoc
// @Summary 按题型新建缺省题目
// @Description 由对应题型插件生成缺省结构，随后整卷编号自动重排
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sectionId path string true "分区ID"
// @Param body body CreateQuestionRequest true "题型"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "未注册的题型"
// @Router /api/teacher/sections/{sectionId}/questions [post]
func (c *ExamController) CreateQuestion(ctx *gin.Context) {
	var req CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ExamService.CreateQuestion(ctx.Param("sectionId"), model.QuestionType(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUnknownQuestionType):
			util.BadRequest(ctx, "未注册的题型: "+req.Type)
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Description 先经题型插件校验，校验失败时返回错误明细且不落库
// @Tags 题目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "题目ID"
// @Param body body model.Question true "题目内容"
// @Success 200 {object} util.Response{data=object}
// @Failure 422 {object} util.Response "校验失败"
// @Router /api/teacher/questions/{questionId} [put]
func (c *ExamController) UpdateQuestion(ctx *gin.Context) {
	existing, err := c.ExamService.ExamRepo.FindQuestionByID(ctx.Param("questionId"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var q model.Question
	if err := ctx.ShouldBindJSON(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q.ID = existing.ID
	q.SectionID = existing.SectionID
	q.CreatedAt = existing.CreatedAt

	res, err := c.ExamService.UpdateQuestion(&q)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !res.IsValid {
		ctx.JSON(422, util.Response{Code: 422, Message: "题目校验失败", Data: res})
		return
	}
	util.Success(ctx, gin.H{"question": q, "validation": res})
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{questionId} [delete]
func (c *ExamController) DeleteQuestion(ctx *gin.Context) {
	if err := c.ExamService.DeleteQuestion(ctx.Param("questionId")); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// ListQuestionTypes godoc
// @Summary 可用题型目录
// @Description 列出已注册的题型插件及其能力描述，可按试卷类别过滤
// @Tags 题目
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "类别 reading/listening/writing/grammar"
// @Success 200 {object} util.Response{data=object}
// @Router /api/teacher/question-types [get]
func (c *ExamController) ListQuestionTypes(ctx *gin.Context) {
	registry := c.ExamService.Registry
	plugins := registry.All()
	if cat := ctx.Query("category"); cat != "" {
		plugins = registry.ByCategory(model.ExamCategory(cat))
	}

	configs := make([]interface{}, 0, len(plugins))
	for _, p := range plugins {
		configs = append(configs, p.Config())
	}
	util.Success(ctx, gin.H{"types": configs})
}

// GetLearnerExam godoc
// @Summary 考生端试卷视图
// @Description 仅已发布试卷，题目经标准化与答案脱敏，编号连续
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response{data=service.ExamView}
// @Failure 404 {object} util.Response "试卷不存在或未发布"
// @Router /api/exams/{id} [get]
func (c *ExamController) GetLearnerExam(ctx *gin.Context) {
	view, err := c.ExamService.BuildLearnerView(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound), errors.Is(err, util.ErrExamNotPublished):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// ListPublishedExams godoc
// @Summary 考生端可用试卷列表
// @Tags 考试
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "类别"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/exams [get]
func (c *ExamController) ListPublishedExams(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	category := model.ExamCategory(ctx.Query("category"))

	exams, total, err := c.ExamService.ListExams(category, true, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}
