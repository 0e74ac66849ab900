package controller

import (
	"lms_console_backend/internal/service"
	"lms_console_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
	Board   *service.BoardService
	Now     func() time.Time
}

func NewAssessmentController(svc *service.AssessmentService, board *service.BoardService) *AssessmentController {
	return &AssessmentController{Service: svc, Board: board, Now: time.Now}
}

// @Summary 获取评估列表
// @Description 不带 tab 时返回全部评估，tab 可为 active/upcoming/completed/draft 或 0-3
// @Tags 评估管理
// @Produce json
// @Param tab query string false "标签页"
// @Success 200 {object} util.Response
// @Router /admin/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	tabParam := ctx.Query("tab")
	if tabParam == "" {
		list, err := c.Service.List(ctx.Request.Context())
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, list)
		return
	}

	tab, ok := service.ParseTab(tabParam)
	if !ok {
		util.BadRequest(ctx, "invalid tab")
		return
	}
	list, err := c.Service.ListByTab(ctx.Request.Context(), tab, c.Now())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 评估看板
// @Tags 评估管理
// @Produce json
// @Success 200 {object} util.Response{data=service.Board}
// @Router /admin/assessments/board [get]
func (c *AssessmentController) GetBoard(ctx *gin.Context) {
	board, err := c.Board.Overview(ctx.Request.Context(), c.Now())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, board)
}

// @Summary 评估统计
// @Tags 评估管理
// @Produce json
// @Success 200 {object} util.Response{data=repository.AssessmentStats}
// @Router /admin/assessments/stats [get]
func (c *AssessmentController) GetStats(ctx *gin.Context) {
	stats, err := c.Service.Stats(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 获取评估详情
// @Tags 评估管理
// @Produce json
// @Param id path int true "评估ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /admin/assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	a, err := c.Service.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 创建评估
// @Description 未提供的字段使用新建表单默认值
// @Tags 评估管理
// @Accept json
// @Produce json
// @Param body body service.Draft true "评估表单"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Router /admin/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	draft := service.NewDraft(0)
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	_, created, err := c.Service.Save(ctx.Request.Context(), nil, 0, draft)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// @Summary 更新评估
// @Description 未提供的字段保留原值；提供 questions / rubric 时整体替换
// @Tags 评估管理
// @Accept json
// @Produce json
// @Param id path int true "评估ID"
// @Param body body service.Draft true "评估表单"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /admin/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	existing, err := c.Service.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var patch service.AssessmentPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	draft := patch.Apply(service.DraftFromAssessment(existing))

	_, updated, err := c.Service.Save(ctx.Request.Context(), nil, id, draft)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary 删除评估
// @Tags 评估管理
// @Produce json
// @Param id path int true "评估ID"
// @Success 200 {object} util.Response
// @Router /admin/assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	if _, err := c.Service.Delete(ctx.Request.Context(), nil, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// @Summary 清空题目
// @Tags 评估管理
// @Produce json
// @Param id path int true "评估ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /admin/assessments/{id}/questions [delete]
func (c *AssessmentController) ClearQuestions(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	a, err := c.Service.ClearQuestions(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 清空评分标准
// @Tags 评估管理
// @Produce json
// @Param id path int true "评估ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /admin/assessments/{id}/rubric [delete]
func (c *AssessmentController) ClearRubric(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	a, err := c.Service.ClearRubric(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}
