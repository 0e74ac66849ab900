package controller

import (
	"lms_console_backend/internal/service"
	"lms_console_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	Assessments *service.AssessmentService
	Engine      *service.GradingEngine
}

func NewGradingController(assessments *service.AssessmentService, engine *service.GradingEngine) *GradingController {
	return &GradingController{Assessments: assessments, Engine: engine}
}

// GradeRequest mode 为空时按评估类型选择默认评分方式
type GradeRequest struct {
	Mode         string   `json:"mode"`
	SubmissionID uint     `json:"submission_id"`
	Score        *float64 `json:"score"`
	Feedback     string   `json:"feedback"`
}

// @Summary 评分
// @Description auto 仅适用于测验且只评第一份提交；manual 需要分数
// @Tags 评分
// @Accept json
// @Produce json
// @Param id path int true "评估ID"
// @Param body body GradeRequest true "评分信息"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /admin/assessments/{id}/grade [post]
func (c *GradingController) Grade(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Assessments.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	mode := service.DefaultMode(a.AssessmentType)
	if req.Mode != "" {
		if mode, err = service.ParseGradeMode(req.Mode); err != nil {
			util.HandleError(ctx, err)
			return
		}
	}

	form := &service.GradeForm{
		SubmissionID: req.SubmissionID,
		Score:        req.Score,
		Feedback:     req.Feedback,
	}
	_, refreshed, err := c.Engine.Grade(ctx.Request.Context(), nil, a, mode, form)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, refreshed)
}
