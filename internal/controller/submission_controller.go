package controller

import (
	"bytes"
	"fmt"
	"lms_console_backend/internal/service"
	"lms_console_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(svc *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: svc}
}

// @Summary 获取提交列表
// @Tags 提交管理
// @Produce json
// @Param id path int true "评估ID"
// @Param status query string false "submitted/graded/late"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /admin/assessments/{id}/submissions [get]
func (c *SubmissionController) ListSubmissions(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	subs, err := c.Service.ListSubmissions(ctx.Request.Context(), id, ctx.Query("status"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// @Summary 提交答卷
// @Tags 提交管理
// @Accept json
// @Produce json
// @Param id path int true "评估ID"
// @Param body body service.SubmitRequest true "答卷"
// @Success 201 {object} util.Response{data=model.Submission}
// @Router /admin/assessments/{id}/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Service.Submit(ctx.Request.Context(), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary 导出提交记录
// @Tags 提交管理
// @Produce text/csv
// @Param id path int true "评估ID"
// @Success 200 {file} file
// @Router /admin/assessments/{id}/submissions/export [get]
func (c *SubmissionController) ExportSubmissions(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var buf bytes.Buffer
	if err := c.Service.ExportSubmissions(ctx.Request.Context(), id, &buf); err != nil {
		util.HandleError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", util.AttachmentDisposition(fmt.Sprintf(util.SubmissionExportFilename, id)))
	ctx.Data(http.StatusOK, util.MimeCSV, buf.Bytes())
}
