package controller

import (
	"bytes"
	"errors"
	"fmt"
	"lms_console_backend/internal/service"
	"lms_console_backend/internal/util"
	"lms_console_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ImportController struct {
	Service *service.ImportService
}

func NewImportController(svc *service.ImportService) *ImportController {
	return &ImportController{Service: svc}
}

// multipart 边界与表单头的余量
const multipartOverhead = 64 << 10

// BodyLimit 上传请求体上限，随导入配置热更新
func (c *ImportController) BodyLimit() int64 {
	limit := c.Service.Settings().MaxFileBytes()
	if limit <= 0 {
		return 0
	}
	return limit + multipartOverhead
}

// @Summary 批量导入评估
// @Description 上传 CSV 文件，逐行创建评估，失败的行被跳过并在结果中列出
// @Tags 批量导入
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV 文件"
// @Success 200 {object} util.Response{data=service.ImportReport}
// @Router /admin/assessments/import [post]
func (c *ImportController) Import(ctx *gin.Context) {
	limit := c.Service.Settings().MaxFileBytes()
	header, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", limit))
			return
		}
		util.BadRequest(ctx, "file is required")
		return
	}

	data, err := util.ReadUpload(header, limit, util.AllowedImportMimeTypes)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUploadTooLarge):
			util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, util.ErrUnsupportedFileType):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	report, err := c.Service.ImportBatch(ctx.Request.Context(), bytes.NewReader(data))
	if err != nil {
		logger.Log.Warn("Import failed", zap.String("filename", header.Filename), zap.Error(err))
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary 下载导入模板
// @Tags 批量导入
// @Produce text/csv
// @Success 200 {file} file
// @Router /admin/assessments/import/template [get]
func (c *ImportController) Template(ctx *gin.Context) {
	data, err := service.Template()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", util.AttachmentDisposition(util.ImportTemplateFilename))
	ctx.Data(http.StatusOK, util.MimeCSV, data)
}

// @Summary 下载导入归档
// @Description 返回某次批量导入上传的原始 CSV（需开启 import.archive_uploads）
// @Tags 批量导入
// @Produce text/csv
// @Param batch path string true "导入批次ID"
// @Success 200 {file} file
// @Router /admin/assessments/imports/{batch} [get]
func (c *ImportController) DownloadArchive(ctx *gin.Context) {
	batchID := ctx.Param("batch")
	data, err := c.Service.Archive(ctx.Request.Context(), batchID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", util.AttachmentDisposition("import_"+batchID+".csv"))
	ctx.Data(http.StatusOK, util.MimeCSV, data)
}

// @Summary 删除导入归档
// @Tags 批量导入
// @Produce json
// @Param batch path string true "导入批次ID"
// @Success 200 {object} util.Response
// @Router /admin/assessments/imports/{batch} [delete]
func (c *ImportController) DeleteArchive(ctx *gin.Context) {
	if err := c.Service.DeleteArchive(ctx.Request.Context(), ctx.Param("batch")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
