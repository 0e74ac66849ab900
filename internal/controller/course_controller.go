package controller

import (
	"lms_console_backend/internal/service"
	"lms_console_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	Service *service.CourseService
}

func NewCourseController(svc *service.CourseService) *CourseController {
	return &CourseController{Service: svc}
}

// @Summary 课程列表
// @Description 评估编辑器的课程下拉数据
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /admin/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.Service.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
