package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径参数中的ID
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
