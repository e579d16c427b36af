package middleware

import (
	"errors"
	"fmt"
	"strings"

	"ecommerce-dashboard/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindQuery 绑定并校验查询参数，失败时写入 400 响应并返回 false
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.BadRequest(c, ValidationMessage(err))
		c.Abort()
		return false
	}
	return true
}

// BindURI 绑定并校验路径参数
func BindURI(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		response.BadRequest(c, ValidationMessage(err))
		c.Abort()
		return false
	}
	return true
}

// ValidationMessage 把校验错误转成可读的提示
func ValidationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	out := make([]string, len(ve))
	for i, fe := range ve {
		if fe.Param() != "" {
			out[i] = fmt.Sprintf("%s %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		} else {
			out[i] = strings.ToLower(fe.Field()) + " " + fe.Tag()
		}
	}
	return strings.Join(out, ", ")
}
