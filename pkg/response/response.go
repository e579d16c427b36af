package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 统一错误码定义
const (
	SUCCESS           = 200
	ERROR             = 500
	INVALID_PARAMS    = 20001
	NOT_FOUND         = 20003
	TOO_MANY_REQUESTS = 20005
	INTERNAL_ERROR    = 20006
)

// 错误码消息映射
var codeMsg = map[int]string{
	SUCCESS:           "OK",
	ERROR:             "服务器内部错误",
	INVALID_PARAMS:    "请求参数错误",
	NOT_FOUND:         "资源不存在",
	TOO_MANY_REQUESTS: "请求过于频繁",
	INTERNAL_ERROR:    "内部服务错误",
}

// Response 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	OriginUrl string      `json:"originUrl"`
}

// GetMsg 获取错误码对应的消息
func GetMsg(code int) string {
	msg, exist := codeMsg[code]
	if exist {
		return msg
	}
	return codeMsg[ERROR]
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	resp := Response{
		Code:      SUCCESS,
		Message:   GetMsg(SUCCESS),
		Data:      data,
		OriginUrl: c.Request.URL.Path,
	}
	c.Set("response", resp)
	c.JSON(http.StatusOK, resp)
}

// Error 错误响应，HTTP 状态码为 200，错误体现在 code 中
func Error(c *gin.Context, code int, message ...string) {
	writeError(c, http.StatusOK, code, nil, message...)
}

// BadRequest 参数错误，HTTP 400
func BadRequest(c *gin.Context, message ...string) {
	writeError(c, http.StatusBadRequest, INVALID_PARAMS, nil, message...)
}

// NotFound 资源不存在，HTTP 404
func NotFound(c *gin.Context, message ...string) {
	writeError(c, http.StatusNotFound, NOT_FOUND, nil, message...)
}

// AbortWithStatus 以指定的 HTTP 状态码中断请求
func AbortWithStatus(c *gin.Context, status, code int, data interface{}, message ...string) {
	writeError(c, status, code, data, message...)
	c.Abort()
}

func writeError(c *gin.Context, status, code int, data interface{}, message ...string) {
	msg := GetMsg(code)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}

	resp := Response{
		Code:      code,
		Message:   msg,
		Data:      data,
		Error:     "error",
		OriginUrl: c.Request.URL.Path,
	}
	c.Set("response", resp)
	c.JSON(status, resp)
}
