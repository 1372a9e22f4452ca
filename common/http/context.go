package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context 封装 gin.Context，handler 只面对统一的请求/响应接口
type Context struct {
	ginCtx *gin.Context
}

func newContext(c *gin.Context) *Context {
	return &Context{ginCtx: c}
}

// GetParam 路径参数
func (c *Context) GetParam(key string) string {
	return c.ginCtx.Param(key)
}

// GetQuery 查询参数
func (c *Context) GetQuery(key string) string {
	return c.ginCtx.Query(key)
}

// GetQueryWithDefault 查询参数带默认值
func (c *Context) GetQueryWithDefault(key, defaultValue string) string {
	return c.ginCtx.DefaultQuery(key, defaultValue)
}

// GetHeader 请求头
func (c *Context) GetHeader(key string) string {
	return c.ginCtx.GetHeader(key)
}

// SetHeader 响应头
func (c *Context) SetHeader(key, value string) {
	c.ginCtx.Header(key, value)
}

// BindJSON 绑定 JSON 请求体
func (c *Context) BindJSON(obj interface{}) error {
	return c.ginCtx.ShouldBindJSON(obj)
}

// JSON 返回 JSON 响应
func (c *Context) JSON(code int, obj interface{}) {
	c.ginCtx.JSON(code, obj)
}

// Set 上下文存值
func (c *Context) Set(key string, value interface{}) {
	c.ginCtx.Set(key, value)
}

// GetInt64 上下文取 int64
func (c *Context) GetInt64(key string) int64 {
	return c.ginCtx.GetInt64(key)
}

// GetString 上下文取字符串
func (c *Context) GetString(key string) string {
	return c.ginCtx.GetString(key)
}

// ClientIP 客户端地址
func (c *Context) ClientIP() string {
	return c.ginCtx.ClientIP()
}

// Method 请求方法
func (c *Context) Method() string {
	return c.ginCtx.Request.Method
}

// Path 请求路径
func (c *Context) Path() string {
	return c.ginCtx.Request.URL.Path
}

// Abort 终止后续 handler
func (c *Context) Abort() {
	c.ginCtx.Abort()
}

// AbortWithStatus 终止并回状态码
func (c *Context) AbortWithStatus(code int) {
	c.ginCtx.AbortWithStatus(code)
}

// Request 原始请求
func (c *Context) Request() *http.Request {
	return c.ginCtx.Request
}
