package http

import "net/http"

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeSuccess      = 0
	CodeError        = -1
	CodeInvalidParam = 10001
	CodeUnauthorized = 10002
	CodeForbidden    = 10003
	CodeNotFound     = 10004
	CodeServerError  = 10005
)

const (
	MsgSuccess      = "success"
	MsgInvalidParam = "invalid parameters"
	MsgUnauthorized = "unauthorized"
	MsgForbidden    = "forbidden"
	MsgNotFound     = "not found"
	MsgServerError  = "internal server error"
)

func NewResponse(code int, message string, data interface{}) *Response {
	return &Response{Code: code, Message: message, Data: data}
}

// Success 成功响应
func (c *Context) Success(data interface{}) {
	c.JSON(http.StatusOK, NewResponse(CodeSuccess, MsgSuccess, data))
}

// Error 业务错误响应（带稳定错误码字符串）
func (c *Context) Error(code string, message string) {
	c.JSON(http.StatusOK, &Response{Code: CodeError, Message: code + ": " + message})
}

// BadRequest 400
func (c *Context) BadRequest(message string) {
	if message == "" {
		message = MsgInvalidParam
	}
	c.JSON(http.StatusBadRequest, NewResponse(CodeInvalidParam, message, nil))
}

// Unauthorized 401
func (c *Context) Unauthorized(message string) {
	if message == "" {
		message = MsgUnauthorized
	}
	c.JSON(http.StatusUnauthorized, NewResponse(CodeUnauthorized, message, nil))
}

// Forbidden 403
func (c *Context) Forbidden(message string) {
	if message == "" {
		message = MsgForbidden
	}
	c.JSON(http.StatusForbidden, NewResponse(CodeForbidden, message, nil))
}

// NotFound 404
func (c *Context) NotFound(message string) {
	if message == "" {
		message = MsgNotFound
	}
	c.JSON(http.StatusNotFound, NewResponse(CodeNotFound, message, nil))
}

// InternalServerError 500
func (c *Context) InternalServerError(message string) {
	if message == "" {
		message = MsgServerError
	}
	c.JSON(http.StatusInternalServerError, NewResponse(CodeServerError, message, nil))
}

// PageResponse 分页响应
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// SuccessWithPage 分页成功响应
func (c *Context) SuccessWithPage(list interface{}, total int64, page, size int) {
	c.JSON(http.StatusOK, NewResponse(CodeSuccess, MsgSuccess, &PageResponse{
		List: list, Total: total, Page: page, Size: size,
	}))
}
