package apperr

import (
	"errors"
	"net/http"
)

// Error 统一业务错误（Code 直接使用 HTTP 语义）
type Error struct {
	Code int
	Msg  string
	Err  error
	Data any // 需要给客户端的结构化标记，例如 deletionStatus
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *Error) Unwrap() error { return e.Err }

// WithData 返回带结构化数据的副本
func (e *Error) WithData(data any) *Error {
	cp := *e
	cp.Data = data
	return &cp
}

func BadRequest(msg string) *Error   { return &Error{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Code: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Code: http.StatusConflict, Msg: msg} }

func Internal(msg string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Upstream 外部依赖（图床 / 邮件）失败
func Upstream(msg string, err error) *Error {
	return &Error{Code: http.StatusBadGateway, Msg: msg, Err: err}
}

// CodeOf 取错误码；非 *Error 一律按 500 处理
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

// As 是 errors.As 的简写
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
