package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"column/internal/apperr"
	resp "column/internal/transport/http/response"
)

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, resp.Error(code, msg))
}

// abortErr 5xx 不回传内部信息，原因挂到 c.Errors 交给 AccessLog
func abortErr(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("", err)
	}
	if e.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
		abort(c, e.Code, "")
		return
	}
	c.AbortWithStatusJSON(e.Code, resp.Error(e.Code, e.Msg, e.Data))
}
