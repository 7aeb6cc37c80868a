package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PanicBody 作为 ginzap.CustomRecoveryWithZap 的回调，panic 时也返回统一响应体
func PanicBody(c *gin.Context, _ any) {
	abort(c, http.StatusInternalServerError, "")
}
