package handler

import (
	"github.com/gin-gonic/gin"

	"column/internal/transport/http/ez"
)

// Guards 各模块挂路由时用到的鉴权 / 限速中间件
type Guards struct {
	Required  gin.HandlerFunc // 必须登录
	Optional  gin.HandlerFunc // 有 token 就识别，没有按匿名
	Admin     gin.HandlerFunc // 必须是 admin
	AuthLimit gin.HandlerFunc // /auth 的每 IP 限速，可为 nil
}

func chain(hs ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Module 挂在 /api 下的业务模块
type Module interface {
	MountAPI(e ez.EZ, g Guards)
}
