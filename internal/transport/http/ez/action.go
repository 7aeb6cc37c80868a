package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"column/internal/apperr"
	"column/internal/domain"
	mdw "column/internal/transport/http/middleware"
	resp "column/internal/transport/http/response"
)

// EZ 在一个路由分组上注册 Action
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// Group 子分组，可附加中间件
func (e EZ) Group(path string, h ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, h...), log: e.log}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart / urlencoded 表单
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// Paged 列表结果实现该接口时拆成 data + meta
type Paged interface {
	Envelope() (data any, meta any)
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string         // "GET" | "POST" | "PUT" | "DELETE"
	Path    string         // 例："/auth/login"、"/posts/:id/like"
	Binder  Binder         // 绑定方式
	Auth    bool           // 是否要求登录（分组需挂 AuthRequired / AuthOptional）
	Roles   domain.RoleSet // 限定角色（可选）
	Status  int            // 成功状态码，默认 200
	Message string         // 成功 message，默认 "OK"；Handler 内可用 SetMessage 覆盖
	Handler func(c *gin.Context, in *I) (O, error)
}

const keyMessage = "ez.message"

// SetMessage 按结果覆盖成功 message（例如点赞 / 取消点赞）
func SetMessage(c *gin.Context, msg string) { c.Set(keyMessage, msg) }

// User 当前登录用户；Auth=true 的 Action 中一定非空
func User(c *gin.Context) *domain.User { return mdw.CurrentUser(c) }

func bind[I any](c *gin.Context, b Binder, in *I) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindForm:
		return c.ShouldBind(in)
	default: // BindNone: 不绑定
		return nil
	}
}

// bindError 校验失败给出可读信息；请求体超限转 413
func bindError(err error) *apperr.Error {
	if mdw.IsBodyTooLarge(err) {
		return &apperr.Error{Code: http.StatusRequestEntityTooLarge, Msg: resp.MsgOf(http.StatusRequestEntityTooLarge)}
	}
	return apperr.BadRequest(validationMessage(err))
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth || !a.Roles.Empty() {
			u := mdw.CurrentUser(c)
			if u == nil {
				e.fail(c, apperr.Unauthorized("Not authorized, no token"))
				return
			}
			if !a.Roles.Empty() && !a.Roles.Allows(u.Role) {
				e.fail(c, apperr.Forbidden("Forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			e.fail(c, bindError(err))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}

		// 4) 统一响应
		msg := a.Message
		if v := c.GetString(keyMessage); v != "" {
			msg = v
		}
		if msg == "" {
			msg = resp.MsgOf(status)
		}
		if p, ok := any(out).(Paged); ok {
			data, meta := p.Envelope()
			c.JSON(status, resp.New(msg, data, meta))
			return
		}
		c.JSON(status, resp.New(msg, out, nil))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// fail 统一错误映射；5xx 只记日志不回传原因
func (e EZ) fail(c *gin.Context, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		ae = apperr.Internal("", err)
	}
	if ae.Code >= http.StatusInternalServerError {
		if e.log != nil {
			e.log.Error("action failed",
				zap.String("rid", c.GetString(mdw.KeyRequestID)),
				zap.String("path", c.FullPath()),
				zap.Int("code", ae.Code),
				zap.String("msg", ae.Msg),
				zap.Error(ae.Err),
			)
		}
		msg := resp.MsgOf(ae.Code)
		// 502 的 message 是给用户看的（例如 "Image upload failed"）
		if ae.Code == http.StatusBadGateway && ae.Msg != "" {
			msg = ae.Msg
		}
		c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Code, msg, ae.Data))
		return
	}
	c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Code, ae.Msg, ae.Data))
}

// BadBody Handler 内自行绑定时复用同样的错误映射
func BadBody(err error) error { return bindError(err) }
