package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"column/internal/domain"
	"column/internal/service"
	"column/internal/transport/http/ez"
)

type AdminHandler struct{ svc *service.AdminService }

func NewAdminHandler(svc *service.AdminService) *AdminHandler { return &AdminHandler{svc: svc} }

func (h *AdminHandler) Priority() int { return 50 }

func (h *AdminHandler) MountAPI(e ez.EZ, g Guards) {
	admin := e.Group("/admin", g.Admin)

	ez.RegisterAction(admin, ez.Action[struct{}, *domain.DashboardStats]{
		Method: http.MethodGet, Path: "/dashboard", Binder: ez.BindNone, Roles: domain.AdminOnly,
		Message: "Dashboard stats fetched",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.DashboardStats, error) {
			return h.svc.Dashboard(c.Request.Context())
		},
	})

	ez.RegisterAction(admin, ez.Action[service.AdminPostParams, *service.Page[domain.AdminPostRow]]{
		Method: http.MethodGet, Path: "/posts", Binder: ez.BindQuery, Roles: domain.AdminOnly,
		Message: "Admin posts fetched",
		Handler: func(c *gin.Context, in *service.AdminPostParams) (*service.Page[domain.AdminPostRow], error) {
			return h.svc.Posts(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(admin, ez.Action[service.AdminUserParams, *service.Page[domain.UserSummary]]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, Roles: domain.AdminOnly,
		Message: "Users fetched",
		Handler: func(c *gin.Context, in *service.AdminUserParams) (*service.Page[domain.UserSummary], error) {
			return h.svc.Users(c.Request.Context(), *in)
		},
	})

	// body 可以为空（切换状态），所以不走 ShouldBindJSON 的 EOF 校验
	ez.RegisterAction(admin, ez.Action[struct{}, *domain.User]{
		Method: http.MethodPut, Path: "/users/status/:id", Binder: ez.BindNone, Roles: domain.AdminOnly,
		Message: "User status updated",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			var in service.UserStatusInput
			if c.Request.ContentLength != 0 {
				if err := c.ShouldBindJSON(&in); err != nil {
					return nil, ez.BadBody(err)
				}
			}
			return h.svc.SetUserStatus(c.Request.Context(), ez.User(c), c.Param("id"), in)
		},
	})
}
