package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"column/internal/domain"
	"column/internal/service"
	"column/internal/transport/http/ez"
)

type UserHandler struct{ svc *service.UserService }

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Priority() int { return 40 }

func (h *UserHandler) MountAPI(e ez.EZ, g Guards) {
	pub := e.Group("/users")
	ez.RegisterAction(pub, ez.Action[struct{}, *domain.Profile]{
		Method: http.MethodGet, Path: "/profile/:id", Binder: ez.BindNone, Message: "Profile fetched",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Profile, error) {
			return h.svc.Profile(c.Request.Context(), c.Param("id"))
		},
	})

	authed := e.Group("/users", g.Required)
	ez.RegisterAction(authed, ez.Action[service.BioInput, *domain.User]{
		Method: http.MethodPost, Path: "/update-bio", Binder: ez.BindJSON, Auth: true, Message: "Bio updated",
		Handler: func(c *gin.Context, in *service.BioInput) (*domain.User, error) {
			return h.svc.UpdateBio(c.Request.Context(), ez.User(c), *in)
		},
	})
	// 字段校验放在 service 里，缺字段时也要带上 deletionStatus
	ez.RegisterAction(authed, ez.Action[service.DeleteAccountInput, *service.DeletionResult]{
		Method: http.MethodPost, Path: "/delete", Binder: ez.BindJSON, Auth: true, Message: "Account Deleted Successfully",
		Handler: func(c *gin.Context, in *service.DeleteAccountInput) (*service.DeletionResult, error) {
			return h.svc.DeleteAccount(c.Request.Context(), ez.User(c), *in)
		},
	})
}
