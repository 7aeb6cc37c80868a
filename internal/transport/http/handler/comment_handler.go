package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"column/internal/domain"
	"column/internal/service"
	"column/internal/transport/http/ez"
)

type CommentHandler struct{ svc *service.CommentService }

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) Priority() int { return 30 }

// 同一个 :id 在 GET/POST 下是文章 id，在 PUT/DELETE 下是评论 id
func (h *CommentHandler) MountAPI(e ez.EZ, g Guards) {
	pub := e.Group("/comments", g.Optional)
	ez.RegisterAction(pub, ez.Action[service.CommentListParams, *service.Page[domain.Comment]]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindQuery, Message: "Comments fetched",
		Handler: func(c *gin.Context, in *service.CommentListParams) (*service.Page[domain.Comment], error) {
			return h.svc.List(c.Request.Context(), ez.User(c), c.Param("id"), *in)
		},
	})

	authed := e.Group("/comments", g.Required)
	ez.RegisterAction(authed, ez.Action[service.CommentInput, *domain.Comment]{
		Method: http.MethodPost, Path: "/:id", Binder: ez.BindJSON, Auth: true,
		Status: http.StatusCreated, Message: "Comment added",
		Handler: func(c *gin.Context, in *service.CommentInput) (*domain.Comment, error) {
			return h.svc.Create(c.Request.Context(), ez.User(c), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(authed, ez.Action[service.CommentInput, *domain.Comment]{
		Method: http.MethodPut, Path: "/:id", Binder: ez.BindJSON, Auth: true, Message: "Comment updated",
		Handler: func(c *gin.Context, in *service.CommentInput) (*domain.Comment, error) {
			return h.svc.Update(c.Request.Context(), ez.User(c), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(authed, ez.Action[struct{}, any]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone, Auth: true, Message: "Comment deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, h.svc.Delete(c.Request.Context(), ez.User(c), c.Param("id"))
		},
	})
}
