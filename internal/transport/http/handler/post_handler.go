package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"column/internal/apperr"
	"column/internal/domain"
	"column/internal/service"
	"column/internal/transport/http/ez"
)

type PostHandler struct{ svc *service.PostService }

func NewPostHandler(svc *service.PostService) *PostHandler { return &PostHandler{svc: svc} }

func (h *PostHandler) Priority() int { return 20 }

// postForm multipart 表单；未出现的字段保持 nil，更新时表示不修改
type postForm struct {
	Title   *string               `form:"title"`
	Content *string               `form:"content"`
	Status  *string               `form:"status"`
	Tags    *string               `form:"tags"`
	Cover   *multipart.FileHeader `form:"coverImage"`
}

// input 打开封面文件；调用方负责 close
func (f *postForm) input() (service.PostInput, func(), error) {
	in := service.PostInput{Title: f.Title, Content: f.Content, Status: f.Status, Tags: f.Tags}
	if f.Cover == nil {
		return in, func() {}, nil
	}
	file, err := f.Cover.Open()
	if err != nil {
		return in, func() {}, apperr.BadRequest("Cover image could not be read")
	}
	in.Cover = &service.Upload{
		Reader:      file,
		Size:        f.Cover.Size,
		ContentType: f.Cover.Header.Get("Content-Type"),
		Filename:    f.Cover.Filename,
	}
	return in, func() { _ = file.Close() }, nil
}

type feedOut = *service.Page[domain.FeedItem]

func (h *PostHandler) MountAPI(e ez.EZ, g Guards) {
	pub := e.Group("/posts", g.Optional)

	ez.RegisterAction(pub, ez.Action[service.FeedParams, feedOut]{
		Method: http.MethodGet, Path: "", Binder: ez.BindQuery, Message: "Posts fetched",
		Handler: func(c *gin.Context, in *service.FeedParams) (feedOut, error) {
			return h.svc.Feed(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, []domain.Post]{
		Method: http.MethodGet, Path: "/related/:id", Binder: ez.BindNone, Message: "Related posts fetched",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Post, error) {
			return h.svc.Related(c.Request.Context(), ez.User(c), c.Param("id"))
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, *domain.PostDetail]{
		Method: http.MethodGet, Path: "/:slug", Binder: ez.BindNone, Message: "Post fetched successfully",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.PostDetail, error) {
			return h.svc.GetBySlug(c.Request.Context(), ez.User(c), c.Param("slug"))
		},
	})

	authed := e.Group("/posts", g.Required)

	ez.RegisterAction(authed, ez.Action[service.PageParams, *service.Page[domain.Post]]{
		Method: http.MethodGet, Path: "/mine", Binder: ez.BindQuery, Auth: true, Message: "Posts fetched",
		Handler: func(c *gin.Context, in *service.PageParams) (*service.Page[domain.Post], error) {
			return h.svc.Mine(c.Request.Context(), ez.User(c), *in)
		},
	})

	ez.RegisterAction(authed, ez.Action[postForm, *domain.Post]{
		Method: http.MethodPost, Path: "", Binder: ez.BindForm, Roles: domain.Writers,
		Status: http.StatusCreated, Message: "Post created successfully",
		Handler: func(c *gin.Context, f *postForm) (*domain.Post, error) {
			in, done, err := f.input()
			defer done()
			if err != nil {
				return nil, err
			}
			return h.svc.Create(c.Request.Context(), ez.User(c), in)
		},
	})

	ez.RegisterAction(authed, ez.Action[postForm, *domain.Post]{
		Method: http.MethodPut, Path: "/:id", Binder: ez.BindForm, Roles: domain.Writers, Message: "Post updated successfully",
		Handler: func(c *gin.Context, f *postForm) (*domain.Post, error) {
			in, done, err := f.input()
			defer done()
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), ez.User(c), c.Param("id"), in)
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, any]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone, Roles: domain.Writers, Message: "Post deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, h.svc.Delete(c.Request.Context(), ez.User(c), c.Param("id"))
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *service.LikeResult]{
		Method: http.MethodPut, Path: "/:id/like", Binder: ez.BindNone, Auth: true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.LikeResult, error) {
			res, err := h.svc.ToggleLike(c.Request.Context(), ez.User(c), c.Param("id"))
			if err != nil {
				return nil, err
			}
			if res.Liked {
				ez.SetMessage(c, "Post liked")
			} else {
				ez.SetMessage(c, "Post unliked")
			}
			return res, nil
		},
	})
}
