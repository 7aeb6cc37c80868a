package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"column/internal/domain"
	"column/internal/service"
	"column/internal/transport/http/ez"
)

type AuthHandler struct{ svc *service.AuthService }

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

type emailIn struct {
	Email string `json:"email" binding:"required,email"`
}

type tokenIn struct {
	Token string `json:"token"`
}

type passwordIn struct {
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) MountAPI(e ez.EZ, g Guards) {
	pub := e.Group("/auth", chain(g.AuthLimit)...)

	ez.RegisterAction(pub, ez.Action[service.RegisterInput, *domain.User]{
		Method: http.MethodPost, Path: "/register", Binder: ez.BindJSON,
		Status: http.StatusCreated, Message: "User registered. Please check your email to verify your account.",
		Handler: func(c *gin.Context, in *service.RegisterInput) (*domain.User, error) {
			return h.svc.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(pub, ez.Action[service.LoginInput, *service.LoginResult]{
		Method: http.MethodPost, Path: "/login", Binder: ez.BindJSON, Message: "Login successful",
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.LoginResult, error) {
			return h.svc.Login(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(pub, ez.Action[tokenIn, any]{
		Method: http.MethodPost, Path: "/verify-email", Binder: ez.BindJSON, Message: "Email verified successfully",
		Handler: func(c *gin.Context, in *tokenIn) (any, error) {
			return nil, h.svc.VerifyEmail(c.Request.Context(), in.Token)
		},
	})

	ez.RegisterAction(pub, ez.Action[emailIn, any]{
		Method: http.MethodPost, Path: "/resend-verification", Binder: ez.BindJSON, Message: "Verification email sent",
		Handler: func(c *gin.Context, in *emailIn) (any, error) {
			return nil, h.svc.ResendVerification(c.Request.Context(), in.Email)
		},
	})

	ez.RegisterAction(pub, ez.Action[emailIn, any]{
		Method: http.MethodPost, Path: "/forgot-password", Binder: ez.BindJSON, Message: service.MsgForgotPassword,
		Handler: func(c *gin.Context, in *emailIn) (any, error) {
			return nil, h.svc.ForgotPassword(c.Request.Context(), in.Email)
		},
	})

	ez.RegisterAction(pub, ez.Action[passwordIn, any]{
		Method: http.MethodPost, Path: "/reset-password/:token", Binder: ez.BindJSON, Message: "Password reset successful",
		Handler: func(c *gin.Context, in *passwordIn) (any, error) {
			return nil, h.svc.ResetPassword(c.Request.Context(), c.Param("token"), in.Password)
		},
	})

	authed := e.Group("/auth", g.Required)
	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet, Path: "/me", Binder: ez.BindNone, Auth: true, Message: "User authenticated",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return ez.User(c), nil
		},
	})

	admin := e.Group("/auth", g.Admin)
	ez.RegisterAction(admin, ez.Action[service.RegisterInput, *domain.User]{
		Method: http.MethodPost, Path: "/admin/register", Binder: ez.BindJSON, Roles: domain.AdminOnly,
		Status: http.StatusCreated, Message: "User created",
		Handler: func(c *gin.Context, in *service.RegisterInput) (*domain.User, error) {
			return h.svc.AdminRegister(c.Request.Context(), *in)
		},
	})
}
