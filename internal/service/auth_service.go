package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"column/internal/apperr"
	"column/internal/core/auth"
	"column/internal/domain"
	"column/pkg/utils"
)

const (
	MinPasswordLength = 6

	msgInvalidCredentials  = "Invalid credentials"
	msgBlocked             = "Your account has been blocked"
	msgVerifyFirst         = "Please verify your email before logging in. Check your inbox for the verification link."
	msgInvalidVerification = "Invalid or expired verification token"
	msgInvalidReset        = "Invalid or expired reset token"
	MsgForgotPassword      = "If an account with that email exists, a password reset link has been sent"
)

type AuthService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	mail  Mailer
	log   *zap.Logger
	now   func() time.Time
}

func NewAuthService(users domain.UserRepository, jwt *auth.JWTer, mail Mailer, l *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, mail: mail, log: l, now: time.Now}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// 仅管理员注册时生效
	Role string `json:"role"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// UnverifiedData 未验证登录时返回给客户端的标记
type UnverifiedData struct {
	IsVerified          bool   `json:"isVerified"`
	VerificationMessage string `json:"verificationMessage"`
}

func (s *AuthService) newUser(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.BadRequest("Name, email, and password are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.BadRequest("Password must be at least 6 characters")
	}
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User already exists")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	return &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
	}, nil
}

// Register 自助注册；邮件发不出去就回滚账号
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u, err := s.newUser(ctx, in, domain.DefaultRole)
	if err != nil {
		return nil, err
	}
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	exp := s.now().UTC().Add(auth.VerificationTokenTTL)
	u.VerificationTokenHash, u.VerificationTokenExpiresAt = hash, &exp

	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	if err := s.mail.SendVerification(ctx, u.Email, u.Name, raw); err != nil {
		s.log.Error("verification email failed, rolling back user", zap.String("uid", u.ID), zap.Error(err))
		if derr := s.users.Delete(context.WithoutCancel(ctx), u.ID); derr != nil {
			s.log.Error("rollback user failed", zap.String("uid", u.ID), zap.Error(derr))
		}
		return nil, apperr.Internal("Failed to send verification email. Please try again.", err)
	}
	s.log.Info("user registered", zap.String("uid", u.ID))
	return u, nil
}

// AdminRegister 管理员直接建号，可指定角色，账号直接视为已验证
func (s *AuthService) AdminRegister(ctx context.Context, in RegisterInput) (*domain.User, error) {
	role := domain.DefaultRole
	if in.Role != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, apperr.BadRequest("Invalid role")
		}
		role = r
	}
	u, err := s.newUser(ctx, in, role)
	if err != nil {
		return nil, err
	}
	u.IsVerified = true
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.Internal("register failed", err)
	}
	s.log.Info("user created by admin", zap.String("uid", u.ID), zap.String("role", string(role)))
	return u, nil
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 检查顺序：账号存在 → 已验证 → 未封禁 → 密码
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal("login failed", err)
	}
	if u == nil {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !u.IsVerified {
		return nil, apperr.Forbidden("Email not verified").WithData(UnverifiedData{
			IsVerified:          false,
			VerificationMessage: msgVerifyFirst,
		})
	}
	if u.Blocked() {
		return nil, apperr.Forbidden(msgBlocked)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal("login failed", err)
	}
	return &LoginResult{Token: tok, User: u}, nil
}

// Authenticate 校验 bearer token 并重新读取用户，封禁立即生效
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed")
	}
	u, err := s.users.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, apperr.Internal("authenticate failed", err)
	}
	if u == nil {
		return nil, apperr.Unauthorized("Not authorized, user not found")
	}
	if u.Blocked() {
		return nil, apperr.Forbidden(msgBlocked)
	}
	return u, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return apperr.BadRequest(msgInvalidVerification)
	}
	u, err := s.users.FindByVerificationToken(ctx, auth.HashToken(rawToken), s.now())
	if err != nil {
		return apperr.Internal("verify failed", err)
	}
	if u == nil {
		return apperr.BadRequest(msgInvalidVerification)
	}
	ok, err := s.users.MarkVerified(ctx, u.ID, u.VerificationTokenHash, s.now())
	if err != nil {
		return apperr.Internal("verify failed", err)
	}
	if !ok {
		return apperr.BadRequest(msgInvalidVerification)
	}
	return nil
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("resend failed", err)
	}
	if u == nil {
		return errUserNotFound
	}
	if u.IsVerified {
		return apperr.BadRequest("Email is already verified")
	}
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		return apperr.Internal("resend failed", err)
	}
	exp := s.now().UTC().Add(auth.VerificationTokenTTL)
	if err := s.users.SetVerificationToken(ctx, u.ID, hash, exp); err != nil {
		return apperr.Internal("resend failed", err)
	}
	if err := s.mail.SendVerification(ctx, u.Email, u.Name, raw); err != nil {
		return apperr.Upstream("Failed to send verification email", err)
	}
	return nil
}

// ForgotPassword 邮箱不存在时同样返回成功，避免枚举账号
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("forgot password failed", err)
	}
	if u == nil {
		return nil
	}
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		return apperr.Internal("forgot password failed", err)
	}
	exp := s.now().UTC().Add(auth.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, hash, exp); err != nil {
		return apperr.Internal("forgot password failed", err)
	}
	// 发信失败也按成功返回，否则能据此区分邮箱是否注册
	if err := s.mail.SendPasswordReset(ctx, u.Email, u.Name, raw); err != nil {
		s.log.Error("password reset email failed", zap.String("uid", u.ID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string) error {
	if len(password) < MinPasswordLength {
		return apperr.BadRequest("Password must be at least 6 characters")
	}
	u, err := s.users.FindByResetToken(ctx, auth.HashToken(rawToken), s.now())
	if err != nil {
		return apperr.Internal("reset failed", err)
	}
	if u == nil {
		return apperr.BadRequest(msgInvalidReset)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperr.Internal("reset failed", err)
	}
	ok, err := s.users.ResetPassword(ctx, u.ID, u.ResetTokenHash, hash, s.now())
	if err != nil {
		return apperr.Internal("reset failed", err)
	}
	if !ok {
		return apperr.BadRequest(msgInvalidReset)
	}
	s.log.Info("password reset", zap.String("uid", u.ID))
	return nil
}
