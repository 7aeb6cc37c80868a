package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"column/internal/apperr"
	"column/internal/core/cache"
	"column/internal/domain"
)

const (
	dashboardCacheKey = "column:admin:dashboard"
	recentUsersCount  = 5
)

type AdminService struct {
	users      domain.UserRepository
	posts      domain.PostRepository
	stats      domain.StatsRepository
	cache      *cache.Cache
	cacheTTL   time.Duration
	ownerEmail string
	log        *zap.Logger
}

type AdminOptions struct {
	Cache      *cache.Cache
	CacheTTL   time.Duration
	OwnerEmail string
}

func NewAdminService(users domain.UserRepository, posts domain.PostRepository, stats domain.StatsRepository, o AdminOptions, l *zap.Logger) *AdminService {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	return &AdminService{
		users:      users,
		posts:      posts,
		stats:      stats,
		cache:      o.Cache,
		cacheTTL:   o.CacheTTL,
		ownerEmail: domain.NormalizeEmail(o.OwnerEmail),
		log:        l,
	}
}

// Dashboard 配置了 redis 时缓存 30 秒
func (s *AdminService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	out, err := cache.GetOrLoadJSON(s.cache, ctx, dashboardCacheKey, s.cacheTTL,
		func(ctx context.Context) (*domain.DashboardStats, error) {
			return s.stats.Dashboard(ctx, recentUsersCount)
		})
	if err != nil {
		return nil, apperr.Internal("load dashboard failed", err)
	}
	return out, nil
}

type AdminPostParams struct {
	PageParams
	Status string `form:"status"`
	Search string `form:"search"`
}

func (s *AdminService) Posts(ctx context.Context, in AdminPostParams) (*Page[domain.AdminPostRow], error) {
	page, limit, err := in.resolve(DefaultAdminLimit)
	if err != nil {
		return nil, err
	}
	f := domain.AdminPostFilter{Search: strings.TrimSpace(in.Search)}
	if in.Status != "" {
		st, ok := domain.ParsePostStatus(in.Status)
		if !ok {
			return nil, apperr.BadRequest("Invalid status")
		}
		f.Status = st
	}
	rows, total, err := s.posts.AdminList(ctx, f, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("load posts failed", err)
	}
	return &Page[domain.AdminPostRow]{Items: rows, Meta: domain.NewPageMeta(page, limit, total)}, nil
}

type AdminUserParams struct {
	PageParams
	Status string `form:"status"`
	Search string `form:"search"`
}

func (s *AdminService) Users(ctx context.Context, in AdminUserParams) (*Page[domain.UserSummary], error) {
	page, limit, err := in.resolve(DefaultAdminLimit)
	if err != nil {
		return nil, err
	}
	f := domain.UserFilter{Search: strings.TrimSpace(in.Search)}
	if in.Status != "" {
		st, ok := domain.ParseUserStatus(in.Status)
		if !ok {
			return nil, apperr.BadRequest("Invalid status")
		}
		f.Status = st
	}
	rows, total, err := s.users.List(ctx, f, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("load users failed", err)
	}
	if rows == nil {
		rows = []domain.UserSummary{}
	}
	return &Page[domain.UserSummary]{Items: rows, Meta: domain.NewPageMeta(page, limit, total)}, nil
}

type UserStatusInput struct {
	Status string `json:"status"`
}

// SetUserStatus status 为空时在 active / blocked 之间切换；站长账号与自己的账号不可修改
func (s *AdminService) SetUserStatus(ctx context.Context, actor *domain.User, id string, in UserStatusInput) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("update status failed", err)
	}
	if u == nil {
		return nil, errUserNotFound
	}
	if s.ownerEmail != "" && u.Email == s.ownerEmail {
		return nil, apperr.Forbidden("The owner account cannot be blocked")
	}
	if u.ID == actor.ID {
		return nil, apperr.Forbidden("You cannot change your own status")
	}

	next := domain.StatusBlocked
	if u.Blocked() {
		next = domain.StatusActive
	}
	if in.Status != "" {
		st, ok := domain.ParseUserStatus(in.Status)
		if !ok {
			return nil, apperr.BadRequest("Invalid status")
		}
		next = st
	}
	if err := s.users.SetStatus(ctx, u.ID, next); err != nil {
		return nil, apperr.Internal("update status failed", err)
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.log.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
	u.Status = next
	s.log.Info("user status changed", zap.String("uid", u.ID), zap.String("status", string(next)), zap.String("by", actor.ID))
	return u, nil
}
