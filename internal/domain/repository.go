package domain

import (
	"context"
	"time"
)

// 查询不到时返回 (nil, nil)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByVerificationToken(ctx context.Context, hash string, now time.Time) (*User, error)
	FindByResetToken(ctx context.Context, hash string, now time.Time) (*User, error)
	UpdateBio(ctx context.Context, id, bio string) error
	SetStatus(ctx context.Context, id string, st UserStatus) error
	SetRole(ctx context.Context, id string, role Role) error
	SetVerificationToken(ctx context.Context, id, hash string, exp time.Time) error
	SetResetToken(ctx context.Context, id, hash string, exp time.Time) error
	MarkVerified(ctx context.Context, id, hash string, now time.Time) (bool, error)
	ResetPassword(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteCascade(ctx context.Context, id string) error
	List(ctx context.Context, f UserFilter, offset, limit int) ([]UserSummary, int64, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	SlugConflicts(ctx context.Context, base string) ([]SlugRef, error)
	DeleteCascade(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, count int64, err error)
	LikerIDs(ctx context.Context, postID string) ([]string, error)
	CountComments(ctx context.Context, postID string) (int64, error)
	Feed(ctx context.Context, q FeedQuery, now time.Time) ([]FeedItem, int64, error)
	Related(ctx context.Context, p *Post, limit int) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]Post, int64, error)
	CoverIDsByAuthor(ctx context.Context, authorID string) ([]string, error)
	AdminList(ctx context.Context, f AdminPostFilter, offset, limit int) ([]AdminPostRow, int64, error)
	AuthorStats(ctx context.Context, authorID string) (posts int64, likes int64, err error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
	ListByPost(ctx context.Context, postID string, skip, limit int) ([]Comment, int64, error)
}

type StatsRepository interface {
	Dashboard(ctx context.Context, recentUsers int) (*DashboardStats, error)
}
