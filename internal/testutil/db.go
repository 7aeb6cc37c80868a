// Package testutil 测试用的内存库与数据构造
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"column/internal/core/database"
	"column/internal/domain"
	"column/pkg/utils"
)

// NewDB 每个测试一个独立的内存 sqlite 库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

const Password = "secret123"

type UserOpt func(*domain.User)

func Verified(u *domain.User) { u.IsVerified = true }
func Blocked(u *domain.User)  { u.Status = domain.StatusBlocked }
func AsAdmin(u *domain.User)  { u.Role = domain.RoleAdmin }
func AsReader(u *domain.User) { u.Role = domain.RoleReader }

// SeedUser 默认密码为 Password
func SeedUser(t testing.TB, db *gorm.DB, name string, opts ...UserOpt) *domain.User {
	t.Helper()
	hash, err := utils.HashPassword(Password)
	require.NoError(t, err)
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        domain.NormalizeEmail(name + "@example.com"),
		PasswordHash: hash,
		Role:         domain.RoleAuthor,
		Status:       domain.StatusActive,
	}
	for _, o := range opts {
		o(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type PostOpt func(*domain.Post)

func Draft(p *domain.Post) { p.Status = domain.PostDraft }

func Tags(tags ...string) PostOpt {
	return func(p *domain.Post) { p.Tags = domain.NormalizeTags(tags) }
}

func CreatedAt(at time.Time) PostOpt {
	return func(p *domain.Post) { p.CreatedAt = at.UTC() }
}

func Views(n int64) PostOpt {
	return func(p *domain.Post) { p.Views = n }
}

func Cover(publicID string) PostOpt {
	return func(p *domain.Post) {
		p.CoverImage = domain.Image{URL: "http://img/" + publicID, PublicID: publicID}
	}
}

// SeedPost 默认已发布，slug 取自标题
func SeedPost(t testing.TB, db *gorm.DB, author *domain.User, title string, opts ...PostOpt) *domain.Post {
	t.Helper()
	p := &domain.Post{
		ID:       utils.NewID(),
		Title:    title,
		Slug:     strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Content:  "content of " + title,
		Excerpt:  domain.MakeExcerpt("content of " + title),
		AuthorID: author.ID,
		Status:   domain.PostPublished,
		Tags:     []string{},
	}
	for _, o := range opts {
		o(p)
	}
	require.NoError(t, db.Omit("Author").Create(p).Error)
	for _, tag := range p.Tags {
		require.NoError(t, db.Create(&domain.PostTag{PostID: p.ID, Tag: tag}).Error)
	}
	return p
}

func SeedLike(t testing.TB, db *gorm.DB, p *domain.Post, u *domain.User) {
	t.Helper()
	require.NoError(t, db.Create(&domain.PostLike{PostID: p.ID, UserID: u.ID, CreatedAt: time.Now().UTC()}).Error)
}

func SeedComment(t testing.TB, db *gorm.DB, p *domain.Post, u *domain.User, content string) *domain.Comment {
	t.Helper()
	c := &domain.Comment{ID: utils.NewID(), Content: content, AuthorID: u.ID, PostID: p.ID}
	require.NoError(t, db.Omit("Author").Create(c).Error)
	return c
}

func Count(t testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.WithContext(context.Background()).Model(model).Where(query, args...).Count(&n).Error)
	return n
}
