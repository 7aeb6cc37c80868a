package repo

import (
	"context"

	"gorm.io/gorm"

	"column/internal/domain"
)

type StatsRepo struct{ db *gorm.DB }

func NewStatsRepo(db *gorm.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Dashboard(ctx context.Context, recentUsers int) (*domain.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	s := &domain.DashboardStats{RecentUsers: []domain.RecentUser{}}

	counts := []struct {
		model any
		dst   *int64
	}{
		{&domain.User{}, &s.TotalUsers},
		{&domain.Post{}, &s.TotalPosts},
		{&domain.Comment{}, &s.TotalComments},
		{&domain.PostLike{}, &s.TotalLikes},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var err error
	if s.MostLikedPost, err = r.topPost(db, likesCountExpr+" AS likes_count", "likes_count DESC"); err != nil {
		return nil, err
	}
	if s.MostCommentedPost, err = r.topPost(db, commentsCountExpr+" AS comments_count", "comments_count DESC"); err != nil {
		return nil, err
	}
	if s.MostViewedPost, err = r.topPost(db, "posts.views AS views", "posts.views DESC"); err != nil {
		return nil, err
	}
	// 没有评论时不给出“评论最多”的文章
	if s.MostCommentedPost != nil && s.MostCommentedPost.CommentsCount == 0 {
		s.MostCommentedPost = nil
	}

	var top []domain.TopAuthor
	err = db.Table("posts").
		Joins("JOIN users ON users.id = posts.author_id").
		Select("users.id AS id, users.name AS name, users.email AS email, COUNT(*) AS post_count").
		Group("users.id, users.name, users.email").
		Order("post_count DESC").Order("users.id").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		s.TopAuthor = &top[0]
	}

	err = db.Model(&domain.User{}).
		Select("id", "name", "email", "created_at").
		Order("created_at DESC").Order("id").
		Limit(recentUsers).
		Scan(&s.RecentUsers).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StatsRepo) topPost(db *gorm.DB, metric, order string) (*domain.PostHighlight, error) {
	var rows []domain.PostHighlight
	err := db.Table("posts").
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Select("posts.id AS id, posts.title AS title, posts.slug AS slug, posts.cover_url AS cover_image, " +
			"COALESCE(users.name, 'Unknown') AS author_name, " + metric).
		Order(order).Order("posts.created_at DESC").Order("posts.id").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}
