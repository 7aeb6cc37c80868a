package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"column/internal/domain"
)

type CommentRepo struct{ db *gorm.DB }

func NewCommentRepo(db *gorm.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *CommentRepo) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).Preload("Author").First(&c, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Model(&domain.Comment{ID: c.ID}).
		Select("content", "updated_at").
		Updates(c).Error
}

func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{}).Error
}

// ListByPost 新的在前
func (r *CommentRepo) ListByPost(ctx context.Context, postID string, skip, limit int) ([]domain.Comment, int64, error) {
	skip, limit = pageArgs(skip, limit)
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []domain.Comment{}
	err := r.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
