package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"column/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *UserRepo) FindByVerificationToken(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	if hash == "" {
		return nil, nil
	}
	return r.first(ctx, "verification_token_hash = ? AND verification_token_expires_at > ?", hash, now.UTC())
}

func (r *UserRepo) FindByResetToken(ctx context.Context, hash string, now time.Time) (*domain.User, error) {
	if hash == "" {
		return nil, nil
	}
	return r.first(ctx, "reset_token_hash = ? AND reset_token_expires_at > ?", hash, now.UTC())
}

// 以下写操作只更新各自的列，不整行回写，也不会把已删除的行插回去

func (r *UserRepo) updates(ctx context.Context, id string, cols map[string]any) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(cols).Error
}

func (r *UserRepo) UpdateBio(ctx context.Context, id, bio string) error {
	return r.updates(ctx, id, map[string]any{"bio": bio})
}

func (r *UserRepo) SetStatus(ctx context.Context, id string, st domain.UserStatus) error {
	return r.updates(ctx, id, map[string]any{"status": st})
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	return r.updates(ctx, id, map[string]any{"role": role})
}

func (r *UserRepo) SetVerificationToken(ctx context.Context, id, hash string, exp time.Time) error {
	return r.updates(ctx, id, map[string]any{
		"verification_token_hash":       hash,
		"verification_token_expires_at": exp.UTC(),
	})
}

func (r *UserRepo) SetResetToken(ctx context.Context, id, hash string, exp time.Time) error {
	return r.updates(ctx, id, map[string]any{
		"reset_token_hash":       hash,
		"reset_token_expires_at": exp.UTC(),
	})
}

// MarkVerified 仅当 token 仍是 hash 且未过期时生效；返回 false 表示 token 已被用掉或过期
func (r *UserRepo) MarkVerified(ctx context.Context, id, hash string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND verification_token_hash = ? AND verification_token_expires_at > ?", id, hash, now.UTC()).
		Updates(map[string]any{
			"is_verified":                   true,
			"verification_token_hash":       "",
			"verification_token_expires_at": nil,
		})
	return res.RowsAffected == 1, res.Error
}

// ResetPassword 换密码并清掉 reset token，条件同 MarkVerified
func (r *UserRepo) ResetPassword(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND reset_token_hash = ? AND reset_token_expires_at > ?", id, tokenHash, now.UTC()).
		Updates(map[string]any{
			"password_hash":          passwordHash,
			"reset_token_hash":       "",
			"reset_token_expires_at": nil,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
}

// DeleteCascade 一个事务内删除用户及其全部内容：点赞、评论、文章（含文章下的评论/点赞/标签）
func (r *UserRepo) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB { return tx.Model(&domain.Post{}).Select("id").Where("author_id = ?", id) }
		steps := []func() error{
			func() error {
				return tx.Where("user_id = ? OR post_id IN (?)", id, owned()).Delete(&domain.PostLike{}).Error
			},
			func() error {
				return tx.Where("author_id = ? OR post_id IN (?)", id, owned()).Delete(&domain.Comment{}).Error
			},
			func() error {
				return tx.Where("post_id IN (?)", owned()).Delete(&domain.PostTag{}).Error
			},
			func() error { return tx.Where("author_id = ?", id).Delete(&domain.Post{}).Error },
			func() error { return tx.Where("id = ?", id).Delete(&domain.User{}).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter, offset, limit int) ([]domain.UserSummary, int64, error) {
	offset, limit = pageArgs(offset, limit)
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&domain.User{})
		if f.Search != "" {
			p := containsPattern(f.Search)
			tx = tx.Where("(LOWER(users.name) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(users.email) LIKE ? ESCAPE '"+likeEscape+"')", p, p)
		}
		if f.Status != "" {
			tx = tx.Where("users.status = ?", f.Status)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.UserSummary
	err := filtered().
		Select("users.id, users.name, users.email, users.role, users.status, users.is_verified, users.created_at, " +
			"(SELECT COUNT(*) FROM posts p WHERE p.author_id = users.id) AS post_count").
		Order("users.created_at DESC").Order("users.id").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
