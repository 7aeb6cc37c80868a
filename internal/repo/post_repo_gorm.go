package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"column/internal/domain"
)

type PostRepo struct{ db *gorm.DB }

func NewPostRepo(db *gorm.DB) *PostRepo { return &PostRepo{db: db} }

// Create 写入文章并同步 post_tags
func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return replaceTags(tx, p.ID, p.Tags)
	})
}

// Update 不覆盖 views，浏览数只走 IncrementViews
func (r *PostRepo) Update(ctx context.Context, p *domain.Post) error {
	p.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Post{ID: p.ID}).
			Select("title", "slug", "content", "excerpt", "cover_url", "cover_public_id", "status", "tags", "updated_at").
			Updates(p).Error
		if err != nil {
			return err
		}
		return replaceTags(tx, p.ID, p.Tags)
	})
}

func replaceTags(tx *gorm.DB, postID string, tags []string) error {
	if err := tx.Where("post_id = ?", postID).Delete(&domain.PostTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]domain.PostTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, domain.PostTag{PostID: postID, Tag: t})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *PostRepo) first(ctx context.Context, query string, args ...any) (*domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).Preload("Author").Where(query, args...).First(&p).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.first(ctx, "posts.id = ?", id)
}

func (r *PostRepo) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.first(ctx, "posts.slug = ?", slug)
}

// SlugConflicts 返回 base 以及 base-* 形式的已有 slug，精确匹配 base(-N)? 由调用方完成
func (r *PostRepo) SlugConflicts(ctx context.Context, base string) ([]domain.SlugRef, error) {
	var refs []domain.SlugRef
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Select("id", "slug").
		Where("slug = ? OR slug LIKE ? ESCAPE '"+likeEscape+"'", base, escapeLike(base)+"-%").
		Scan(&refs).Error
	return refs, err
}

func (r *PostRepo) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Post{}).Error
	})
}

// IncrementViews 单条 UPDATE，不与读取同事务
func (r *PostRepo) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// ToggleLike 先删；没删到说明之前没赞过，再插入
func (r *PostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&domain.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := domain.PostLike{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Model(&domain.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *PostRepo) LikerIDs(ctx context.Context, postID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&domain.PostLike{}).
		Where("post_id = ?", postID).Order("created_at").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PostRepo) CountComments(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

type feedRow struct {
	ID            string
	LikesCount    int64
	CommentsCount int64
	TrendingScore float64
}

// Feed 公开列表：先按排序取出 id 与计数，再加载文章与作者并按原顺序拼回
func (r *PostRepo) Feed(ctx context.Context, q domain.FeedQuery, now time.Time) ([]domain.FeedItem, int64, error) {
	offset, limit := pageArgs(q.Offset, q.Limit)
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&domain.Post{}).Where("posts.status = ?", domain.PostPublished)
		if q.Search != "" {
			p := containsPattern(q.Search)
			tx = tx.Where("(LOWER(posts.title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(posts.content) LIKE ? ESCAPE '"+likeEscape+"')", p, p)
		}
		if q.Tag != "" {
			tx = tx.Where("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag = ?)", q.Tag)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.FeedItem{}, 0, nil
	}

	hours, nowArg := hoursSinceExpr(r.db, now)
	score := fmt.Sprintf("((%.1f * %s + %.1f * %s + %.1f * posts.views) / (%s + %.1f))",
		domain.TrendingLikeWeight, likesCountExpr,
		domain.TrendingCommentWeight, commentsCountExpr,
		domain.TrendingViewWeight, hours, domain.TrendingHourOffset)

	tx := filtered().Select(
		"posts.id AS id, "+likesCountExpr+" AS likes_count, "+commentsCountExpr+" AS comments_count, "+score+" AS trending_score",
		nowArg,
	)
	switch q.Sort {
	case domain.SortOldest:
		tx = tx.Order("posts.created_at ASC")
	case domain.SortPopular:
		tx = tx.Order("likes_count DESC").Order("posts.created_at DESC")
	case domain.SortTrending:
		tx = tx.Order("trending_score DESC").Order("posts.created_at DESC")
	default:
		tx = tx.Order("posts.created_at DESC")
	}

	var rows []feedRow
	if err := tx.Order("posts.id").Offset(offset).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []domain.FeedItem{}, total, nil
	}

	posts, err := r.loadByIDs(ctx, rowIDs(rows))
	if err != nil {
		return nil, 0, err
	}
	items := make([]domain.FeedItem, 0, len(rows))
	for _, row := range rows {
		p, ok := posts[row.ID]
		if !ok {
			// 两步查询之间被删除
			continue
		}
		items = append(items, domain.FeedItem{
			Post:          p,
			LikesCount:    row.LikesCount,
			CommentsCount: row.CommentsCount,
			TrendingScore: row.TrendingScore,
		})
	}
	return items, total, nil
}

func rowIDs(rows []feedRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func (r *PostRepo) loadByIDs(ctx context.Context, ids []string) (map[string]domain.Post, error) {
	var posts []domain.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	out := make(map[string]domain.Post, len(posts))
	for _, p := range posts {
		out[p.ID] = p
	}
	return out, nil
}

// Related 共享至少一个标签的其他已发布文章，新的在前
func (r *PostRepo) Related(ctx context.Context, p *domain.Post, limit int) ([]domain.Post, error) {
	out := []domain.Post{}
	if len(p.Tags) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Preload("Author").
		Where("posts.status = ? AND posts.id <> ?", domain.PostPublished, p.ID).
		Where("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = posts.id AND pt.tag IN ?)", []string(p.Tags)).
		Order("posts.created_at DESC").Order("posts.id").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListByAuthor 作者自己的文章（含草稿）
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]domain.Post, int64, error) {
	offset, limit = pageArgs(offset, limit)
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Post{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	posts := []domain.Post{}
	err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepo) CoverIDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("author_id = ? AND cover_public_id <> ''", authorID).
		Pluck("cover_public_id", &ids).Error
	return ids, err
}

func (r *PostRepo) AdminList(ctx context.Context, f domain.AdminPostFilter, offset, limit int) ([]domain.AdminPostRow, int64, error) {
	offset, limit = pageArgs(offset, limit)
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Table("posts")
		if f.Status != "" {
			tx = tx.Where("posts.status = ?", f.Status)
		}
		if f.Search != "" {
			tx = tx.Where("LOWER(posts.title) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(f.Search))
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []domain.AdminPostRow{}
	err := filtered().
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Select("posts.id, posts.title, posts.slug, posts.status, posts.views, posts.created_at, " +
			"COALESCE(users.name, 'Unknown') AS author_name, COALESCE(users.email, 'Unknown') AS author_email, " +
			likesCountExpr + " AS likes_count").
		Order("posts.created_at DESC").Order("posts.id").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// AuthorStats 作者已发布文章数与这些文章收到的点赞数
func (r *PostRepo) AuthorStats(ctx context.Context, authorID string) (int64, int64, error) {
	var posts, likes int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Post{}).
		Where("author_id = ? AND status = ?", authorID, domain.PostPublished).
		Count(&posts).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&domain.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.author_id = ? AND posts.status = ?", authorID, domain.PostPublished).
		Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	return posts, likes, nil
}
