package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"column/internal/apperr"
	"column/internal/domain"
	"column/pkg/utils"
)

const (
	MaxCoverBytes = 5 << 20
	RelatedLimit  = 3
)

type PostService struct {
	posts  domain.PostRepository
	images ImageStore
	log    *zap.Logger
	now    func() time.Time
}

func NewPostService(posts domain.PostRepository, images ImageStore, l *zap.Logger) *PostService {
	return &PostService{posts: posts, images: images, log: l, now: time.Now}
}

// PostInput 创建 / 更新共用；更新时 nil 字段表示不修改
type PostInput struct {
	Title   *string
	Content *string
	Status  *string
	Tags    *string
	Cover   *Upload
}

// ParseTags 接受 JSON 数组或逗号分隔
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var arr []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &arr) == nil {
		return domain.NormalizeTags(arr)
	}
	return domain.NormalizeTags(strings.Split(raw, ","))
}

func checkTitle(title string) error {
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return apperr.BadRequest(fmt.Sprintf("Title must be %d characters or fewer", domain.MaxTitleLength))
	}
	return nil
}

// parseTagsInput ParseTags 之后检查单个标签长度
func parseTagsInput(raw string) ([]string, error) {
	tags := ParseTags(raw)
	for _, t := range tags {
		if utf8.RuneCountInString(t) > domain.MaxTagLength {
			return nil, apperr.BadRequest(fmt.Sprintf("Each tag must be %d characters or fewer", domain.MaxTagLength))
		}
	}
	return tags, nil
}

func canModify(actor *domain.User, authorID string) bool {
	return actor != nil && (actor.ID == authorID || actor.Role == domain.RoleAdmin)
}

// uniqueSlug selfID 非空时排除自身
func (s *PostService) uniqueSlug(ctx context.Context, title, selfID string) (string, error) {
	base := BaseSlug(title)
	refs, err := s.posts.SlugConflicts(ctx, base)
	if err != nil {
		return "", err
	}
	existing := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.ID != selfID {
			existing = append(existing, r.Slug)
		}
	}
	return NextSlug(base, existing), nil
}

func (s *PostService) uploadCover(ctx context.Context, up *Upload) (domain.Image, error) {
	if up.Size > MaxCoverBytes {
		return domain.Image{}, apperr.BadRequest("Cover image must be 5MB or smaller")
	}
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return domain.Image{}, apperr.BadRequest("Cover image must be an image file")
	}
	img, err := s.images.Upload(ctx, up.Reader, up.Size, up.ContentType, up.Filename)
	if err != nil {
		return domain.Image{}, apperr.Upstream("Image upload failed", err)
	}
	return img, nil
}

// deleteAsset 图床删除失败只记日志
func (s *PostService) deleteAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.images.Delete(context.WithoutCancel(ctx), publicID); err != nil {
		s.log.Warn("cover asset delete failed", zap.String("public_id", publicID), zap.Error(err))
	}
}

func (s *PostService) Create(ctx context.Context, actor *domain.User, in PostInput) (*domain.Post, error) {
	if actor == nil || !domain.Writers.Allows(actor.Role) {
		return nil, errForbidden
	}
	title, content := "", ""
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		content = strings.TrimSpace(*in.Content)
	}
	if title == "" || content == "" {
		return nil, apperr.BadRequest("Title and content are required")
	}
	if err := checkTitle(title); err != nil {
		return nil, err
	}
	status := domain.PostDraft
	if in.Status != nil && *in.Status != "" {
		st, ok := domain.ParsePostStatus(*in.Status)
		if !ok {
			return nil, apperr.BadRequest("Invalid status")
		}
		status = st
	}
	tags := []string{}
	if in.Tags != nil {
		var err error
		if tags, err = parseTagsInput(*in.Tags); err != nil {
			return nil, err
		}
	}

	p := &domain.Post{
		ID:       utils.NewID(),
		Title:    title,
		Content:  content,
		Excerpt:  domain.MakeExcerpt(content),
		AuthorID: actor.ID,
		Status:   status,
		Tags:     tags,
	}
	slug, err := s.uniqueSlug(ctx, title, "")
	if err != nil {
		return nil, apperr.Internal("create post failed", err)
	}
	p.Slug = slug

	if in.Cover != nil {
		img, err := s.uploadCover(ctx, in.Cover)
		if err != nil {
			return nil, err
		}
		p.CoverImage = img
	}
	if err := s.posts.Create(ctx, p); err != nil {
		s.deleteAsset(ctx, p.CoverImage.PublicID)
		return nil, apperr.Internal("create post failed", err)
	}
	p.Author = &domain.Author{ID: actor.ID, Name: actor.Name, Email: actor.Email}
	s.log.Info("post created", zap.String("id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

func (s *PostService) loadOwned(ctx context.Context, actor *domain.User, id string) (*domain.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load post failed", err)
	}
	if p == nil {
		return nil, errPostNotFound
	}
	if !canModify(actor, p.AuthorID) {
		return nil, errForbidden
	}
	return p, nil
}

func (s *PostService) Update(ctx context.Context, actor *domain.User, id string, in PostInput) (*domain.Post, error) {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.BadRequest("Title cannot be empty")
		}
		if err := checkTitle(title); err != nil {
			return nil, err
		}
		if title != p.Title {
			slug, err := s.uniqueSlug(ctx, title, p.ID)
			if err != nil {
				return nil, apperr.Internal("update post failed", err)
			}
			p.Title, p.Slug = title, slug
		}
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, apperr.BadRequest("Content cannot be empty")
		}
		p.Content, p.Excerpt = content, domain.MakeExcerpt(content)
	}
	if in.Status != nil && *in.Status != "" {
		st, ok := domain.ParsePostStatus(*in.Status)
		if !ok {
			return nil, apperr.BadRequest("Invalid status")
		}
		p.Status = st
	}
	if in.Tags != nil {
		tags, err := parseTagsInput(*in.Tags)
		if err != nil {
			return nil, err
		}
		p.Tags = tags
	}

	oldCover := ""
	if in.Cover != nil {
		img, err := s.uploadCover(ctx, in.Cover)
		if err != nil {
			return nil, err
		}
		oldCover = p.CoverImage.PublicID
		p.CoverImage = img
	}
	if err := s.posts.Update(ctx, p); err != nil {
		if in.Cover != nil {
			s.deleteAsset(ctx, p.CoverImage.PublicID)
		}
		return nil, apperr.Internal("update post failed", err)
	}
	s.deleteAsset(ctx, oldCover)
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, actor *domain.User, id string) error {
	p, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.posts.DeleteCascade(ctx, p.ID); err != nil {
		return apperr.Internal("delete post failed", err)
	}
	s.deleteAsset(ctx, p.CoverImage.PublicID)
	s.log.Info("post deleted", zap.String("id", p.ID), zap.String("by", actor.ID))
	return nil
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

func (s *PostService) ToggleLike(ctx context.Context, actor *domain.User, id string) (*LikeResult, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("like failed", err)
	}
	if p == nil || !visibleTo(p, actor) {
		return nil, errPostNotFound
	}
	liked, n, err := s.posts.ToggleLike(ctx, p.ID, actor.ID)
	if err != nil {
		return nil, apperr.Internal("like failed", err)
	}
	return &LikeResult{Liked: liked, LikesCount: n}, nil
}

// visibleTo 草稿只对作者可见；viewer 为 nil 表示匿名
func visibleTo(p *domain.Post, viewer *domain.User) bool {
	if p.Status == domain.PostPublished {
		return true
	}
	return viewer != nil && viewer.ID == p.AuthorID
}

// GetBySlug viewer 为 nil 表示匿名；非作者访问浏览数 +1
func (s *PostService) GetBySlug(ctx context.Context, viewer *domain.User, slug string) (*domain.PostDetail, error) {
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Internal("load post failed", err)
	}
	if p == nil || !visibleTo(p, viewer) {
		return nil, errPostNotFound
	}
	if viewer == nil || viewer.ID != p.AuthorID {
		if err := s.posts.IncrementViews(ctx, p.ID); err != nil {
			return nil, apperr.Internal("load post failed", err)
		}
		p.Views++
	}
	likes, err := s.posts.LikerIDs(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal("load post failed", err)
	}
	comments, err := s.posts.CountComments(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal("load post failed", err)
	}
	d := &domain.PostDetail{Post: *p, Likes: likes, LikesCount: int64(len(likes)), CommentsCount: comments}
	if viewer != nil {
		for _, id := range likes {
			if id == viewer.ID {
				d.LikedByMe = true
				break
			}
		}
	}
	return d, nil
}

type FeedParams struct {
	PageParams
	Search string `form:"search"`
	Tag    string `form:"tag"`
	Sort   string `form:"sort"`
}

func (s *PostService) Feed(ctx context.Context, in FeedParams) (*Page[domain.FeedItem], error) {
	page, limit, err := in.resolve(DefaultFeedLimit)
	if err != nil {
		return nil, err
	}
	sort, ok := domain.ParseFeedSort(in.Sort)
	if !ok {
		return nil, apperr.BadRequest("sort must be one of recent, popular, trending, oldest")
	}
	q := domain.FeedQuery{
		Search: strings.TrimSpace(in.Search),
		Tag:    strings.ToLower(strings.TrimSpace(in.Tag)),
		Sort:   sort,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	items, total, err := s.posts.Feed(ctx, q, s.now())
	if err != nil {
		return nil, apperr.Internal("load posts failed", err)
	}
	return &Page[domain.FeedItem]{Items: items, Meta: domain.NewPageMeta(page, limit, total)}, nil
}

// Related 源文章对 viewer 不可见时按不存在处理
func (s *PostService) Related(ctx context.Context, viewer *domain.User, id string) ([]domain.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load related failed", err)
	}
	if p == nil || !visibleTo(p, viewer) {
		return nil, errPostNotFound
	}
	out, err := s.posts.Related(ctx, p, RelatedLimit)
	if err != nil {
		return nil, apperr.Internal("load related failed", err)
	}
	return out, nil
}

// Mine 当前用户的全部文章（含草稿）
func (s *PostService) Mine(ctx context.Context, actor *domain.User, in PageParams) (*Page[domain.Post], error) {
	page, limit, err := in.resolve(DefaultAdminLimit)
	if err != nil {
		return nil, err
	}
	posts, total, err := s.posts.ListByAuthor(ctx, actor.ID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("load posts failed", err)
	}
	return &Page[domain.Post]{Items: posts, Meta: domain.NewPageMeta(page, limit, total)}, nil
}

