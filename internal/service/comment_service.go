package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"column/internal/apperr"
	"column/internal/domain"
	"column/pkg/utils"
)

type CommentService struct {
	comments domain.CommentRepository
	posts    domain.PostRepository
	log      *zap.Logger
}

func NewCommentService(comments domain.CommentRepository, posts domain.PostRepository, l *zap.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, log: l}
}

type CommentInput struct {
	Content string `json:"content" binding:"required"`
}

func cleanContent(raw string) (string, error) {
	c := strings.TrimSpace(raw)
	if c == "" {
		return "", apperr.BadRequest("Content is required")
	}
	if utf8.RuneCountInString(c) > domain.MaxCommentLength {
		return "", apperr.BadRequest("Comment must be 2000 characters or fewer")
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, actor *domain.User, postID string, in CommentInput) (*domain.Comment, error) {
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperr.Internal("create comment failed", err)
	}
	if p == nil || !visibleTo(p, actor) {
		return nil, errPostNotFound
	}
	c := &domain.Comment{
		ID:       utils.NewID(),
		Content:  content,
		AuthorID: actor.ID,
		PostID:   p.ID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, apperr.Internal("create comment failed", err)
	}
	c.Author = &domain.Author{ID: actor.ID, Name: actor.Name, Email: actor.Email}
	return c, nil
}

type CommentListParams struct {
	Skip  *int `form:"skip"`
	Limit *int `form:"limit"`
}

type CommentMeta struct {
	Total   int64 `json:"total"`
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

// List 文章不存在或对 viewer 不可见（草稿）时返回 404
func (s *CommentService) List(ctx context.Context, viewer *domain.User, postID string, in CommentListParams) (*Page[domain.Comment], error) {
	skip, limit := 0, DefaultCommentLimit
	if in.Skip != nil {
		skip = *in.Skip
	}
	if in.Limit != nil {
		limit = *in.Limit
	}
	if skip < 0 {
		return nil, apperr.BadRequest("skip must not be negative")
	}
	if limit < 1 {
		return nil, errBadLimit
	}
	limit = min(limit, MaxPageLimit)

	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, apperr.Internal("load comments failed", err)
	}
	if p == nil || !visibleTo(p, viewer) {
		return nil, errPostNotFound
	}
	items, total, err := s.comments.ListByPost(ctx, postID, skip, limit)
	if err != nil {
		return nil, apperr.Internal("load comments failed", err)
	}
	meta := CommentMeta{Total: total, Skip: skip, Limit: limit, HasMore: int64(skip+len(items)) < total}
	return &Page[domain.Comment]{Items: items, Meta: meta}, nil
}

func (s *CommentService) loadOwned(ctx context.Context, actor *domain.User, id string) (*domain.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load comment failed", err)
	}
	if c == nil {
		return nil, errCommentNotFound
	}
	if !canModify(actor, c.AuthorID) {
		return nil, errForbidden
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor *domain.User, id string, in CommentInput) (*domain.Comment, error) {
	content, err := cleanContent(in.Content)
	if err != nil {
		return nil, err
	}
	c, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c.Content = content
	c.UpdatedAt = time.Now().UTC()
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, apperr.Internal("update comment failed", err)
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, actor *domain.User, id string) error {
	c, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, c.ID); err != nil {
		return apperr.Internal("delete comment failed", err)
	}
	s.log.Info("comment deleted", zap.String("id", c.ID), zap.String("by", actor.ID))
	return nil
}
