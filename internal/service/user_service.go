package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"column/internal/apperr"
	"column/internal/domain"
	"column/pkg/utils"
)

const MaxBioLength = 500

type UserService struct {
	users  domain.UserRepository
	posts  domain.PostRepository
	images ImageStore
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, posts domain.PostRepository, images ImageStore, l *zap.Logger) *UserService {
	return &UserService{users: users, posts: posts, images: images, log: l}
}

func (s *UserService) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load profile failed", err)
	}
	if u == nil {
		return nil, errUserNotFound
	}
	posts, likes, err := s.posts.AuthorStats(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal("load profile failed", err)
	}
	return &domain.Profile{User: u, TotalPosts: posts, TotalLikesReceived: likes}, nil
}

type BioInput struct {
	Bio string `json:"bio"`
}

func (s *UserService) UpdateBio(ctx context.Context, actor *domain.User, in BioInput) (*domain.User, error) {
	bio := strings.TrimSpace(in.Bio)
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return nil, apperr.BadRequest("Bio must be 500 characters or fewer")
	}
	if err := s.users.UpdateBio(ctx, actor.ID, bio); err != nil {
		return nil, apperr.Internal("update bio failed", err)
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal("update bio failed", err)
	}
	if u == nil {
		return nil, errUserNotFound
	}
	return u, nil
}

type DeleteAccountInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	DeletionSuccess = "success"
	DeletionFailure = "failure"
)

type DeletionResult struct {
	DeletionStatus string `json:"deletionStatus"`
}

func deletionFailed(e *apperr.Error) *apperr.Error {
	return e.WithData(DeletionResult{DeletionStatus: DeletionFailure})
}

// DeleteAccount 需要重新确认邮箱和密码；数据库删除在一个事务内，图床清理在提交之后
func (s *UserService) DeleteAccount(ctx context.Context, actor *domain.User, in DeleteAccountInput) (*DeletionResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, deletionFailed(apperr.BadRequest("Required fields missing"))
	}
	if domain.NormalizeEmail(in.Email) != actor.Email {
		return nil, deletionFailed(apperr.Forbidden("Email does not match your account"))
	}
	if !utils.CheckPassword(in.Password, actor.PasswordHash) {
		return nil, deletionFailed(apperr.BadRequest("Incorrect Password"))
	}

	covers, err := s.posts.CoverIDsByAuthor(ctx, actor.ID)
	if err != nil {
		return nil, deletionFailed(apperr.Internal("Internal Server Error", err))
	}
	if err := s.users.DeleteCascade(ctx, actor.ID); err != nil {
		return nil, deletionFailed(apperr.Internal("Internal Server Error", err))
	}
	bg := context.WithoutCancel(ctx)
	for _, id := range covers {
		if err := s.images.Delete(bg, id); err != nil {
			s.log.Warn("cover asset delete failed", zap.String("uid", actor.ID), zap.String("public_id", id), zap.Error(err))
		}
	}
	s.log.Info("account deleted", zap.String("uid", actor.ID), zap.Int("covers", len(covers)))
	return &DeletionResult{DeletionStatus: DeletionSuccess}, nil
}
