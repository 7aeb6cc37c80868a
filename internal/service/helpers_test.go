package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"column/internal/core/auth"
	"column/internal/domain"
	"column/internal/repo"
	tu "column/internal/testutil"
)

type sentMail struct {
	Kind, To, Token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendVerification(_ context.Context, to, _, raw string) error {
	return f.record("verify", to, raw)
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, _, raw string) error {
	return f.record("reset", to, raw)
}

func (f *fakeMailer) record(kind, to, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Kind: kind, To: to, Token: raw})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

type fakeImages struct {
	mu        sync.Mutex
	n         int
	live      map[string]bool
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeImages() *fakeImages { return &fakeImages{live: map[string]bool{}} }

func (f *fakeImages) Upload(_ context.Context, r io.Reader, _ int64, _ string, _ string) (domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return domain.Image{}, f.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	f.n++
	id := "covers/" + strings.Repeat("x", f.n)
	f.live[id] = true
	return domain.Image{URL: "http://img/" + id, PublicID: id}, nil
}

func (f *fakeImages) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.live, id)
	return nil
}

func pngUpload() *Upload {
	return &Upload{Reader: strings.NewReader("png"), Size: 3, ContentType: "image/png", Filename: "c.png"}
}

var errBoom = errors.New("boom")

type env struct {
	db       *gorm.DB
	mail     *fakeMailer
	images   *fakeImages
	jwt      *auth.JWTer
	auth     *AuthService
	posts    *PostService
	comments *CommentService
	admin    *AdminService
	users    *UserService
	ctx      context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := tu.NewDB(t)
	l := zap.NewNop()
	userRepo, postRepo := repo.NewUserRepo(db), repo.NewPostRepo(db)
	e := &env{
		db:     db,
		mail:   &fakeMailer{},
		images: newFakeImages(),
		jwt:    &auth.JWTer{Secret: []byte("s"), Issuer: "column", TTL: auth.DefaultTTL},
		ctx:    context.Background(),
	}
	e.auth = NewAuthService(userRepo, e.jwt, e.mail, l)
	e.posts = NewPostService(postRepo, e.images, l)
	e.comments = NewCommentService(repo.NewCommentRepo(db), postRepo, l)
	e.admin = NewAdminService(userRepo, postRepo, repo.NewStatsRepo(db), AdminOptions{OwnerEmail: "owner@example.com"}, l)
	e.users = NewUserService(userRepo, postRepo, e.images, l)
	return e
}

func ptr[T any](v T) *T { return &v }

// shiftClock 让 AuthService 的时钟前进
func (e *env) shiftClock(d time.Duration) {
	e.auth.now = func() time.Time { return time.Now().Add(d) }
}
