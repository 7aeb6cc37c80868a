package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column/internal/domain"
	tu "column/internal/testutil"
)

func TestUserRepoLookups(t *testing.T) {
	db := tu.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	u := tu.SeedUser(t, db, "dave")

	got, err := repo.FindByEmail(ctx, "  DAVE@example.com ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.FindByID(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now().UTC()
	require.NoError(t, repo.SetVerificationToken(ctx, u.ID, "vhash", now.Add(time.Hour)))
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "rhash", now.Add(-time.Minute)))

	got, err = repo.FindByVerificationToken(ctx, "vhash", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.FindByVerificationToken(ctx, "vhash", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, got, "expired token must not match")

	got, err = repo.FindByResetToken(ctx, "rhash", now)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindByVerificationToken(ctx, "", now)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoTokensAreSingleUse(t *testing.T) {
	db := tu.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	u := tu.SeedUser(t, db, "tok")
	now := time.Now().UTC()

	require.NoError(t, repo.SetVerificationToken(ctx, u.ID, "vhash", now.Add(time.Hour)))
	ok, err := repo.MarkVerified(ctx, u.ID, "other", now)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.MarkVerified(ctx, u.ID, "vhash", now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkVerified(ctx, u.ID, "vhash", now)
	require.NoError(t, err)
	assert.False(t, ok, "second use")

	require.NoError(t, repo.SetResetToken(ctx, u.ID, "rhash", now.Add(15*time.Minute)))
	ok, err = repo.ResetPassword(ctx, u.ID, "rhash", "newhash", now.Add(16*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "expired")
	ok, err = repo.ResetPassword(ctx, u.ID, "rhash", "newhash", now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ResetPassword(ctx, u.ID, "rhash", "again", now)
	require.NoError(t, err)
	assert.False(t, ok, "second use")

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Empty(t, got.ResetTokenHash)
	assert.Nil(t, got.ResetTokenExpiresAt)
}

// 列级更新不会回写其他字段，也不会插回已删除的行
func TestUserRepoScopedWrites(t *testing.T) {
	db := tu.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	u := tu.SeedUser(t, db, "scoped")

	require.NoError(t, repo.SetStatus(ctx, u.ID, domain.StatusBlocked))
	require.NoError(t, repo.UpdateBio(ctx, u.ID, "hello"))
	require.NoError(t, repo.SetRole(ctx, u.ID, domain.RoleReader))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, got.Status)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, domain.RoleReader, got.Role)

	require.NoError(t, repo.Delete(ctx, u.ID))
	require.NoError(t, repo.UpdateBio(ctx, u.ID, "ghost"))
	assert.Equal(t, int64(0), tu.Count(t, db, &domain.User{}, "id = ?", u.ID))
}

func TestUserRepoList(t *testing.T) {
	db := tu.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	erin := tu.SeedUser(t, db, "erin")
	tu.SeedUser(t, db, "frank", tu.Blocked)
	tu.SeedPost(t, db, erin, "One")
	tu.SeedPost(t, db, erin, "Two", tu.Draft)

	rows, total, err := repo.List(ctx, domain.UserFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, domain.UserFilter{Search: "ERIN"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].PostCount)

	rows, _, err = repo.List(ctx, domain.UserFilter{Status: domain.StatusBlocked}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "frank", rows[0].Name)
}

func TestUserRepoDeleteCascade(t *testing.T) {
	db := tu.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	gone := tu.SeedUser(t, db, "gone")
	stay := tu.SeedUser(t, db, "stay")

	own := tu.SeedPost(t, db, gone, "Own", tu.Tags("go"))
	theirs := tu.SeedPost(t, db, stay, "Theirs", tu.Tags("go"))
	tu.SeedLike(t, db, own, stay)
	tu.SeedLike(t, db, theirs, gone)
	tu.SeedLike(t, db, theirs, stay)
	tu.SeedComment(t, db, own, stay, "on gone's post")
	tu.SeedComment(t, db, theirs, gone, "by gone")
	kept := tu.SeedComment(t, db, theirs, stay, "by stay")

	require.NoError(t, repo.DeleteCascade(ctx, gone.ID))

	assert.Equal(t, int64(0), tu.Count(t, db, &domain.User{}, "id = ?", gone.ID))
	assert.Equal(t, int64(0), tu.Count(t, db, &domain.Post{}, "author_id = ?", gone.ID))
	assert.Equal(t, int64(0), tu.Count(t, db, &domain.PostTag{}, "post_id = ?", own.ID))
	assert.Equal(t, int64(0), tu.Count(t, db, &domain.PostLike{}, "user_id = ? OR post_id = ?", gone.ID, own.ID))
	assert.Equal(t, int64(0), tu.Count(t, db, &domain.Comment{}, "author_id = ? OR post_id = ?", gone.ID, own.ID))

	assert.Equal(t, int64(1), tu.Count(t, db, &domain.Post{}, "id = ?", theirs.ID))
	assert.Equal(t, int64(1), tu.Count(t, db, &domain.PostLike{}, "post_id = ?", theirs.ID))
	assert.Equal(t, int64(1), tu.Count(t, db, &domain.Comment{}, "id = ?", kept.ID))
}

func TestStatsDashboard(t *testing.T) {
	db := tu.NewDB(t)
	ctx := context.Background()

	empty, err := NewStatsRepo(db).Dashboard(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, empty.MostLikedPost)
	assert.Nil(t, empty.TopAuthor)
	assert.Empty(t, empty.RecentUsers)

	a := tu.SeedUser(t, db, "hana")
	b := tu.SeedUser(t, db, "ivan")
	liked := tu.SeedPost(t, db, a, "Liked", tu.Cover("c/liked.png"))
	viewed := tu.SeedPost(t, db, a, "Viewed", tu.Views(99))
	talked := tu.SeedPost(t, db, b, "Talked")
	tu.SeedLike(t, db, liked, a)
	tu.SeedLike(t, db, liked, b)
	tu.SeedComment(t, db, talked, a, "1")
	tu.SeedComment(t, db, talked, b, "2")
	tu.SeedComment(t, db, viewed, b, "3")

	s, err := NewStatsRepo(db).Dashboard(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.TotalUsers)
	assert.Equal(t, int64(3), s.TotalPosts)
	assert.Equal(t, int64(3), s.TotalComments)
	assert.Equal(t, int64(2), s.TotalLikes)

	require.NotNil(t, s.MostLikedPost)
	assert.Equal(t, "Liked", s.MostLikedPost.Title)
	assert.Equal(t, int64(2), s.MostLikedPost.LikesCount)
	assert.Equal(t, "http://img/c/liked.png", s.MostLikedPost.CoverImage)
	assert.Equal(t, "hana", s.MostLikedPost.AuthorName)

	require.NotNil(t, s.MostCommentedPost)
	assert.Equal(t, "Talked", s.MostCommentedPost.Title)
	assert.Equal(t, int64(2), s.MostCommentedPost.CommentsCount)

	require.NotNil(t, s.MostViewedPost)
	assert.Equal(t, int64(99), s.MostViewedPost.Views)

	require.NotNil(t, s.TopAuthor)
	assert.Equal(t, "hana", s.TopAuthor.Name)
	assert.Equal(t, int64(2), s.TopAuthor.PostCount)
	assert.Len(t, s.RecentUsers, 2)
}
