package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column/internal/domain"
	tu "column/internal/testutil"
)

func TestProfileCounts(t *testing.T) {
	e := newEnv(t)
	a := tu.SeedUser(t, e.db, "prof", tu.Verified)
	fan := tu.SeedUser(t, e.db, "fan", tu.Verified)
	p1 := tu.SeedPost(t, e.db, a, "One")
	p2 := tu.SeedPost(t, e.db, a, "Two", tu.Draft)
	tu.SeedLike(t, e.db, p1, fan)
	tu.SeedLike(t, e.db, p2, fan)

	got, err := e.users.Profile(e.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.User.ID)
	assert.Equal(t, int64(1), got.TotalPosts, "drafts are not counted")
	assert.Equal(t, int64(1), got.TotalLikesReceived)

	_, err = e.users.Profile(e.ctx, "missing")
	requireCode(t, err, http.StatusNotFound)
}

func TestUpdateBio(t *testing.T) {
	e := newEnv(t)
	u := tu.SeedUser(t, e.db, "bio", tu.Verified)

	got, err := e.users.UpdateBio(e.ctx, u, BioInput{Bio: "  gopher  "})
	require.NoError(t, err)
	assert.Equal(t, "gopher", got.Bio)
	assert.Equal(t, int64(1), tu.Count(t, e.db, &domain.User{}, "id = ? AND bio = ?", u.ID, "gopher"))

	_, err = e.users.UpdateBio(e.ctx, u, BioInput{Bio: strings.Repeat("b", MaxBioLength+1)})
	requireCode(t, err, http.StatusBadRequest)
}

func TestDeleteAccountFailures(t *testing.T) {
	e := newEnv(t)
	u := tu.SeedUser(t, e.db, "keep", tu.Verified)

	cases := []struct {
		name string
		in   DeleteAccountInput
		code int
	}{
		{"missing", DeleteAccountInput{Email: u.Email}, http.StatusBadRequest},
		{"other email", DeleteAccountInput{Email: "else@example.com", Password: tu.Password}, http.StatusForbidden},
		{"wrong password", DeleteAccountInput{Email: u.Email, Password: "nope"}, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := e.users.DeleteAccount(e.ctx, u, c.in)
			ae := requireCode(t, err, c.code)
			assert.Equal(t, DeletionResult{DeletionStatus: DeletionFailure}, ae.Data)
		})
	}
	assert.Equal(t, int64(1), tu.Count(t, e.db, &domain.User{}, "id = ?", u.ID))
}

func TestDeleteAccountCascades(t *testing.T) {
	e := newEnv(t)
	u := tu.SeedUser(t, e.db, "leaver", tu.Verified)
	other := tu.SeedUser(t, e.db, "stayer", tu.Verified)
	mine := tu.SeedPost(t, e.db, u, "Mine", tu.Tags("go"), tu.Cover("covers/mine"))
	theirs := tu.SeedPost(t, e.db, other, "Theirs")
	tu.SeedComment(t, e.db, mine, other, "on my post")
	tu.SeedComment(t, e.db, theirs, u, "my comment elsewhere")
	tu.SeedLike(t, e.db, theirs, u)
	tu.SeedLike(t, e.db, mine, other)
	e.images.deleteErr = errBoom

	res, err := e.users.DeleteAccount(e.ctx, u, DeleteAccountInput{Email: " LEAVER@example.com ", Password: tu.Password})
	require.NoError(t, err)
	assert.Equal(t, DeletionSuccess, res.DeletionStatus)
	assert.Equal(t, []string{"covers/mine"}, e.images.deleted)

	assert.Equal(t, int64(0), tu.Count(t, e.db, &domain.User{}, "id = ?", u.ID))
	assert.Equal(t, int64(0), tu.Count(t, e.db, &domain.Post{}, "author_id = ?", u.ID))
	assert.Equal(t, int64(0), tu.Count(t, e.db, &domain.PostTag{}, "post_id = ?", mine.ID))
	assert.Equal(t, int64(0), tu.Count(t, e.db, &domain.Comment{}, "1 = 1"))
	assert.Equal(t, int64(0), tu.Count(t, e.db, &domain.PostLike{}, "1 = 1"))

	_, err = e.users.Profile(e.ctx, u.ID)
	requireCode(t, err, http.StatusNotFound)
	_, err = e.posts.GetBySlug(e.ctx, nil, mine.Slug)
	requireCode(t, err, http.StatusNotFound)
	_, err = e.posts.GetBySlug(e.ctx, nil, theirs.Slug)
	require.NoError(t, err)
}
