package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column/internal/domain"
	tu "column/internal/testutil"
)

func TestSetUserStatusToggles(t *testing.T) {
	e := newEnv(t)
	admin := tu.SeedUser(t, e.db, "boss", tu.Verified, tu.AsAdmin)
	u := tu.SeedUser(t, e.db, "target", tu.Verified)

	got, err := e.admin.SetUserStatus(e.ctx, admin, u.ID, UserStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, got.Status)

	got, err = e.admin.SetUserStatus(e.ctx, admin, u.ID, UserStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	got, err = e.admin.SetUserStatus(e.ctx, admin, u.ID, UserStatusInput{Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	_, err = e.admin.SetUserStatus(e.ctx, admin, u.ID, UserStatusInput{Status: "frozen"})
	requireCode(t, err, http.StatusBadRequest)
	_, err = e.admin.SetUserStatus(e.ctx, admin, "missing", UserStatusInput{})
	requireCode(t, err, http.StatusNotFound)
}

func TestSetUserStatusRefusesOwnerAndSelf(t *testing.T) {
	e := newEnv(t)
	admin := tu.SeedUser(t, e.db, "boss", tu.Verified, tu.AsAdmin)
	owner := tu.SeedUser(t, e.db, "owner", tu.Verified, tu.AsAdmin)

	_, err := e.admin.SetUserStatus(e.ctx, admin, owner.ID, UserStatusInput{})
	requireCode(t, err, http.StatusForbidden)
	_, err = e.admin.SetUserStatus(e.ctx, admin, admin.ID, UserStatusInput{Status: "blocked"})
	requireCode(t, err, http.StatusForbidden)
	assert.Equal(t, int64(2), tu.Count(t, e.db, &domain.User{}, "status = ?", domain.StatusActive))
}

func TestBlockedUserCannotAuthenticate(t *testing.T) {
	e := newEnv(t)
	admin := tu.SeedUser(t, e.db, "boss", tu.Verified, tu.AsAdmin)
	u := tu.SeedUser(t, e.db, "victim", tu.Verified)
	tok, err := e.jwt.Issue(u.ID, u.Role)
	require.NoError(t, err)

	_, err = e.auth.Authenticate(e.ctx, tok)
	require.NoError(t, err)
	_, err = e.admin.SetUserStatus(e.ctx, admin, u.ID, UserStatusInput{Status: "blocked"})
	require.NoError(t, err)
	_, err = e.auth.Authenticate(e.ctx, tok)
	requireCode(t, err, http.StatusForbidden)
}

func TestAdminListsAndDashboard(t *testing.T) {
	e := newEnv(t)
	a := tu.SeedUser(t, e.db, "writer", tu.Verified)
	tu.SeedUser(t, e.db, "sleeper", tu.Blocked)
	tu.SeedPost(t, e.db, a, "Live One", tu.Views(10))
	tu.SeedPost(t, e.db, a, "Draft One", tu.Draft)

	posts, err := e.admin.Posts(e.ctx, AdminPostParams{Status: "draft"})
	require.NoError(t, err)
	require.Len(t, posts.Items, 1)
	assert.Equal(t, "Draft One", posts.Items[0].Title)
	assert.Equal(t, "writer", posts.Items[0].AuthorName)

	_, err = e.admin.Posts(e.ctx, AdminPostParams{Status: "gone"})
	requireCode(t, err, http.StatusBadRequest)

	users, err := e.admin.Users(e.ctx, AdminUserParams{Status: "blocked"})
	require.NoError(t, err)
	require.Len(t, users.Items, 1)
	assert.Equal(t, "sleeper", users.Items[0].Name)

	users, err = e.admin.Users(e.ctx, AdminUserParams{Search: "WRIT"})
	require.NoError(t, err)
	require.Len(t, users.Items, 1)
	assert.Equal(t, int64(2), users.Items[0].PostCount)

	_, err = e.admin.Users(e.ctx, AdminUserParams{PageParams: PageParams{Page: ptr(0)}})
	requireCode(t, err, http.StatusBadRequest)

	d, err := e.admin.Dashboard(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.TotalUsers)
	assert.Equal(t, int64(2), d.TotalPosts)
	require.NotNil(t, d.MostViewedPost)
	assert.Equal(t, "Live One", d.MostViewedPost.Title)
}
