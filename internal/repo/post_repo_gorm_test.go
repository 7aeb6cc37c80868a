package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"column/internal/domain"
	tu "column/internal/testutil"
	"column/pkg/utils"
)

type PostRepoSuite struct {
	suite.Suite
	db    *gorm.DB
	repo  *PostRepo
	ctx   context.Context
	alice *domain.User
	bob   *domain.User
}

func TestPostRepo(t *testing.T) { suite.Run(t, new(PostRepoSuite)) }

func (s *PostRepoSuite) SetupTest() {
	s.db = tu.NewDB(s.T())
	s.repo = NewPostRepo(s.db)
	s.ctx = context.Background()
	s.alice = tu.SeedUser(s.T(), s.db, "alice", tu.Verified)
	s.bob = tu.SeedUser(s.T(), s.db, "bob", tu.Verified)
}

func (s *PostRepoSuite) TestCreateMirrorsTagsAndLoadsAuthor() {
	p := &domain.Post{
		ID:       utils.NewID(),
		Title:    "Hello",
		Slug:     "hello",
		Content:  "body",
		AuthorID: s.alice.ID,
		Status:   domain.PostPublished,
		Tags:     []string{"go", "web"},
	}
	s.Require().NoError(s.repo.Create(s.ctx, p))
	s.Equal(int64(2), tu.Count(s.T(), s.db, &domain.PostTag{}, "post_id = ?", p.ID))

	got, err := s.repo.FindBySlug(s.ctx, "hello")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal([]string{"go", "web"}, []string(got.Tags))
	s.Require().NotNil(got.Author)
	s.Equal("alice", got.Author.Name)

	got.Tags = []string{"rust"}
	got.Title = "Hello again"
	s.Require().NoError(s.repo.Update(s.ctx, got))
	s.Equal(int64(0), tu.Count(s.T(), s.db, &domain.PostTag{}, "post_id = ? AND tag = ?", p.ID, "go"))
	s.Equal(int64(1), tu.Count(s.T(), s.db, &domain.PostTag{}, "post_id = ? AND tag = ?", p.ID, "rust"))

	missing, err := s.repo.FindByID(s.ctx, "nope")
	s.NoError(err)
	s.Nil(missing)
}

func (s *PostRepoSuite) TestUpdateKeepsViews() {
	p := tu.SeedPost(s.T(), s.db, s.alice, "Counted", tu.Views(10))
	s.Require().NoError(s.repo.IncrementViews(s.ctx, p.ID))
	p.Title = "Counted twice"
	s.Require().NoError(s.repo.Update(s.ctx, p))

	got, err := s.repo.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(int64(11), got.Views)
	s.Equal("Counted twice", got.Title)
}

func (s *PostRepoSuite) TestSlugConflicts() {
	tu.SeedPost(s.T(), s.db, s.alice, "hello world")
	tu.SeedPost(s.T(), s.db, s.alice, "hello world-1")
	tu.SeedPost(s.T(), s.db, s.alice, "hello worldly")
	tu.SeedPost(s.T(), s.db, s.alice, "axb-1")

	refs, err := s.repo.SlugConflicts(s.ctx, "hello-world")
	s.Require().NoError(err)
	slugs := make([]string, 0, len(refs))
	for _, r := range refs {
		slugs = append(slugs, r.Slug)
	}
	s.ElementsMatch([]string{"hello-world", "hello-world-1"}, slugs)

	// '_' 不能当通配符
	refs, err = s.repo.SlugConflicts(s.ctx, "a_b")
	s.Require().NoError(err)
	s.Empty(refs)
}

func (s *PostRepoSuite) TestToggleLike() {
	p := tu.SeedPost(s.T(), s.db, s.alice, "Likeable")

	liked, n, err := s.repo.ToggleLike(s.ctx, p.ID, s.bob.ID)
	s.Require().NoError(err)
	s.True(liked)
	s.Equal(int64(1), n)

	liked, n, err = s.repo.ToggleLike(s.ctx, p.ID, s.alice.ID)
	s.Require().NoError(err)
	s.True(liked)
	s.Equal(int64(2), n)

	liked, n, err = s.repo.ToggleLike(s.ctx, p.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(liked)
	s.Equal(int64(1), n)

	ids, err := s.repo.LikerIDs(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal([]string{s.alice.ID}, ids)
}

func (s *PostRepoSuite) TestDeleteCascade() {
	p := tu.SeedPost(s.T(), s.db, s.alice, "Doomed", tu.Tags("x"))
	other := tu.SeedPost(s.T(), s.db, s.alice, "Survivor", tu.Tags("x"))
	tu.SeedLike(s.T(), s.db, p, s.bob)
	tu.SeedComment(s.T(), s.db, p, s.bob, "bye")
	tu.SeedComment(s.T(), s.db, other, s.bob, "hi")

	s.Require().NoError(s.repo.DeleteCascade(s.ctx, p.ID))
	s.Equal(int64(0), tu.Count(s.T(), s.db, &domain.Post{}, "id = ?", p.ID))
	s.Equal(int64(0), tu.Count(s.T(), s.db, &domain.PostLike{}, "post_id = ?", p.ID))
	s.Equal(int64(0), tu.Count(s.T(), s.db, &domain.Comment{}, "post_id = ?", p.ID))
	s.Equal(int64(0), tu.Count(s.T(), s.db, &domain.PostTag{}, "post_id = ?", p.ID))
	s.Equal(int64(1), tu.Count(s.T(), s.db, &domain.Comment{}, "post_id = ?", other.ID))
}

func (s *PostRepoSuite) feedTitles(q domain.FeedQuery) ([]string, int64) {
	items, total, err := s.repo.Feed(s.ctx, q, time.Now())
	s.Require().NoError(err)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out, total
}

func (s *PostRepoSuite) TestFeedSortsAndFilters() {
	now := time.Now().UTC()
	old := tu.SeedPost(s.T(), s.db, s.alice, "Old Go", tu.CreatedAt(now.Add(-72*time.Hour)), tu.Tags("go"))
	mid := tu.SeedPost(s.T(), s.db, s.bob, "Mid Rust", tu.CreatedAt(now.Add(-24*time.Hour)), tu.Tags("rust"))
	tu.SeedPost(s.T(), s.db, s.alice, "New Go", tu.CreatedAt(now.Add(-1*time.Hour)), tu.Tags("go", "web"))
	tu.SeedPost(s.T(), s.db, s.alice, "Secret Go", tu.Draft, tu.Tags("go"))
	tu.SeedLike(s.T(), s.db, old, s.bob)
	tu.SeedLike(s.T(), s.db, old, s.alice)
	tu.SeedLike(s.T(), s.db, mid, s.alice)
	tu.SeedComment(s.T(), s.db, mid, s.alice, "nice")

	titles, total := s.feedTitles(domain.FeedQuery{Sort: domain.SortRecent, Limit: 10})
	s.Equal([]string{"New Go", "Mid Rust", "Old Go"}, titles)
	s.Equal(int64(3), total)

	titles, _ = s.feedTitles(domain.FeedQuery{Sort: domain.SortOldest, Limit: 10})
	s.Equal([]string{"Old Go", "Mid Rust", "New Go"}, titles)

	titles, _ = s.feedTitles(domain.FeedQuery{Sort: domain.SortPopular, Limit: 10})
	s.Equal([]string{"Old Go", "Mid Rust", "New Go"}, titles)

	titles, total = s.feedTitles(domain.FeedQuery{Tag: "go", Sort: domain.SortRecent, Limit: 10})
	s.Equal([]string{"New Go", "Old Go"}, titles)
	s.Equal(int64(2), total)

	titles, total = s.feedTitles(domain.FeedQuery{Search: "rUsT", Limit: 10})
	s.Equal([]string{"Mid Rust"}, titles)
	s.Equal(int64(1), total)

	titles, total = s.feedTitles(domain.FeedQuery{Search: "100%", Limit: 10})
	s.Empty(titles)
	s.Equal(int64(0), total)

	titles, total = s.feedTitles(domain.FeedQuery{Sort: domain.SortRecent, Offset: 2, Limit: 2})
	s.Equal([]string{"Old Go"}, titles)
	s.Equal(int64(3), total)
}

func (s *PostRepoSuite) TestFeedCountsAndTrending() {
	now := time.Now().UTC()
	older := tu.SeedPost(s.T(), s.db, s.alice, "Older", tu.CreatedAt(now.Add(-48*time.Hour)), tu.Views(10))
	younger := tu.SeedPost(s.T(), s.db, s.alice, "Younger", tu.CreatedAt(now.Add(-2*time.Hour)), tu.Views(10))
	for _, p := range []*domain.Post{older, younger} {
		tu.SeedLike(s.T(), s.db, p, s.bob)
		tu.SeedComment(s.T(), s.db, p, s.bob, "c")
	}

	items, _, err := s.repo.Feed(s.ctx, domain.FeedQuery{Sort: domain.SortTrending, Limit: 10}, now)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("Younger", items[0].Title)
	s.Equal(int64(1), items[0].LikesCount)
	s.Equal(int64(1), items[0].CommentsCount)
	s.NotNil(items[0].Author)
	// (3 + 2 + 5) / (2 + 2)
	s.InDelta(2.5, items[0].TrendingScore, 0.01)
	s.InDelta(domain.TrendingScore(1, 1, 10, 48), items[1].TrendingScore, 0.01)
	s.GreaterOrEqual(items[0].TrendingScore, items[1].TrendingScore)
}

func (s *PostRepoSuite) TestRelated() {
	src := tu.SeedPost(s.T(), s.db, s.alice, "Source", tu.Tags("go", "db"))
	now := time.Now().UTC()
	tu.SeedPost(s.T(), s.db, s.bob, "R1", tu.Tags("go"), tu.CreatedAt(now.Add(-3*time.Hour)))
	tu.SeedPost(s.T(), s.db, s.bob, "R2", tu.Tags("db", "go"), tu.CreatedAt(now.Add(-2*time.Hour)))
	tu.SeedPost(s.T(), s.db, s.bob, "R3", tu.Tags("db"), tu.CreatedAt(now.Add(-1*time.Hour)))
	tu.SeedPost(s.T(), s.db, s.bob, "R4", tu.Tags("go"), tu.CreatedAt(now.Add(-4*time.Hour)))
	tu.SeedPost(s.T(), s.db, s.bob, "Draft", tu.Tags("go"), tu.Draft)
	tu.SeedPost(s.T(), s.db, s.bob, "Unrelated", tu.Tags("art"))

	got, err := s.repo.Related(s.ctx, src, 3)
	s.Require().NoError(err)
	titles := []string{}
	for _, p := range got {
		titles = append(titles, p.Title)
	}
	s.Equal([]string{"R3", "R2", "R1"}, titles)

	none, err := s.repo.Related(s.ctx, tu.SeedPost(s.T(), s.db, s.bob, "Bare"), 3)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PostRepoSuite) TestAuthorQueries() {
	p := tu.SeedPost(s.T(), s.db, s.alice, "Mine", tu.Cover("covers/a.png"))
	tu.SeedPost(s.T(), s.db, s.alice, "Mine draft", tu.Draft)
	tu.SeedPost(s.T(), s.db, s.bob, "Theirs", tu.Cover("covers/b.png"))
	tu.SeedLike(s.T(), s.db, p, s.bob)

	posts, total, err := s.repo.ListByAuthor(s.ctx, s.alice.ID, 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(posts, 2)

	ids, err := s.repo.CoverIDsByAuthor(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal([]string{"covers/a.png"}, ids)

	n, likes, err := s.repo.AuthorStats(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal(int64(1), likes)
}

func (s *PostRepoSuite) TestAdminList() {
	tu.SeedPost(s.T(), s.db, s.alice, "Go tips")
	tu.SeedPost(s.T(), s.db, s.bob, "Rust tips", tu.Draft)

	rows, total, err := s.repo.AdminList(s.ctx, domain.AdminPostFilter{}, 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(rows, 2)

	rows, total, err = s.repo.AdminList(s.ctx, domain.AdminPostFilter{Status: domain.PostDraft}, 0, 10)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal("bob", rows[0].AuthorName)

	rows, _, err = s.repo.AdminList(s.ctx, domain.AdminPostFilter{Search: "GO"}, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("Go tips", rows[0].Title)
}

func TestCommentRepo(t *testing.T) {
	db := tu.NewDB(t)
	repo := NewCommentRepo(db)
	ctx := context.Background()
	u := tu.SeedUser(t, db, "carol")
	p := tu.SeedPost(t, db, u, "Commented")

	var ids []string
	for i := 0; i < 3; i++ {
		c := &domain.Comment{ID: utils.NewID(), Content: "c", AuthorID: u.ID, PostID: p.ID,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, c))
		ids = append(ids, c.ID)
	}

	list, total, err := repo.ListByPost(ctx, p.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, "carol", list[0].Author.Name)

	c, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	c.Content = "edited"
	require.NoError(t, repo.Update(ctx, c))
	c, err = repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Content)

	require.NoError(t, repo.Delete(ctx, ids[0]))
	c, err = repo.FindByID(ctx, ids[0])
	assert.NoError(t, err)
	assert.Nil(t, c)
}
