package repos

import (
	"context"
	"strings"
	"testing"
	"time"

	"agora/internal/apperr"
	"agora/internal/models"
	"agora/internal/repos/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type postFixture struct {
	ctx   context.Context
	tx    *gorm.DB
	repo  PostRepo
	tags  map[models.WellKnown]*models.Tag
	chess *models.Community
	u1    *models.User
	u2    *models.User
}

func newPostFixture(t *testing.T) *postFixture {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	logg := testutil.Logger(t)

	tags := testutil.SeedWellKnown(t, ctx, tx)
	return &postFixture{
		ctx:   ctx,
		tx:    tx,
		repo:  NewPostRepo(db, logg, NewTagRepo(db, logg)),
		tags:  tags,
		chess: testutil.SeedCommunity(t, ctx, tx, "Chess", tags[models.TagApproved]),
		u1:    testutil.SeedUser(t, ctx, tx, "u1"),
		u2:    testutil.SeedUser(t, ctx, tx, "u2"),
	}
}

func TestPostRepoCreateAndHydrate(t *testing.T) {
	f := newPostFixture(t)

	p, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "hello", time.Now())
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	loaded, err := f.repo.FindByID(f.ctx, f.tx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "hello", loaded.Text)
	assert.Equal(t, "u1", loaded.User.Username)
	require.NotNil(t, loaded.Community)
	require.NotNil(t, loaded.Community.State)
	assert.Equal(t, "APPROVED", loaded.Community.State.Name)
	assert.True(t, loaded.IsRoot())
	assert.Empty(t, loaded.Children)
}

func TestPostRepoCreateRejectsBadText(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, strings.Repeat("a", models.MaxTextLength+1), time.Now())
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "", time.Now())
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	all, err := f.repo.FindAll(f.ctx, f.tx)
	require.NoError(t, err)
	assert.Empty(t, all)

	p, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, strings.Repeat("a", models.MaxTextLength), time.Now())
	require.NoError(t, err)

	// enforced on every write
	p.Text = strings.Repeat("b", models.MaxTextLength+1)
	_, err = f.repo.Update(f.ctx, f.tx, p)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	stored, err := f.repo.FindByID(f.ctx, f.tx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Text, models.MaxTextLength)
}

func TestPostRepoAddChildPost(t *testing.T) {
	f := newPostFixture(t)

	p1, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "p1", time.Now())
	require.NoError(t, err)
	p2, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u2, "p2", time.Now())
	require.NoError(t, err)

	require.NoError(t, f.repo.AddChildPost(f.ctx, f.tx, p1, p2))
	require.NoError(t, f.repo.AddChildPost(f.ctx, f.tx, p1, p2))
	require.Len(t, p1.Children, 1)
	assert.Same(t, p2, p1.Children[0])
	assert.Same(t, p1, p2.Parent)

	loaded, err := f.repo.FindByID(f.ctx, f.tx, p1.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Children, 1)
	assert.Equal(t, p2.ID, loaded.Children[0].ID)
	assert.Same(t, loaded, loaded.Children[0].Parent)

	child, err := f.repo.FindByID(f.ctx, f.tx, p2.ID)
	require.NoError(t, err)
	require.NotNil(t, child.Parent)
	assert.Equal(t, p1.ID, child.Parent.ID)

	assert.ErrorIs(t, f.repo.AddChildPost(f.ctx, f.tx, p1, nil), apperr.ErrNullArgument)
}

func TestPostRepoFindByIDLinksReplyIntoParent(t *testing.T) {
	f := newPostFixture(t)

	root := testutil.SeedPost(t, f.ctx, f.tx, nil, f.chess, f.u1, "root")
	first := testutil.SeedPost(t, f.ctx, f.tx, root, f.chess, f.u2, "first")
	reply := testutil.SeedPost(t, f.ctx, f.tx, root, f.chess, f.u2, "second")

	loaded, err := f.repo.FindByID(f.ctx, f.tx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Parent)
	assert.True(t, loaded.Parent.HasChild(loaded))
	require.Len(t, loaded.Parent.Children, 2)
	assert.Equal(t, first.ID, loaded.Parent.Children[0].ID)
	assert.Same(t, loaded, loaded.Parent.Children[1])
	assert.Same(t, loaded.Parent, loaded.Parent.Children[0].Parent)
}

func TestPostRepoAddChildPostStaleChainRollsBack(t *testing.T) {
	f := newPostFixture(t)

	a, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "a", time.Now())
	require.NoError(t, err)
	b, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "b", time.Now())
	require.NoError(t, err)

	// a sits under b in memory only; the stored rows are both roots
	require.NoError(t, a.SetParent(b))

	err = f.repo.AddChildPost(f.ctx, f.tx, a, b)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	stored, err := f.repo.FindByID(f.ctx, f.tx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRoot())
	assert.Nil(t, stored.ParentPostID)
}

func TestPostRepoRejectsCycles(t *testing.T) {
	f := newPostFixture(t)

	root, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "root", time.Now())
	require.NoError(t, err)
	reply, err := f.repo.Create(f.ctx, f.tx, root, f.chess, f.u2, "reply", time.Now())
	require.NoError(t, err)
	deeper, err := f.repo.Create(f.ctx, f.tx, reply, f.chess, f.u1, "deeper", time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, f.repo.AddChildPost(f.ctx, f.tx, root, root), apperr.ErrInvalidArgument)
	assert.ErrorIs(t, f.repo.AddChildPost(f.ctx, f.tx, deeper, root), apperr.ErrInvalidArgument)

	roots, err := f.repo.FindRoots(f.ctx, f.tx, f.chess.ID)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.ID, roots[0].ID)
}

func TestPostRepoReparentDetaches(t *testing.T) {
	f := newPostFixture(t)

	a, _ := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "a", time.Now())
	b, _ := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "b", time.Now())
	reply, err := f.repo.Create(f.ctx, f.tx, a, f.chess, f.u2, "reply", time.Now())
	require.NoError(t, err)

	require.NoError(t, f.repo.Reparent(f.ctx, f.tx, reply, b))
	assert.False(t, a.HasChild(reply))
	assert.True(t, b.HasChild(reply))

	underA, err := f.repo.FindChildren(f.ctx, f.tx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, underA)
	underB, err := f.repo.FindChildren(f.ctx, f.tx, b.ID)
	require.NoError(t, err)
	require.Len(t, underB, 1)

	require.NoError(t, f.repo.Reparent(f.ctx, f.tx, reply, nil))
	assert.True(t, reply.IsRoot())
	roots, err := f.repo.FindRoots(f.ctx, f.tx, f.chess.ID)
	require.NoError(t, err)
	assert.Len(t, roots, 3)
}

func TestPostRepoLikes(t *testing.T) {
	f := newPostFixture(t)
	like := f.tags[models.TagLike]

	p, err := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "like me", time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, f.repo.AddLike(f.ctx, f.tx, p, nil), apperr.ErrNullArgument)
	require.NoError(t, f.repo.AddLike(f.ctx, f.tx, p, like))
	require.NoError(t, f.repo.AddLike(f.ctx, f.tx, p, like))

	loaded, err := f.repo.FindByID(f.ctx, f.tx, p.ID)
	require.NoError(t, err)
	require.Len(t, loaded.LikedTags, 1)
	assert.Equal(t, "LIKE", loaded.LikedTags[0].Name)

	require.NoError(t, f.repo.RemoveLike(f.ctx, f.tx, p, like, f.u2))
	loaded, err = f.repo.FindByID(f.ctx, f.tx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.LikedTags)
}

func TestPostRepoDelete(t *testing.T) {
	f := newPostFixture(t)

	root, _ := f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "root", time.Now())
	reply, err := f.repo.Create(f.ctx, f.tx, root, f.chess, f.u2, "reply", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.repo.AddLike(f.ctx, f.tx, reply, f.tags[models.TagLike]))

	assert.ErrorIs(t, f.repo.Delete(f.ctx, f.tx, root), apperr.ErrConstraintViolation)

	require.NoError(t, f.repo.Delete(f.ctx, f.tx, reply))
	assert.Empty(t, root.Children)
	require.NoError(t, f.repo.Delete(f.ctx, f.tx, root))

	all, err := f.repo.FindAll(f.ctx, f.tx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPostRepoFinders(t *testing.T) {
	f := newPostFixture(t)

	go1 := testutil.SeedCommunity(t, f.ctx, f.tx, "Go", f.tags[models.TagApproved])

	_, _ = f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u1, "one", time.Now())
	_, _ = f.repo.Create(f.ctx, f.tx, nil, f.chess, f.u2, "two", time.Now())
	_, _ = f.repo.Create(f.ctx, f.tx, nil, go1, f.u1, "three", time.Now())

	byChess, err := f.repo.FindByCommunity(f.ctx, f.tx, f.chess.ID)
	require.NoError(t, err)
	assert.Len(t, byChess, 2)

	byU1, err := f.repo.FindByUser(f.ctx, f.tx, f.u1.ID)
	require.NoError(t, err)
	require.Len(t, byU1, 2)
	assert.Equal(t, "one", byU1[0].Text)
	assert.Equal(t, "three", byU1[1].Text)

	none, err := f.repo.FindByUser(f.ctx, f.tx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
