package repos

import (
	"context"
	"testing"

	"agora/internal/apperr"
	"agora/internal/models"
	"agora/internal/repos/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommunityRepo(t *testing.T) (CommunityRepo, TagRepo) {
	db := testutil.DB(t)
	logg := testutil.Logger(t)
	tags := NewTagRepo(db, logg)
	return NewCommunityRepo(db, logg, tags), tags
}

func TestCommunityRepoStateLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	logg := testutil.Logger(t)
	tags := NewTagRepo(db, logg)
	repo := NewCommunityRepo(db, logg, tags)

	// codes line up with ids on a fresh database
	testutil.SeedWellKnown(t, ctx, tx)

	chess, err := repo.CreateCommunity(ctx, tx, "Chess", "desc")
	require.NoError(t, err)
	require.NotNil(t, chess.State)
	assert.Equal(t, "PENDING", chess.State.Name)

	pending, err := repo.FindByState(ctx, tx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Chess", pending[0].Name)

	require.NoError(t, repo.SetState(ctx, tx, chess, 2))
	assert.True(t, chess.InState(models.TagApproved))

	approved, err := repo.FindByState(ctx, tx, 2)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, chess.ID, approved[0].ID)
	assert.Equal(t, "APPROVED", approved[0].State.Name)

	pending, err = repo.FindPending(ctx, tx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// tag_community follows the state
	byApproved, err := tags.FindCommunitiesByTag(ctx, tx, approved[0].StateTagID)
	require.NoError(t, err)
	assert.Len(t, byApproved, 1)
	pendingTag, err := tags.FindByName(ctx, tx, "PENDING")
	require.NoError(t, err)
	byPending, err := tags.FindCommunitiesByTag(ctx, tx, pendingTag.ID)
	require.NoError(t, err)
	assert.Empty(t, byPending)

	_, err = repo.FindByState(ctx, tx, 99)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestCommunityRepoCreatesPendingTagOnMiss(t *testing.T) {
	repo, tags := newCommunityRepo(t)
	ctx := context.Background()

	c, err := repo.CreateCommunity(ctx, nil, "Go", "")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", c.State.Name)

	all, err := tags.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCommunityRepoUniqueName(t *testing.T) {
	repo, _ := newCommunityRepo(t)
	ctx := context.Background()

	_, err := repo.CreateCommunity(ctx, nil, "Chess", "")
	require.NoError(t, err)
	_, err = repo.CreateCommunity(ctx, nil, "Chess", "again")
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)

	all, err := repo.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCommunityRepoFindByNameMiss(t *testing.T) {
	repo, _ := newCommunityRepo(t)
	c, err := repo.FindByName(context.Background(), nil, "nothing")
	require.NoError(t, err)
	assert.Nil(t, c)

	none, err := repo.FindApproved(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommunityRepoDeleteWithPosts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	logg := testutil.Logger(t)
	repo := NewCommunityRepo(db, logg, NewTagRepo(db, logg))

	tags := testutil.SeedWellKnown(t, ctx, tx)
	u := testutil.SeedUser(t, ctx, tx, "u1")
	busy := testutil.SeedCommunity(t, ctx, tx, "Busy", tags[models.TagApproved])
	testutil.SeedPost(t, ctx, tx, nil, busy, u, "hi")
	empty := testutil.SeedCommunity(t, ctx, tx, "Empty", tags[models.TagApproved])

	err := repo.Delete(ctx, tx, busy)
	assert.ErrorIs(t, err, apperr.ErrConstraintViolation)
	still, err := repo.FindByID(ctx, tx, busy.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)

	require.NoError(t, repo.AddMember(ctx, tx, empty, u))
	require.NoError(t, repo.Delete(ctx, tx, empty))
	gone, err := repo.FindByID(ctx, tx, empty.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Empty(t, u.Communities)
}

func TestCommunityRepoMembers(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	logg := testutil.Logger(t)
	repo := NewCommunityRepo(db, logg, NewTagRepo(db, logg))

	tags := testutil.SeedWellKnown(t, ctx, tx)
	c := testutil.SeedCommunity(t, ctx, tx, "Chess", tags[models.TagApproved])
	u1 := testutil.SeedUser(t, ctx, tx, "u1")
	u2 := testutil.SeedUser(t, ctx, tx, "u2")

	require.NoError(t, repo.AddMember(ctx, tx, c, u1))
	require.NoError(t, repo.AddMember(ctx, tx, c, u1))
	require.NoError(t, repo.AddMember(ctx, tx, c, u2))

	loaded, err := repo.FindByID(ctx, tx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Members, 2)
	assert.Equal(t, "u1", loaded.Members[0].Username)

	require.NoError(t, repo.RemoveMember(ctx, tx, c, u1))
	loaded, err = repo.FindByID(ctx, tx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Members, 1)
	assert.Equal(t, u2.ID, loaded.Members[0].ID)

	assert.ErrorIs(t, repo.AddMember(ctx, tx, c, nil), apperr.ErrNullArgument)
}

func TestCommunityRepoUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	logg := testutil.Logger(t)
	repo := NewCommunityRepo(db, logg, NewTagRepo(db, logg))

	tags := testutil.SeedWellKnown(t, ctx, tx)
	c := testutil.SeedCommunity(t, ctx, tx, "Chess", tags[models.TagPending])

	c.Description = "board games"
	merged, err := repo.Update(ctx, tx, c)
	require.NoError(t, err)
	assert.Equal(t, "board games", merged.Description)
	assert.Equal(t, "PENDING", merged.State.Name)

	c.Name = ""
	_, err = repo.Update(ctx, tx, c)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
