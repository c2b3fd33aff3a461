package repositories_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestFollowRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresFollowRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "user")
	author := testutil.CreateUser(t, db, "auth")

	created, err := repo.CreateFollow(ctx, user.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateFollow(ctx, user.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created, "a second follow is a no-op")

	following, err := repo.IsFollowing(ctx, user.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := repo.GetFollowersCount(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	ids, err := repo.GetFollowingIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{author.ID}, ids)

	require.NoError(t, repo.DeleteFollow(ctx, user.ID, author.ID))
	assert.ErrorIs(t, repo.DeleteFollow(ctx, user.ID, author.ID), repositories.ErrFollowNotFound)

	count, err := repo.GetFollowingCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	following, err = repo.IsFollowing(ctx, user.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestFollowRepositoryStatements(t *testing.T) {
	t.Run("create uses insert on conflict do nothing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repositories.NewPostgresFollowRepository(db)

		mock.ExpectQuery(`INSERT INTO "follows" .* ON CONFLICT DO NOTHING RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		created, err := repo.CreateFollow(context.Background(), 1, 2)
		assert.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete reports a missing edge", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repositories.NewPostgresFollowRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows" WHERE user_id = $1 AND author_id = $2`)).
			WithArgs(1, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteFollow(context.Background(), 1, 2)
		assert.ErrorIs(t, err, repositories.ErrFollowNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
