package repositories_test

import (
	"context"
	"testing"

	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	uid := "firebase-uid"
	user := &models.User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy", Email: "leo@example.com", FirebaseUID: &uid}
	require.NoError(t, repo.CreateUser(ctx, user))

	byName, err := repo.GetUserByUsername(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "Leo Tolstoy", byName.FullName())

	byUID, err := repo.GetUserByFirebaseUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUID.ID)

	exists, err := repo.UsernameExists(ctx, "leo")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.UsernameExists(ctx, "anna")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// usernames are unique
	assert.Error(t, repo.CreateUser(ctx, &models.User{Username: "leo"}))
}

func TestGroupAndCommentRepositories(t *testing.T) {
	db := testutil.NewDB(t)
	groups := repositories.NewPostgresGroupRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, groups.CreateGroup(ctx, &models.Group{Title: "Zebra", Slug: "zebra"}))
	require.NoError(t, groups.CreateGroup(ctx, &models.Group{Title: "Alpha", Slug: "alpha"}))

	list, err := groups.GetGroups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].String())

	_, err = groups.GetGroupBySlug(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	author := testutil.CreateUser(t, db, "auth")
	post := testutil.CreatePost(t, db, author, nil, "text")
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{Text: "first", PostID: post.ID, AuthorID: author.ID}))
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{Text: "second", PostID: post.ID, AuthorID: author.ID}))

	got, err := comments.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "auth", got[1].Author.Username)
}
