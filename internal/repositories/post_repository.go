package repositories

import (
	"context"

	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/pagination"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. Listing
// methods return pages ordered newest first.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CountPosts(ctx context.Context) (int64, error)
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
	GetAllPosts(ctx context.Context, page string, perPage int) (*pagination.Page[models.Post], error)
	GetPostsByGroup(ctx context.Context, groupID uint, page string, perPage int) (*pagination.Page[models.Post], error)
	GetPostsByAuthor(ctx context.Context, authorID uint, page string, perPage int) (*pagination.Page[models.Post], error)
	GetPostsByFollower(ctx context.Context, userID uint, page string, perPage int) (*pagination.Page[models.Post], error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Group")
}

// listing is the base query every post listing starts from
func (r *PostgresPostRepository) listing(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).Order("created DESC").Order("id DESC")
}

// CreatePost creates a new post; Created is set by the database layer
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Group").Create(post).Error
}

// GetPostByID retrieves a post with its author and group
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(withRelations).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost saves text, group and image of an existing post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
}

// DeletePost deletes a post by ID
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// GetAllPosts returns one page of every post
func (r *PostgresPostRepository) GetAllPosts(ctx context.Context, page string, perPage int) (*pagination.Page[models.Post], error) {
	return pagination.Paginate[models.Post](r.listing(ctx), page, perPage, withRelations)
}

// GetPostsByGroup returns one page of the posts published in a group
func (r *PostgresPostRepository) GetPostsByGroup(ctx context.Context, groupID uint, page string, perPage int) (*pagination.Page[models.Post], error) {
	query := r.listing(ctx).Where("group_id = ?", groupID)
	return pagination.Paginate[models.Post](query, page, perPage, withRelations)
}

// GetPostsByAuthor returns one page of the posts written by a user
func (r *PostgresPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint, page string, perPage int) (*pagination.Page[models.Post], error) {
	query := r.listing(ctx).Where("author_id = ?", authorID)
	return pagination.Paginate[models.Post](query, page, perPage, withRelations)
}

// GetPostsByFollower returns one page of the posts whose author userID follows
func (r *PostgresPostRepository) GetPostsByFollower(ctx context.Context, userID uint, page string, perPage int) (*pagination.Page[models.Post], error) {
	query := r.listing(ctx).Where("author_id IN (?)",
		r.db.Table("follows").Select("author_id").Where("user_id = ?", userID),
	)
	return pagination.Paginate[models.Post](query, page, perPage, withRelations)
}
