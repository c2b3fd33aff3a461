package services

import (
	"context"

	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/pagination"
	"github.com/mdotsev/yatube/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// FollowService maintains follow edges and builds the personalised feed
type FollowService struct {
	followRepository repositories.FollowRepository
	postRepository   repositories.PostRepository
	perPage          int
}

// NewFollowService creates a FollowService whose feed pages hold perPage posts
func NewFollowService(followRepo repositories.FollowRepository, postRepo repositories.PostRepository, perPage int) *FollowService {
	return &FollowService{
		followRepository: followRepo,
		postRepository:   postRepo,
		perPage:          perPage,
	}
}

// Follow makes user follow author. Following yourself or an author you
// already follow is a no-op; the result reports whether an edge was created.
func (s *FollowService) Follow(ctx context.Context, user, author *models.User) (bool, error) {
	if user.ID == author.ID {
		return false, nil
	}
	created, err := s.followRepository.CreateFollow(ctx, user.ID, author.ID)
	if err != nil {
		return false, err
	}
	if created {
		log.WithFields(log.Fields{"user": user.Username, "author": author.Username}).Info("follow created")
	}
	return created, nil
}

// Unfollow removes the edge from user to author. It returns
// repositories.ErrFollowNotFound when there is none.
func (s *FollowService) Unfollow(ctx context.Context, user, author *models.User) error {
	if err := s.followRepository.DeleteFollow(ctx, user.ID, author.ID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user": user.Username, "author": author.Username}).Info("follow removed")
	return nil
}

// IsFollowing reports whether viewer follows author. A nil viewer (guest)
// follows nobody.
func (s *FollowService) IsFollowing(ctx context.Context, viewer, author *models.User) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	return s.followRepository.IsFollowing(ctx, viewer.ID, author.ID)
}

// Feed returns one page of posts written by the authors user follows
func (s *FollowService) Feed(ctx context.Context, user *models.User, page string) (*pagination.Page[models.Post], error) {
	return s.postRepository.GetPostsByFollower(ctx, user.ID, page, s.perPage)
}

// Stats holds the counters shown on a profile
type Stats struct {
	Posts     int64
	Followers int64
	Following int64
}

// ProfileStats collects the post and follow counters of author
func (s *FollowService) ProfileStats(ctx context.Context, author *models.User) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.Posts, err = s.postRepository.CountPostsByAuthor(ctx, author.ID); err != nil {
		return nil, err
	}
	if stats.Followers, err = s.followRepository.GetFollowersCount(ctx, author.ID); err != nil {
		return nil, err
	}
	if stats.Following, err = s.followRepository.GetFollowingCount(ctx, author.ID); err != nil {
		return nil, err
	}
	return &stats, nil
}
