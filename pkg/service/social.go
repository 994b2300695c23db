package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

type socialRepository interface {
	repository.SocialRepository
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}

// SocialService owns the follow graph. Both sides of the graph are views
// over one relation, so after any successful mutation b is in Following(a)
// exactly when a is in Followers(b).
type SocialService struct {
	repo   socialRepository
	logger *zap.Logger
}

func NewSocialService(repo socialRepository, logger *zap.Logger) *SocialService {
	return &SocialService{repo: repo, logger: logger}
}

// Follow adds the edge a → b. Following an already-followed user is a
// no-op, following yourself is rejected.
func (s *SocialService) Follow(ctx context.Context, followerID uint, followeeID uint) error {
	if followerID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidOperation)
	}

	if err := s.ensureUser(ctx, followerID); err != nil {
		return err
	}

	if err := s.ensureUser(ctx, followeeID); err != nil {
		return err
	}

	var created bool

	err := withWriteRetry(ctx, s.logger, func() error {
		var addErr error
		created, addErr = s.repo.AddFollow(ctx, followerID, followeeID)

		return addErr
	})
	if err != nil {
		return err
	}

	if created {
		s.logger.Info("follow added", zap.Uint("follower", followerID), zap.Uint("followee", followeeID))
	}

	return nil
}

// Unfollow removes the edge a → b. Removing an absent edge is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, followerID uint, followeeID uint) error {
	if followerID == followeeID {
		return fmt.Errorf("%w: cannot unfollow yourself", ErrInvalidOperation)
	}

	if err := s.ensureUser(ctx, followerID); err != nil {
		return err
	}

	if err := s.ensureUser(ctx, followeeID); err != nil {
		return err
	}

	var removed bool

	err := withWriteRetry(ctx, s.logger, func() error {
		var removeErr error
		removed, removeErr = s.repo.RemoveFollow(ctx, followerID, followeeID)

		return removeErr
	})
	if err != nil {
		return err
	}

	if removed {
		s.logger.Info("follow removed", zap.Uint("follower", followerID), zap.Uint("followee", followeeID))
	}

	return nil
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID uint, followeeID uint) (bool, error) {
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}

func (s *SocialService) Followers(ctx context.Context, userID uint, limit int, offset int) ([]*model.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.repo.GetFollowers(ctx, userID, limit, offset)
}

func (s *SocialService) Following(ctx context.Context, userID uint, limit int, offset int) ([]*model.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.repo.GetFollowing(ctx, userID, limit, offset)
}

// Reconcile recomputes the denormalized counters from the edge relation.
func (s *SocialService) Reconcile(ctx context.Context) (int64, error) {
	repaired, err := s.repo.ReconcileSocialCounters(ctx)
	if err != nil {
		return 0, err
	}

	if repaired > 0 {
		s.logger.Warn("social counters had drifted", zap.Int64("repaired", repaired))
	}

	return repaired, nil
}

func (s *SocialService) ensureUser(ctx context.Context, userID uint) error {
	_, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		return err
	}

	return nil
}
