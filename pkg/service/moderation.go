package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

type moderationRepository interface {
	repository.ModerationRepository
	GetReviewByID(ctx context.Context, reviewID uint) (*model.Review, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}

// ModerationService walks a review through active → reported → banned.
// Crossing the report threshold only queues the review for a moderator;
// the ban itself stays a privileged, explicit action.
type ModerationService struct {
	repo   moderationRepository
	logger *zap.Logger
	conf   *configs.Config
}

func NewModerationService(repo moderationRepository, logger *zap.Logger, conf *configs.Config) *ModerationService {
	return &ModerationService{repo: repo, logger: logger, conf: conf}
}

// Report records the reporter and returns the resulting report count.
// A repeat report by the same user does not change the count.
func (s *ModerationService) Report(ctx context.Context, reviewID uint, reporterID uint) (int64, error) {
	review, err := s.repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return 0, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}

		return 0, err
	}

	if review.UserID == reporterID {
		return 0, fmt.Errorf("%w: cannot report your own review", ErrInvalidOperation)
	}

	if err := s.ensureUser(ctx, reporterID); err != nil {
		return 0, err
	}

	count, err := s.repo.AddReport(ctx, reviewID, reporterID)
	if err != nil {
		return 0, err
	}

	if count >= int64(s.conf.Moderation.ReportThreshold) {
		s.logger.Warn("review crossed report threshold",
			zap.Uint("review", reviewID),
			zap.Int64("reports", count),
			zap.Int("threshold", s.conf.Moderation.ReportThreshold))
	}

	return count, nil
}

// MarkHelpful is idempotent per voter. Helpful voters and reporters are
// independent sets; a user may appear in both.
func (s *ModerationService) MarkHelpful(ctx context.Context, reviewID uint, voterID uint) (int64, error) {
	if _, err := s.repo.GetReviewByID(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return 0, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}

		return 0, err
	}

	if err := s.ensureUser(ctx, voterID); err != nil {
		return 0, err
	}

	return s.repo.AddHelpfulVote(ctx, reviewID, voterID)
}

// Ban moves the review into the audit table. Whether the review's rating
// contribution is reversed is a configuration decision; the default keeps
// it counted, matching author-initiated delete being the only operation
// that shrinks the aggregates.
func (s *ModerationService) Ban(ctx context.Context, reviewID uint, reason *string, adminID uint) (*model.BannedReview, error) {
	admin, err := s.repo.GetUserByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, adminID)
		}

		return nil, err
	}

	if !admin.IsAdmin {
		return nil, fmt.Errorf("%w: banning a review requires admin rights", ErrForbidden)
	}

	banned, err := s.repo.BanReview(ctx, reviewID, reason, adminID, s.conf.Moderation.RevertRatingOnBan)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}

		return nil, err
	}

	s.logger.Info("review banned",
		zap.Uint("review", reviewID),
		zap.Uint("admin", adminID),
		zap.Int64("reports", banned.ReportCount))

	return banned, nil
}

// ReportedQueue lists active reviews at or past the report threshold.
func (s *ModerationService) ReportedQueue(ctx context.Context, limit int, offset int) ([]*model.Review, error) {
	return s.repo.ListReported(ctx, s.conf.Moderation.ReportThreshold, limit, offset)
}

func (s *ModerationService) BannedReviews(ctx context.Context, alcoholID uint, limit int, offset int) ([]*model.BannedReview, error) {
	return s.repo.GetBannedReviews(ctx, alcoholID, limit, offset)
}

func (s *ModerationService) ensureUser(ctx context.Context, userID uint) error {
	_, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		return err
	}

	return nil
}
