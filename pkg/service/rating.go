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

type ratingRepository interface {
	repository.RatingRepository
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	GetAlcoholByID(ctx context.Context, alcoholID uint) (*model.Alcohol, error)
}

// RatingService keeps rate_count, rate_value and avg_rating on alcohols
// and users consistent with the set of active reviews.
type RatingService struct {
	repo   ratingRepository
	logger *zap.Logger
	conf   *configs.Config
}

func NewRatingService(repo ratingRepository, logger *zap.Logger, conf *configs.Config) *RatingService {
	return &RatingService{repo: repo, logger: logger, conf: conf}
}

// Submit creates the author's review of an alcohol. Each author gets one
// active review per alcohol; a second submission must go through Edit.
func (s *RatingService) Submit(ctx context.Context, userID uint, alcoholID uint, rating int, body *string) (*model.Review, error) {
	if err := s.validateRating(rating); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		return nil, err
	}

	if user.IsBanned {
		return nil, fmt.Errorf("%w: banned users cannot review", ErrForbidden)
	}

	if _, err = s.repo.GetAlcoholByID(ctx, alcoholID); err != nil {
		if errors.Is(err, repository.ErrAlcoholNotFound) {
			return nil, fmt.Errorf("%w: alcohol %d", ErrNotFound, alcoholID)
		}

		return nil, err
	}

	exists, err := s.repo.HasReview(ctx, userID, alcoholID)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, fmt.Errorf("%w: user %d already reviewed alcohol %d", ErrDuplicateReview, userID, alcoholID)
	}

	review := model.Review{
		UserID:    userID,
		Username:  user.Username,
		AlcoholID: alcoholID,
		Body:      body,
		Rating:    rating,
	}

	var created *model.Review

	err = withWriteRetry(ctx, s.logger, func() error {
		var createErr error
		created, createErr = s.repo.CreateReview(ctx, review)

		return createErr
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Edit adjusts an existing review. The rating delta flows into rate_value
// while rate_count stays put.
func (s *RatingService) Edit(ctx context.Context, reviewID uint, userID uint, newRating int, body *string) (*model.Review, error) {
	if err := s.validateRating(newRating); err != nil {
		return nil, err
	}

	if err := s.ensureOwnership(ctx, reviewID, userID); err != nil {
		return nil, err
	}

	var updated *model.Review

	err := withWriteRetry(ctx, s.logger, func() error {
		var updateErr error
		updated, updateErr = s.repo.UpdateReviewRating(ctx, reviewID, newRating, body)

		return updateErr
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the author's review and backs its rating out of the
// aggregates.
func (s *RatingService) Delete(ctx context.Context, reviewID uint, userID uint) error {
	if err := s.ensureOwnership(ctx, reviewID, userID); err != nil {
		return err
	}

	return withWriteRetry(ctx, s.logger, func() error {
		return s.repo.DeleteReview(ctx, reviewID)
	})
}

func (s *RatingService) AlcoholReviews(ctx context.Context, alcoholID uint, limit int, offset int) ([]*model.Review, error) {
	return s.repo.GetAlcoholReviews(ctx, alcoholID, limit, offset)
}

func (s *RatingService) UserReviews(ctx context.Context, userID uint, limit int, offset int) ([]*model.Review, error) {
	return s.repo.GetUserReviews(ctx, userID, limit, offset)
}

func (s *RatingService) validateRating(rating int) error {
	if rating < s.conf.Rating.Minimum || rating > s.conf.Rating.Maximum {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, s.conf.Rating.Minimum, s.conf.Rating.Maximum)
	}

	return nil
}

func (s *RatingService) ensureOwnership(ctx context.Context, reviewID uint, userID uint) error {
	review, err := s.repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}

		return err
	}

	if review.UserID != userID {
		user, err := s.repo.GetUserByID(ctx, userID)
		if err != nil || !user.IsAdmin {
			return fmt.Errorf("%w: review %d does not belong to user %d", ErrForbidden, reviewID, userID)
		}
	}

	return nil
}
