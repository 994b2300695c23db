package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

var ErrReviewNotFound = errors.New("review not found")

// RatingRepository is the storage contract of the rating aggregator. Every
// accumulator change happens in single-statement SQL arithmetic inside the
// same transaction as the review write, so concurrent submissions cannot
// lose updates.
type RatingRepository interface {
	CreateReview(ctx context.Context, review model.Review) (*model.Review, error)
	UpdateReviewRating(ctx context.Context, reviewID uint, newRating int, body *string) (*model.Review, error)
	DeleteReview(ctx context.Context, reviewID uint) error
	GetReviewByID(ctx context.Context, reviewID uint) (*model.Review, error)
	GetAlcoholReviews(ctx context.Context, alcoholID uint, limit int, offset int) ([]*model.Review, error)
	GetUserReviews(ctx context.Context, userID uint, limit int, offset int) ([]*model.Review, error)
	HasReview(ctx context.Context, userID uint, alcoholID uint) (bool, error)
	RecomputeAlcoholRating(ctx context.Context, alcoholID uint) error
}

func (r *Repository) GetReviewByID(ctx context.Context, reviewID uint) (*model.Review, error) {
	var review model.Review

	result := r.DB.WithContext(ctx).First(&review, reviewID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}

		return nil, result.Error
	}

	return &review, nil
}

func (r *Repository) GetAlcoholReviews(ctx context.Context, alcoholID uint, limit int, offset int) ([]*model.Review, error) {
	var reviews []*model.Review

	result := r.DB.WithContext(ctx).
		Where("alcohol_id = ?", alcoholID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

func (r *Repository) GetUserReviews(ctx context.Context, userID uint, limit int, offset int) ([]*model.Review, error) {
	var reviews []*model.Review

	result := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

func (r *Repository) HasReview(ctx context.Context, userID uint, alcoholID uint) (bool, error) {
	var count int64

	result := r.DB.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND alcohol_id = ?", userID, alcoholID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// CreateReview inserts the review and feeds its rating into the alcohol's
// and the author's accumulators.
func (r *Repository) CreateReview(ctx context.Context, review model.Review) (*model.Review, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&review); result.Error != nil {
			return result.Error
		}

		if err := addRating(tx, "alcohols", review.AlcoholID, review.Rating); err != nil {
			return err
		}

		return addRating(tx, "users", review.UserID, review.Rating)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// UpdateReviewRating applies the rating delta without touching the count.
func (r *Repository) UpdateReviewRating(ctx context.Context, reviewID uint, newRating int, body *string) (*model.Review, error) {
	var review model.Review

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the row lock serializes concurrent edit/delete/ban of the
		// same review so the accumulator delta is computed against the
		// rating that is actually stored
		if result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&review, reviewID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}

			return result.Error
		}

		delta := newRating - review.Rating

		if result := tx.Model(&review).Updates(map[string]interface{}{"rating": newRating, "body": body}); result.Error != nil {
			return result.Error
		}

		if delta == 0 {
			return nil
		}

		if err := shiftRating(tx, "alcohols", review.AlcoholID, delta); err != nil {
			return err
		}

		return shiftRating(tx, "users", review.UserID, delta)
	})
	if err != nil {
		return nil, err
	}

	return &review, nil
}

// DeleteReview removes the review and backs its rating out of both
// accumulators. The row is removed outright so the author may review the
// same alcohol again later.
func (r *Repository) DeleteReview(ctx context.Context, reviewID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review model.Review

		if result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&review, reviewID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}

			return result.Error
		}

		if err := tx.Unscoped().Where("review_id = ?", reviewID).Delete(&model.ReviewReport{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("review_id = ?", reviewID).Delete(&model.ReviewHelpfulVote{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Delete(&review)
		if result.Error != nil {
			return result.Error
		}

		// only the transaction that removed the row reverses its rating
		if result.RowsAffected == 0 {
			return ErrReviewNotFound
		}

		if err := removeRating(tx, "alcohols", review.AlcoholID, review.Rating); err != nil {
			return err
		}

		return removeRating(tx, "users", review.UserID, review.Rating)
	})
}

// RecomputeAlcoholRating rebuilds the accumulators from the active reviews.
// Used as a reconciliation tool; the incremental path must agree with it.
func (r *Repository) RecomputeAlcoholRating(ctx context.Context, alcoholID uint) error {
	result := r.DB.WithContext(ctx).Exec(
		"UPDATE alcohols SET"+
			" rate_count = (SELECT count(*) FROM reviews WHERE alcohol_id = alcohols.id AND deleted_at IS NULL),"+
			" rate_value = (SELECT coalesce(sum(rating), 0) FROM reviews WHERE alcohol_id = alcohols.id AND deleted_at IS NULL),"+
			" avg_rating = (SELECT coalesce(avg(rating), 0) FROM reviews WHERE alcohol_id = alcohols.id AND deleted_at IS NULL)"+
			" WHERE id = ?", alcoholID)

	return result.Error
}

func addRating(tx *gorm.DB, table string, rowID uint, rating int) error {
	return tx.Exec(
		"UPDATE "+table+" SET"+
			" rate_count = rate_count + 1,"+
			" rate_value = rate_value + ?,"+
			" avg_rating = (rate_value + ?)::numeric / (rate_count + 1)"+
			" WHERE id = ?", rating, rating, rowID).Error
}

func shiftRating(tx *gorm.DB, table string, rowID uint, delta int) error {
	return tx.Exec(
		"UPDATE "+table+" SET"+
			" rate_value = rate_value + ?,"+
			" avg_rating = (rate_value + ?)::numeric / rate_count"+
			" WHERE id = ? AND rate_count > 0", delta, delta, rowID).Error
}

func removeRating(tx *gorm.DB, table string, rowID uint, rating int) error {
	return tx.Exec(
		"UPDATE "+table+" SET"+
			" rate_count = rate_count - 1,"+
			" rate_value = rate_value - ?,"+
			" avg_rating = CASE WHEN rate_count - 1 = 0 THEN 0 ELSE (rate_value - ?)::numeric / (rate_count - 1) END"+
			" WHERE id = ? AND rate_count > 0", rating, rating, rowID).Error
}
