package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

type ModerationRepository interface {
	AddReport(ctx context.Context, reviewID uint, reporterID uint) (int64, error)
	AddHelpfulVote(ctx context.Context, reviewID uint, voterID uint) (int64, error)
	GetReporters(ctx context.Context, reviewID uint) ([]uint, error)
	ListReported(ctx context.Context, threshold int, limit int, offset int) ([]*model.Review, error)
	BanReview(ctx context.Context, reviewID uint, reason *string, adminID uint, revertRating bool) (*model.BannedReview, error)
	GetBannedReviews(ctx context.Context, alcoholID uint, limit int, offset int) ([]*model.BannedReview, error)
}

// AddReport records the reporter idempotently and returns the report count
// after the call. Reporting twice leaves the count unchanged.
func (r *Repository) AddReport(ctx context.Context, reviewID uint, reporterID uint) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report := model.ReviewReport{ReviewID: reviewID, ReporterID: reporterID}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&report)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			if err := tx.Model(&model.Review{}).Where("id = ?", reviewID).
				Update("report_count", gorm.Expr("report_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Review{}).Select("report_count").
			Where("id = ?", reviewID).Scan(&count).Error
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) AddHelpfulVote(ctx context.Context, reviewID uint, voterID uint) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := model.ReviewHelpfulVote{ReviewID: reviewID, VoterID: voterID}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			if err := tx.Model(&model.Review{}).Where("id = ?", reviewID).
				Update("helpful_count", gorm.Expr("helpful_count + 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Review{}).Select("helpful_count").
			Where("id = ?", reviewID).Scan(&count).Error
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) GetReporters(ctx context.Context, reviewID uint) ([]uint, error) {
	var reporters []uint

	result := r.DB.WithContext(ctx).Model(&model.ReviewReport{}).
		Where("review_id = ?", reviewID).
		Order("created_at asc").
		Pluck("reporter_id", &reporters)
	if result.Error != nil {
		return nil, result.Error
	}

	return reporters, nil
}

func (r *Repository) ListReported(ctx context.Context, threshold int, limit int, offset int) ([]*model.Review, error) {
	var reviews []*model.Review

	result := r.DB.WithContext(ctx).
		Where("report_count >= ?", threshold).
		Order("report_count desc, created_at asc").
		Limit(limit).Offset(offset).
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

// BanReview snapshots the review into the audit table and removes it from
// the active set. The rating contribution is reversed only when the
// caller asks for it.
func (r *Repository) BanReview(ctx context.Context, reviewID uint, reason *string, adminID uint, revertRating bool) (*model.BannedReview, error) {
	var banned model.BannedReview

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review model.Review

		// locked so a ban racing the author's delete cannot snapshot or
		// decrement a review the other transaction already removed
		if result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&review, reviewID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}

			return result.Error
		}

		var reporters []uint
		if err := tx.Model(&model.ReviewReport{}).
			Where("review_id = ?", reviewID).
			Order("created_at asc").
			Pluck("reporter_id", &reporters).Error; err != nil {
			return err
		}

		banned = model.BannedReview{
			ReviewID:    review.ID,
			UserID:      review.UserID,
			Username:    review.Username,
			AlcoholID:   review.AlcoholID,
			Body:        review.Body,
			Rating:      review.Rating,
			ReviewedOn:  review.CreatedAt,
			ReportCount: review.ReportCount,
			Reporters:   reporters,
			Reason:      reason,
			BannedBy:    adminID,
			BanDate:     time.Now().UTC(),
		}

		if result := tx.Create(&banned); result.Error != nil {
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

		if result.RowsAffected == 0 {
			return ErrReviewNotFound
		}

		if !revertRating {
			return nil
		}

		if err := removeRating(tx, "alcohols", review.AlcoholID, review.Rating); err != nil {
			return err
		}

		return removeRating(tx, "users", review.UserID, review.Rating)
	})
	if err != nil {
		return nil, err
	}

	return &banned, nil
}

func (r *Repository) GetBannedReviews(ctx context.Context, alcoholID uint, limit int, offset int) ([]*model.BannedReview, error) {
	var banned []*model.BannedReview

	result := r.DB.WithContext(ctx).
		Where("alcohol_id = ?", alcoholID).
		Order("ban_date desc").
		Limit(limit).Offset(offset).
		Find(&banned)
	if result.Error != nil {
		return nil, result.Error
	}

	return banned, nil
}
