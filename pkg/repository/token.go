package repository

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

type TokenRepository interface {
	BlacklistToken(ctx context.Context, jti string, expirationDate time.Time) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

func (r *Repository) BlacklistToken(ctx context.Context, jti string, expirationDate time.Time) error {
	token := model.BlacklistedToken{JTI: jti, ExpirationDate: expirationDate}

	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&token).Error
}

func (r *Repository) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int64

	result := r.DB.WithContext(ctx).Model(&model.BlacklistedToken{}).
		Where("jti = ?", jti).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// PurgeExpiredTokens stands in for a TTL index: rows are removed once
// their expiration date has passed.
func (r *Repository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Unscoped().
		Where("expiration_date < ?", now).
		Delete(&model.BlacklistedToken{})

	return result.RowsAffected, result.Error
}
