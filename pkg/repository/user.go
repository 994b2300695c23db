package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

var ErrUserNotFound = errors.New("user not found")

func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User

	result := r.DB.WithContext(ctx).First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *Repository) GetUserByUUID(ctx context.Context, uuid uuid.UUID) (*model.User, error) {
	var user model.User

	result := r.DB.WithContext(ctx).Where("uuid = ?", uuid).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *Repository) GetUserByName(ctx context.Context, username string) (*model.User, error) {
	var user *model.User

	result := r.DB.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return user, nil
}

func (r *Repository) GetUserFromEmail(ctx context.Context, email string) (*model.User, error) {
	var user *model.User

	result := r.DB.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return user, nil
}

func (r *Repository) AddUser(ctx context.Context, username string, email string, passwordHash string, verificationCode string) (*model.User, error) {
	user := model.User{
		UUID:             uuid.New(),
		Username:         username,
		Email:            email,
		PasswordHash:     passwordHash,
		VerificationCode: &verificationCode,
	}

	if result := r.DB.WithContext(ctx).Create(&user); result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// ConsumeVerificationCode atomically clears the code and marks the user
// verified. A code that matches no user returns ErrUserNotFound.
func (r *Repository) ConsumeVerificationCode(ctx context.Context, code string) (*model.User, error) {
	return r.consumeCode(ctx, "verification_code", code, map[string]interface{}{
		"verification_code": nil,
		"is_verified":       true,
	})
}

func (r *Repository) SetResetPasswordCode(ctx context.Context, userID uint, code string) error {
	result := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("reset_password_code", code)

	return result.Error
}

func (r *Repository) ConsumeResetPasswordCode(ctx context.Context, code string, newPasswordHash string) (*model.User, error) {
	return r.consumeCode(ctx, "reset_password_code", code, map[string]interface{}{
		"reset_password_code": nil,
		"password_hash":       newPasswordHash,
	})
}

func (r *Repository) SetDeleteAccountCode(ctx context.Context, userID uint, code string) error {
	result := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("delete_account_code", code)

	return result.Error
}

// consumeCode clears the code in one conditional UPDATE, so of two
// concurrent consumers exactly one wins; the loser matches no row.
func (r *Repository) consumeCode(ctx context.Context, column string, code string, updates map[string]interface{}) (*model.User, error) {
	var user model.User

	result := r.DB.WithContext(ctx).Model(&user).
		Clauses(clause.Returning{}).
		Where(column+" = ?", code).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID uint) error {
	result := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", gorm.Expr("CURRENT_TIMESTAMP"))

	return result.Error
}

func (r *Repository) SetUserBanned(ctx context.Context, userID uint, banned bool) error {
	result := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("is_banned", banned)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes the user together with everything it owns: follow
// edges on either side, collection sets and search history. Counterparty
// follow counters are decremented in the same transaction so they do not
// wait on the reconcile job.
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"UPDATE users SET followers_count = followers_count - 1"+
				" WHERE followers_count > 0 AND id IN (SELECT followee_id FROM follow_edges WHERE follower_id = ?)", userID).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			"UPDATE users SET following_count = following_count - 1"+
				" WHERE following_count > 0 AND id IN (SELECT follower_id FROM follow_edges WHERE followee_id = ?)", userID).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("follower_id = ? OR followee_id = ?", userID, userID).Delete(&model.FollowEdge{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.WishlistEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.FavouriteEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("tag_id IN (SELECT id FROM tags WHERE user_id = ?)", userID).Delete(&model.TagEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.Tag{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.SearchHistoryEntry{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.User{}, userID).Error
	})
}

// ConsumeDeleteAccountCode clears the code and returns the user it
// belonged to; the caller decides whether to proceed with deletion.
func (r *Repository) ConsumeDeleteAccountCode(ctx context.Context, code string) (*model.User, error) {
	return r.consumeCode(ctx, "delete_account_code", code, map[string]interface{}{
		"delete_account_code": nil,
	})
}
