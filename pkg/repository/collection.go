package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

var ErrTagNotFound = errors.New("tag not found")

type CollectionRepository interface {
	AddToWishlist(ctx context.Context, userID uint, alcoholID uint) (bool, error)
	RemoveFromWishlist(ctx context.Context, userID uint, alcoholID uint) (bool, error)
	GetWishlist(ctx context.Context, userID uint, limit int, offset int) ([]*model.WishlistEntry, error)
	AddToFavourites(ctx context.Context, userID uint, alcoholID uint) (bool, error)
	RemoveFromFavourites(ctx context.Context, userID uint, alcoholID uint) (bool, error)
	GetFavourites(ctx context.Context, userID uint, limit int, offset int) ([]*model.FavouriteEntry, error)
	CreateTag(ctx context.Context, userID uint, name string) (*model.Tag, error)
	RenameTag(ctx context.Context, tagID uint, name string) error
	DeleteTag(ctx context.Context, tagID uint) error
	GetTag(ctx context.Context, tagID uint) (*model.Tag, error)
	GetUserTags(ctx context.Context, userID uint, limit int, offset int) ([]*model.Tag, error)
	AddToTag(ctx context.Context, tagID uint, alcoholID uint) (bool, error)
	RemoveFromTag(ctx context.Context, tagID uint, alcoholID uint) (bool, error)
	GetTagAlcohols(ctx context.Context, tagID uint, limit int, offset int) ([]*model.TagEntry, error)
	AppendSearchHistory(ctx context.Context, userID uint, alcoholID uint) error
	GetSearchHistory(ctx context.Context, userID uint, limit int, offset int) ([]*model.SearchHistoryEntry, error)
	ClearSearchHistory(ctx context.Context, userID uint) error
}

func (r *Repository) AddToWishlist(ctx context.Context, userID uint, alcoholID uint) (bool, error) {
	entry := model.WishlistEntry{UserID: userID, AlcoholID: alcoholID}

	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *Repository) RemoveFromWishlist(ctx context.Context, userID uint, alcoholID uint) (bool, error) {
	result := r.DB.WithContext(ctx).Unscoped().
		Where("user_id = ? AND alcohol_id = ?", userID, alcoholID).
		Delete(&model.WishlistEntry{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *Repository) GetWishlist(ctx context.Context, userID uint, limit int, offset int) ([]*model.WishlistEntry, error) {
	var entries []*model.WishlistEntry

	result := r.DB.WithContext(ctx).
		Joins("Alcohol").
		Where("wishlist_entries.user_id = ?", userID).
		Order("wishlist_entries.created_at desc").
		Limit(limit).Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// AddToFavourites keeps User.FavouritesCount equal to the set size.
func (r *Repository) AddToFavourites(ctx context.Context, userID uint, alcoholID uint) (bool, error) {
	created := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := model.FavouriteEntry{UserID: userID, AlcoholID: alcoholID}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		created = true

		return tx.Model(&model.User{}).Where("id = ?", userID).
			Update("favourites_count", gorm.Expr("favourites_count + 1")).Error
	})

	return created, err
}

func (r *Repository) RemoveFromFavourites(ctx context.Context, userID uint, alcoholID uint) (bool, error) {
	removed := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().
			Where("user_id = ? AND alcohol_id = ?", userID, alcoholID).
			Delete(&model.FavouriteEntry{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		removed = true

		return tx.Model(&model.User{}).Where("id = ? AND favourites_count > 0", userID).
			Update("favourites_count", gorm.Expr("favourites_count - 1")).Error
	})

	return removed, err
}

func (r *Repository) GetFavourites(ctx context.Context, userID uint, limit int, offset int) ([]*model.FavouriteEntry, error) {
	var entries []*model.FavouriteEntry

	result := r.DB.WithContext(ctx).
		Joins("Alcohol").
		Where("favourite_entries.user_id = ?", userID).
		Order("favourite_entries.created_at desc").
		Limit(limit).Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (r *Repository) CreateTag(ctx context.Context, userID uint, name string) (*model.Tag, error) {
	tag := model.Tag{UserID: userID, Name: name}

	if result := r.DB.WithContext(ctx).Create(&tag); result.Error != nil {
		return nil, result.Error
	}

	return &tag, nil
}

func (r *Repository) RenameTag(ctx context.Context, tagID uint, name string) error {
	result := r.DB.WithContext(ctx).Model(&model.Tag{}).
		Where("id = ?", tagID).
		Update("name", name)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}

	return nil
}

func (r *Repository) DeleteTag(ctx context.Context, tagID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("tag_id = ?", tagID).Delete(&model.TagEntry{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&model.Tag{}, tagID).Error
	})
}

func (r *Repository) GetTag(ctx context.Context, tagID uint) (*model.Tag, error) {
	var tag model.Tag

	result := r.DB.WithContext(ctx).First(&tag, tagID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}

		return nil, result.Error
	}

	return &tag, nil
}

func (r *Repository) GetUserTags(ctx context.Context, userID uint, limit int, offset int) ([]*model.Tag, error) {
	var tags []*model.Tag

	result := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Limit(limit).Offset(offset).
		Find(&tags)
	if result.Error != nil {
		return nil, result.Error
	}

	return tags, nil
}

func (r *Repository) AddToTag(ctx context.Context, tagID uint, alcoholID uint) (bool, error) {
	entry := model.TagEntry{TagID: tagID, AlcoholID: alcoholID}

	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *Repository) RemoveFromTag(ctx context.Context, tagID uint, alcoholID uint) (bool, error) {
	result := r.DB.WithContext(ctx).Unscoped().
		Where("tag_id = ? AND alcohol_id = ?", tagID, alcoholID).
		Delete(&model.TagEntry{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *Repository) GetTagAlcohols(ctx context.Context, tagID uint, limit int, offset int) ([]*model.TagEntry, error) {
	var entries []*model.TagEntry

	result := r.DB.WithContext(ctx).
		Joins("Alcohol").
		Where("tag_entries.tag_id = ?", tagID).
		Order("tag_entries.created_at desc").
		Limit(limit).Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// AppendSearchHistory never deduplicates; a repeat search is a new entry.
func (r *Repository) AppendSearchHistory(ctx context.Context, userID uint, alcoholID uint) error {
	entry := model.SearchHistoryEntry{UserID: userID, AlcoholID: alcoholID, SearchedAt: time.Now().UTC()}

	return r.DB.WithContext(ctx).Create(&entry).Error
}

func (r *Repository) GetSearchHistory(ctx context.Context, userID uint, limit int, offset int) ([]*model.SearchHistoryEntry, error) {
	var entries []*model.SearchHistoryEntry

	result := r.DB.WithContext(ctx).
		Joins("Alcohol").
		Where("search_history_entries.user_id = ?", userID).
		Order("search_history_entries.searched_at desc").
		Limit(limit).Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (r *Repository) ClearSearchHistory(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).
		Delete(&model.SearchHistoryEntry{}).Error
}
