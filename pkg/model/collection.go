package model

import (
	"time"

	"gorm.io/gorm"
)

type WishlistEntry struct {
	gorm.Model
	UserID    uint `gorm:"uniqueIndex:idx_wishlist_member;index"`
	AlcoholID uint `gorm:"uniqueIndex:idx_wishlist_member"`

	Alcohol Alcohol `gorm:"foreignKey:AlcoholID"`
}

type FavouriteEntry struct {
	gorm.Model
	UserID    uint `gorm:"uniqueIndex:idx_favourite_member;index"`
	AlcoholID uint `gorm:"uniqueIndex:idx_favourite_member"`

	Alcohol Alcohol `gorm:"foreignKey:AlcoholID"`
}

// Tag is a named, user-owned set of alcohols. A user may keep any number
// of tags; membership is independent across them.
type Tag struct {
	gorm.Model
	UserID uint   `gorm:"uniqueIndex:idx_tag_owner_name;index"`
	Name   string `gorm:"uniqueIndex:idx_tag_owner_name"`

	Entries []TagEntry
}

type TagEntry struct {
	gorm.Model
	TagID     uint `gorm:"uniqueIndex:idx_tag_member;index"`
	AlcoholID uint `gorm:"uniqueIndex:idx_tag_member"`

	Alcohol Alcohol `gorm:"foreignKey:AlcoholID"`
}

// SearchHistoryEntry is append-only; repeated searches produce new rows.
type SearchHistoryEntry struct {
	gorm.Model
	UserID     uint `gorm:"index"`
	AlcoholID  uint
	SearchedAt time.Time

	Alcohol Alcohol `gorm:"foreignKey:AlcoholID"`
}
