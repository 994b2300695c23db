package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

// SocialRepository is the storage contract of the follow graph. The edge
// insert and both counter updates form a single transactional unit, so a
// partial write can never leave the two sides of the graph disagreeing.
type SocialRepository interface {
	AddFollow(ctx context.Context, followerID uint, followeeID uint) (bool, error)
	RemoveFollow(ctx context.Context, followerID uint, followeeID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID uint, followeeID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint, limit int, offset int) ([]*model.User, error)
	GetFollowing(ctx context.Context, userID uint, limit int, offset int) ([]*model.User, error)
	ReconcileSocialCounters(ctx context.Context) (int64, error)
}

// AddFollow inserts the edge and bumps both users' counters in one
// transaction. Returns false when the edge already existed.
func (r *Repository) AddFollow(ctx context.Context, followerID uint, followeeID uint) (bool, error) {
	created := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := model.FollowEdge{FollowerID: followerID, FolloweeID: followeeID}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		created = true

		if err := tx.Model(&model.User{}).Where("id = ?", followerID).
			Update("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", followeeID).
			Update("followers_count", gorm.Expr("followers_count + 1")).Error
	})

	return created, err
}

// RemoveFollow is the inverse of AddFollow. Returns false when there was
// no edge to remove.
func (r *Repository) RemoveFollow(ctx context.Context, followerID uint, followeeID uint) (bool, error) {
	removed := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&model.FollowEdge{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return nil
		}

		removed = true

		if err := tx.Model(&model.User{}).Where("id = ? AND following_count > 0", followerID).
			Update("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ? AND followers_count > 0", followeeID).
			Update("followers_count", gorm.Expr("followers_count - 1")).Error
	})

	return removed, err
}

func (r *Repository) IsFollowing(ctx context.Context, followerID uint, followeeID uint) (bool, error) {
	var count int64

	result := r.DB.WithContext(ctx).Model(&model.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (r *Repository) GetFollowers(ctx context.Context, userID uint, limit int, offset int) ([]*model.User, error) {
	var users []*model.User

	result := r.DB.WithContext(ctx).
		Joins("INNER JOIN follow_edges fe ON fe.follower_id = users.id").
		Where("fe.followee_id = ?", userID).
		Order("users.username asc").
		Limit(limit).Offset(offset).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (r *Repository) GetFollowing(ctx context.Context, userID uint, limit int, offset int) ([]*model.User, error) {
	var users []*model.User

	result := r.DB.WithContext(ctx).
		Joins("INNER JOIN follow_edges fe ON fe.followee_id = users.id").
		Where("fe.follower_id = ?", userID).
		Order("users.username asc").
		Limit(limit).Offset(offset).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// ReconcileSocialCounters recomputes both counters from the edge relation
// and repairs any user whose bookkeeping drifted. Returns the number of
// repaired rows.
func (r *Repository) ReconcileSocialCounters(ctx context.Context) (int64, error) {
	result := r.DB.WithContext(ctx).Exec(
		"UPDATE users SET" +
			" following_count = (SELECT count(*) FROM follow_edges WHERE follower_id = users.id)," +
			" followers_count = (SELECT count(*) FROM follow_edges WHERE followee_id = users.id)" +
			" WHERE following_count <> (SELECT count(*) FROM follow_edges WHERE follower_id = users.id)" +
			" OR followers_count <> (SELECT count(*) FROM follow_edges WHERE followee_id = users.id)")

	return result.RowsAffected, result.Error
}
