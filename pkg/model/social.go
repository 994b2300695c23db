package model

import "gorm.io/gorm"

// FollowEdge is the single authoritative relation of the follow graph.
// The following and followers views are both derived from it, so the two
// sides cannot drift apart.
type FollowEdge struct {
	gorm.Model
	FollowerID uint `gorm:"uniqueIndex:idx_follow_edge;index"`
	FolloweeID uint `gorm:"uniqueIndex:idx_follow_edge;index"`
}
