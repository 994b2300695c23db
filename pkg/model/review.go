package model

import (
	"time"

	"gorm.io/gorm"
)

// Review keeps a denormalized author username so the displayed name is a
// snapshot from submission time. ReportCount and HelpfulCount always equal
// the size of their respective voter sets.
type Review struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex:idx_review_author_alcohol"`
	Username  string
	AlcoholID uint `gorm:"uniqueIndex:idx_review_author_alcohol;index"`
	Body      *string
	Rating    int

	ReportCount  int64
	HelpfulCount int64

	Reports      []ReviewReport
	HelpfulVotes []ReviewHelpfulVote
}

type ReviewReport struct {
	gorm.Model
	ReviewID   uint `gorm:"uniqueIndex:idx_review_reporter;index"`
	ReporterID uint `gorm:"uniqueIndex:idx_review_reporter"`
}

type ReviewHelpfulVote struct {
	gorm.Model
	ReviewID uint `gorm:"uniqueIndex:idx_review_helpful_voter;index"`
	VoterID  uint `gorm:"uniqueIndex:idx_review_helpful_voter"`
}

// BannedReview is an append-only audit snapshot of a review at the moment
// of the ban, reporters included.
type BannedReview struct {
	gorm.Model
	ReviewID    uint `gorm:"uniqueIndex"`
	UserID      uint
	Username    string
	AlcoholID   uint `gorm:"index"`
	Body        *string
	Rating      int
	ReviewedOn  time.Time
	ReportCount int64
	Reporters   []uint `gorm:"serializer:json"`
	Reason      *string
	BannedBy    uint
	BanDate     time.Time
}
