package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries denormalized social counters and rating accumulators.
// AvgRating is always recomputed from RateValue/RateCount in the same
// statement that changes them, never written on its own.
type User struct {
	gorm.Model
	UUID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4()"`
	Username     string    `gorm:"uniqueIndex"`
	Email        string    `gorm:"uniqueIndex"`
	PasswordHash string
	LastLogin    *time.Time
	IsAdmin      bool
	IsBanned     bool
	IsVerified   bool

	// one-time codes, present only between issue and consumption
	VerificationCode  *string
	ResetPasswordCode *string
	DeleteAccountCode *string

	RateCount uint64
	RateValue uint64
	AvgRating float64

	FollowingCount  uint64
	FollowersCount  uint64
	FavouritesCount uint64
}
