package model

import (
	"time"

	"gorm.io/gorm"
)

type BlacklistedToken struct {
	gorm.Model
	JTI            string    `gorm:"uniqueIndex"`
	ExpirationDate time.Time `gorm:"index"`
}
