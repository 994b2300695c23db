package model

import (
	"time"

	"gorm.io/gorm"
)

// FacetAllKinds is the synthetic group holding the union across kinds.
const FacetAllKinds = "all"

// FacetEntry is a derived read model. The whole table is replaced on every
// rebuild and is never the source of truth.
type FacetEntry struct {
	gorm.Model
	Group     string   `gorm:"uniqueIndex;column:kind_group"`
	Types     []string `gorm:"serializer:json"`
	Colors    []string `gorm:"serializer:json"`
	Countries []string `gorm:"serializer:json"`
	RebuiltAt time.Time
}
