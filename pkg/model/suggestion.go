package model

import "gorm.io/gorm"

// AlcoholSuggestion collects requests for items missing from the catalog.
// A repeated suggestion for the same barcode joins the existing row instead
// of creating a new one.
type AlcoholSuggestion struct {
	gorm.Model
	Barcode      string `gorm:"uniqueIndex"`
	Kind         *string
	Name         *string
	UserIDs      []uint   `gorm:"serializer:json"`
	Descriptions []string `gorm:"serializer:json"`
}
