package model

import (
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type Kind string

const (
	KindBeer    Kind = "piwo"
	KindWhisky  Kind = "whisky"
	KindVodka   Kind = "wódka"
	KindWine    Kind = "wino"
	KindRum     Kind = "rum"
	KindLiqueur Kind = "likier"
)

func Kinds() []Kind {
	return []Kind{KindBeer, KindWhisky, KindVodka, KindWine, KindRum, KindLiqueur}
}

func (k Kind) Valid() bool {
	for _, kind := range Kinds() {
		if k == kind {
			return true
		}
	}

	return false
}

// Alcohol is a tagged union: the core fields are shared by every kind,
// the trailing pointer fields belong to the kind named by Kind.
type Alcohol struct {
	gorm.Model
	Kind            Kind   `gorm:"index"`
	Name            string `gorm:"uniqueIndex:idx_alcohol_unique"`
	Manufacturer    string `gorm:"uniqueIndex:idx_alcohol_unique"`
	Type            string
	Description     string
	AlcoholByVolume float64
	Color           string
	Country         string
	Region          *string
	Food            []string `gorm:"serializer:json"`
	Taste           []string `gorm:"serializer:json"`
	Aroma           []string `gorm:"serializer:json"`
	Finish          []string `gorm:"serializer:json"`
	Keywords        []string `gorm:"serializer:json"`

	RateCount uint64
	RateValue uint64
	AvgRating float64

	Barcodes []Barcode

	// beer
	IBU           *int64
	SRM           *float64
	Extract       *float64
	Fermentation  *string
	IsFiltered    *bool
	IsPasteurized *bool

	// whisky, rum
	Age *int64

	// wine
	VineStrain *string
	Winery     *string
}

type Barcode struct {
	gorm.Model
	AlcoholID uint   `gorm:"index"`
	Code      string `gorm:"index"`
}

var ErrInvalidKind = fmt.Errorf("invalid alcohol kind")

// Validate checks the core field set and then the fields required by the
// record's kind. All violations are reported together.
func (a *Alcohol) Validate() error {
	var errs error

	if !a.Kind.Valid() {
		errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrInvalidKind, a.Kind))
	}

	requireString := func(field, value string) {
		if len(value) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s is required", field))
		}
	}

	requireString("name", a.Name)
	requireString("type", a.Type)
	requireString("color", a.Color)
	requireString("country", a.Country)
	requireString("manufacturer", a.Manufacturer)

	if len(a.Barcodes) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one barcode is required"))
	}

	switch a.Kind {
	case KindBeer:
		if a.Fermentation == nil {
			errs = multierr.Append(errs, fmt.Errorf("fermentation is required for %s", KindBeer))
		}

		if a.IsFiltered == nil {
			errs = multierr.Append(errs, fmt.Errorf("is_filtered is required for %s", KindBeer))
		}

		if a.IsPasteurized == nil {
			errs = multierr.Append(errs, fmt.Errorf("is_pasteurized is required for %s", KindBeer))
		}
	case KindWhisky:
		if a.Age == nil {
			errs = multierr.Append(errs, fmt.Errorf("age is required for %s", KindWhisky))
		}
	case KindWine:
		if a.VineStrain == nil {
			errs = multierr.Append(errs, fmt.Errorf("vine_strain is required for %s", KindWine))
		}

		if a.Winery == nil {
			errs = multierr.Append(errs, fmt.Errorf("winery is required for %s", KindWine))
		}
	case KindVodka, KindRum, KindLiqueur:
		// no kind-specific required fields
	}

	return errs
}
