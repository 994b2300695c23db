package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alkoholove.dev/Alkoholove/pkg/model"
)

var ErrAlcoholNotFound = errors.New("alcohol not found")

type CatalogRepository interface {
	AddAlcohol(ctx context.Context, alcohol model.Alcohol) (*model.Alcohol, error)
	UpdateAlcohol(ctx context.Context, alcohol *model.Alcohol) (*model.Alcohol, error)
	DeleteAlcohol(ctx context.Context, alcoholID uint) error
	GetAlcoholByID(ctx context.Context, alcoholID uint) (*model.Alcohol, error)
	GetAlcoholByBarcode(ctx context.Context, barcode string) (*model.Alcohol, error)
	SearchAlcohols(ctx context.Context, query string, limit int, offset int) ([]*model.Alcohol, error)
}

func (r *Repository) AddAlcohol(ctx context.Context, alcohol model.Alcohol) (*model.Alcohol, error) {
	result := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "manufacturer"}},
		UpdateAll: true,
	}).Create(&alcohol)

	if result.Error != nil {
		return nil, result.Error
	}

	return &alcohol, nil
}

func (r *Repository) UpdateAlcohol(ctx context.Context, alcohol *model.Alcohol) (*model.Alcohol, error) {
	if result := r.DB.WithContext(ctx).Save(alcohol); result.Error != nil {
		return nil, result.Error
	}

	return alcohol, nil
}

func (r *Repository) DeleteAlcohol(ctx context.Context, alcoholID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("alcohol_id = ?", alcoholID).Delete(&model.Barcode{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Alcohol{}, alcoholID).Error
	})
}

func (r *Repository) GetAlcoholByID(ctx context.Context, alcoholID uint) (*model.Alcohol, error) {
	var alcohol model.Alcohol

	result := r.DB.WithContext(ctx).
		Preload("Barcodes").
		First(&alcohol, alcoholID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAlcoholNotFound
		}

		return nil, result.Error
	}

	return &alcohol, nil
}

func (r *Repository) GetAlcoholByBarcode(ctx context.Context, barcode string) (*model.Alcohol, error) {
	var alcohol model.Alcohol

	result := r.DB.WithContext(ctx).
		Joins("INNER JOIN barcodes ON barcodes.alcohol_id = alcohols.id").
		Where("barcodes.code = ?", barcode).
		Preload("Barcodes").
		First(&alcohol)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAlcoholNotFound
		}

		return nil, result.Error
	}

	return &alcohol, nil
}

// SearchAlcohols ranks by a weighted document: name in the heaviest class,
// kind and type next, then color, then description and keywords.
func (r *Repository) SearchAlcohols(ctx context.Context, query string, limit int, offset int) ([]*model.Alcohol, error) {
	var alcohols []*model.Alcohol

	document := "setweight(to_tsvector('simple', name), 'A')" +
		" || setweight(to_tsvector('simple', kind || ' ' || type), 'B')" +
		" || setweight(to_tsvector('simple', color), 'C')" +
		" || setweight(to_tsvector('simple', description || ' ' || coalesce(keywords, '')), 'D')"

	result := r.DB.WithContext(ctx).
		Select("alcohols.*, ts_rank("+document+", plainto_tsquery('simple', ?)) AS search_rank", query).
		Where(document+" @@ plainto_tsquery('simple', ?)", query).
		Order("search_rank DESC").
		Limit(limit).Offset(offset).
		Find(&alcohols)
	if result.Error != nil {
		return nil, result.Error
	}

	return alcohols, nil
}

type FacetComponents struct {
	Kind    string
	Type    string
	Color   string
	Country string
}

// GetFacetComponents streams the raw facet source rows for a rebuild.
func (r *Repository) GetFacetComponents(ctx context.Context) ([]FacetComponents, error) {
	var rows []FacetComponents

	result := r.DB.WithContext(ctx).Model(&model.Alcohol{}).
		Select("kind", "type", "color", "country").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
