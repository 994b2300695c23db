package repository

import (
	"context"

	"gorm.io/gorm"

	"alkoholove.dev/Alkoholove/pkg/model"
)

type FacetRepository interface {
	GetFacetComponents(ctx context.Context) ([]FacetComponents, error)
	ReplaceFacets(ctx context.Context, entries []model.FacetEntry) error
	GetFacets(ctx context.Context) ([]*model.FacetEntry, error)
	GetFacetsForGroup(ctx context.Context, group string) (*model.FacetEntry, error)
}

// ReplaceFacets swaps the whole derived table in one transaction so
// readers see either the old index or the new one, never a mix.
func (r *Repository) ReplaceFacets(ctx context.Context, entries []model.FacetEntry) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&model.FacetEntry{}).Error; err != nil {
			return err
		}

		if len(entries) == 0 {
			return nil
		}

		return tx.Create(&entries).Error
	})
}

func (r *Repository) GetFacets(ctx context.Context) ([]*model.FacetEntry, error) {
	var entries []*model.FacetEntry

	result := r.DB.WithContext(ctx).Order("kind_group asc").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

func (r *Repository) GetFacetsForGroup(ctx context.Context, group string) (*model.FacetEntry, error) {
	var entry model.FacetEntry

	result := r.DB.WithContext(ctx).Where("kind_group = ?", group).First(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}
