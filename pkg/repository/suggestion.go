package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"alkoholove.dev/Alkoholove/pkg/model"
)

var ErrSuggestionNotFound = errors.New("suggestion not found")

type SuggestionRepository interface {
	UpsertSuggestion(ctx context.Context, barcode string, userID uint, kind *string, name *string, description *string) (*model.AlcoholSuggestion, error)
	ListSuggestions(ctx context.Context, limit int, offset int) ([]*model.AlcoholSuggestion, error)
	DeleteSuggestion(ctx context.Context, suggestionID uint) error
}

// UpsertSuggestion joins a repeat suggestion for the same barcode to the
// existing row: the user id is added once, the description appended.
func (r *Repository) UpsertSuggestion(ctx context.Context, barcode string, userID uint, kind *string, name *string, description *string) (*model.AlcoholSuggestion, error) {
	var suggestion model.AlcoholSuggestion

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("barcode = ?", barcode).First(&suggestion)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}

			suggestion = model.AlcoholSuggestion{
				Barcode: barcode,
				Kind:    kind,
				Name:    name,
				UserIDs: []uint{userID},
			}
			if description != nil {
				suggestion.Descriptions = []string{*description}
			}

			return tx.Create(&suggestion).Error
		}

		for _, id := range suggestion.UserIDs {
			if id == userID {
				return nil
			}
		}

		suggestion.UserIDs = append(suggestion.UserIDs, userID)
		if description != nil {
			suggestion.Descriptions = append(suggestion.Descriptions, *description)
		}

		return tx.Save(&suggestion).Error
	})
	if err != nil {
		return nil, err
	}

	return &suggestion, nil
}

func (r *Repository) ListSuggestions(ctx context.Context, limit int, offset int) ([]*model.AlcoholSuggestion, error) {
	var suggestions []*model.AlcoholSuggestion

	result := r.DB.WithContext(ctx).
		Order("created_at asc").
		Limit(limit).Offset(offset).
		Find(&suggestions)
	if result.Error != nil {
		return nil, result.Error
	}

	return suggestions, nil
}

func (r *Repository) DeleteSuggestion(ctx context.Context, suggestionID uint) error {
	result := r.DB.WithContext(ctx).Unscoped().Delete(&model.AlcoholSuggestion{}, suggestionID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSuggestionNotFound
	}

	return nil
}
