package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/pkg/integrations"
	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

type suggestionRepository interface {
	repository.SuggestionRepository
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	GetAlcoholByBarcode(ctx context.Context, barcode string) (*model.Alcohol, error)
}

// SuggestionService gathers requests for catalog items that don't exist
// yet. External integrations may prefill name and kind from the barcode;
// their failure only means an emptier suggestion.
type SuggestionService struct {
	repo         suggestionRepository
	integrations []integrations.Integration
	logger       *zap.Logger
}

func NewSuggestionService(repo suggestionRepository, integrations []integrations.Integration, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{repo: repo, integrations: integrations, logger: logger}
}

func (s *SuggestionService) Suggest(ctx context.Context, userID uint, barcode string, description *string) (*model.AlcoholSuggestion, error) {
	if len(barcode) == 0 {
		return nil, fmt.Errorf("%w: barcode must not be empty", ErrValidation)
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		return nil, err
	}

	if _, err := s.repo.GetAlcoholByBarcode(ctx, barcode); err == nil {
		return nil, fmt.Errorf("%w: barcode %s is already in the catalog", ErrInvalidOperation, barcode)
	} else if !errors.Is(err, repository.ErrAlcoholNotFound) {
		return nil, err
	}

	var kind, name *string

	for _, integration := range s.integrations {
		product, err := integration.FindProduct(barcode)
		if err != nil {
			s.logger.Warn("suggestion prefill failed", zap.String("integration", integration.Name()), zap.Error(err))

			continue
		}

		if product != nil {
			kind, name = product.Kind, product.Name

			break
		}
	}

	return s.repo.UpsertSuggestion(ctx, barcode, userID, kind, name, description)
}

func (s *SuggestionService) List(ctx context.Context, limit int, offset int) ([]*model.AlcoholSuggestion, error) {
	return s.repo.ListSuggestions(ctx, limit, offset)
}

func (s *SuggestionService) Dismiss(ctx context.Context, suggestionID uint) error {
	err := s.repo.DeleteSuggestion(ctx, suggestionID)
	if errors.Is(err, repository.ErrSuggestionNotFound) {
		return fmt.Errorf("%w: suggestion %d", ErrNotFound, suggestionID)
	}

	return err
}
