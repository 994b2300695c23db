package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

// CatalogService fronts the alcohol catalog. Records are validated as a
// tagged union before any write reaches the store.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) Add(ctx context.Context, alcohol model.Alcohol) (*model.Alcohol, error) {
	if err := alcohol.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	return s.repo.AddAlcohol(ctx, alcohol)
}

func (s *CatalogService) Update(ctx context.Context, alcohol *model.Alcohol) (*model.Alcohol, error) {
	if err := alcohol.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	return s.repo.UpdateAlcohol(ctx, alcohol)
}

func (s *CatalogService) Delete(ctx context.Context, alcoholID uint) error {
	return s.repo.DeleteAlcohol(ctx, alcoholID)
}

func (s *CatalogService) GetByID(ctx context.Context, alcoholID uint) (*model.Alcohol, error) {
	alcohol, err := s.repo.GetAlcoholByID(ctx, alcoholID)
	if err != nil {
		if errors.Is(err, repository.ErrAlcoholNotFound) {
			return nil, fmt.Errorf("%w: alcohol %d", ErrNotFound, alcoholID)
		}

		return nil, err
	}

	return alcohol, nil
}

func (s *CatalogService) GetByBarcode(ctx context.Context, barcode string) (*model.Alcohol, error) {
	alcohol, err := s.repo.GetAlcoholByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, repository.ErrAlcoholNotFound) {
			return nil, fmt.Errorf("%w: barcode %s", ErrNotFound, barcode)
		}

		return nil, err
	}

	return alcohol, nil
}

func (s *CatalogService) Search(ctx context.Context, query string, limit int, offset int) ([]*model.Alcohol, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: search query must not be empty", ErrValidation)
	}

	return s.repo.SearchAlcohols(ctx, query, limit, offset)
}
