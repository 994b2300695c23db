package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

type collectionRepository interface {
	repository.CollectionRepository
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	GetAlcoholByID(ctx context.Context, alcoholID uint) (*model.Alcohol, error)
}

// CollectionService manages the per-user sets: wishlist, favourites and
// named tags. Adds and removes are idempotent in both directions.
type CollectionService struct {
	repo   collectionRepository
	logger *zap.Logger
}

func NewCollectionService(repo collectionRepository, logger *zap.Logger) *CollectionService {
	return &CollectionService{repo: repo, logger: logger}
}

func (s *CollectionService) AddToWishlist(ctx context.Context, userID uint, alcoholID uint) error {
	if err := s.ensureMembers(ctx, userID, alcoholID); err != nil {
		return err
	}

	_, err := s.repo.AddToWishlist(ctx, userID, alcoholID)

	return err
}

func (s *CollectionService) RemoveFromWishlist(ctx context.Context, userID uint, alcoholID uint) error {
	_, err := s.repo.RemoveFromWishlist(ctx, userID, alcoholID)

	return err
}

func (s *CollectionService) Wishlist(ctx context.Context, userID uint, limit int, offset int) ([]*model.WishlistEntry, error) {
	return s.repo.GetWishlist(ctx, userID, limit, offset)
}

func (s *CollectionService) AddToFavourites(ctx context.Context, userID uint, alcoholID uint) error {
	if err := s.ensureMembers(ctx, userID, alcoholID); err != nil {
		return err
	}

	_, err := s.repo.AddToFavourites(ctx, userID, alcoholID)

	return err
}

func (s *CollectionService) RemoveFromFavourites(ctx context.Context, userID uint, alcoholID uint) error {
	_, err := s.repo.RemoveFromFavourites(ctx, userID, alcoholID)

	return err
}

func (s *CollectionService) Favourites(ctx context.Context, userID uint, limit int, offset int) ([]*model.FavouriteEntry, error) {
	return s.repo.GetFavourites(ctx, userID, limit, offset)
}

func (s *CollectionService) CreateTag(ctx context.Context, userID uint, name string) (*model.Tag, error) {
	if len(name) == 0 {
		return nil, fmt.Errorf("%w: tag name must not be empty", ErrValidation)
	}

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.repo.CreateTag(ctx, userID, name)
}

func (s *CollectionService) RenameTag(ctx context.Context, tagID uint, userID uint, name string) error {
	if len(name) == 0 {
		return fmt.Errorf("%w: tag name must not be empty", ErrValidation)
	}

	if err := s.ensureTagOwner(ctx, tagID, userID); err != nil {
		return err
	}

	return s.repo.RenameTag(ctx, tagID, name)
}

func (s *CollectionService) DeleteTag(ctx context.Context, tagID uint, userID uint) error {
	if err := s.ensureTagOwner(ctx, tagID, userID); err != nil {
		return err
	}

	return s.repo.DeleteTag(ctx, tagID)
}

func (s *CollectionService) UserTags(ctx context.Context, userID uint, limit int, offset int) ([]*model.Tag, error) {
	return s.repo.GetUserTags(ctx, userID, limit, offset)
}

func (s *CollectionService) AddToTag(ctx context.Context, tagID uint, userID uint, alcoholID uint) error {
	if err := s.ensureTagOwner(ctx, tagID, userID); err != nil {
		return err
	}

	if err := s.ensureAlcohol(ctx, alcoholID); err != nil {
		return err
	}

	_, err := s.repo.AddToTag(ctx, tagID, alcoholID)

	return err
}

func (s *CollectionService) RemoveFromTag(ctx context.Context, tagID uint, userID uint, alcoholID uint) error {
	if err := s.ensureTagOwner(ctx, tagID, userID); err != nil {
		return err
	}

	_, err := s.repo.RemoveFromTag(ctx, tagID, alcoholID)

	return err
}

func (s *CollectionService) TagAlcohols(ctx context.Context, tagID uint, userID uint, limit int, offset int) ([]*model.TagEntry, error) {
	if err := s.ensureTagOwner(ctx, tagID, userID); err != nil {
		return nil, err
	}

	return s.repo.GetTagAlcohols(ctx, tagID, limit, offset)
}

// RecordSearch appends to the user's search history; repeats are kept.
func (s *CollectionService) RecordSearch(ctx context.Context, userID uint, alcoholID uint) error {
	if err := s.ensureMembers(ctx, userID, alcoholID); err != nil {
		return err
	}

	return s.repo.AppendSearchHistory(ctx, userID, alcoholID)
}

func (s *CollectionService) SearchHistory(ctx context.Context, userID uint, limit int, offset int) ([]*model.SearchHistoryEntry, error) {
	return s.repo.GetSearchHistory(ctx, userID, limit, offset)
}

func (s *CollectionService) ClearSearchHistory(ctx context.Context, userID uint) error {
	return s.repo.ClearSearchHistory(ctx, userID)
}

func (s *CollectionService) ensureMembers(ctx context.Context, userID uint, alcoholID uint) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}

	return s.ensureAlcohol(ctx, alcoholID)
}

func (s *CollectionService) ensureUser(ctx context.Context, userID uint) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}

		return err
	}

	return nil
}

func (s *CollectionService) ensureAlcohol(ctx context.Context, alcoholID uint) error {
	if _, err := s.repo.GetAlcoholByID(ctx, alcoholID); err != nil {
		if errors.Is(err, repository.ErrAlcoholNotFound) {
			return fmt.Errorf("%w: alcohol %d", ErrNotFound, alcoholID)
		}

		return err
	}

	return nil
}

func (s *CollectionService) ensureTagOwner(ctx context.Context, tagID uint, userID uint) error {
	tag, err := s.repo.GetTag(ctx, tagID)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return fmt.Errorf("%w: tag %d", ErrNotFound, tagID)
		}

		return err
	}

	if tag.UserID != userID {
		return fmt.Errorf("%w: tag %d does not belong to user %d", ErrForbidden, tagID, userID)
	}

	return nil
}
