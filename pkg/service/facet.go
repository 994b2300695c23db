package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

// FacetService maintains the derived filter index: the distinct
// type/color/country values per kind plus a union group. It is a cache
// over the catalog and can be rebuilt from it at any time.
type FacetService struct {
	repo   repository.FacetRepository
	logger *zap.Logger
}

func NewFacetService(repo repository.FacetRepository, logger *zap.Logger) *FacetService {
	return &FacetService{repo: repo, logger: logger}
}

type facetSets struct {
	types     map[string]struct{}
	colors    map[string]struct{}
	countries map[string]struct{}
}

func newFacetSets() *facetSets {
	return &facetSets{
		types:     make(map[string]struct{}),
		colors:    make(map[string]struct{}),
		countries: make(map[string]struct{}),
	}
}

func (f *facetSets) add(row repository.FacetComponents) {
	if len(row.Type) > 0 {
		f.types[row.Type] = struct{}{}
	}

	if len(row.Color) > 0 {
		f.colors[row.Color] = struct{}{}
	}

	if len(row.Country) > 0 {
		f.countries[row.Country] = struct{}{}
	}
}

// Rebuild scans the catalog and replaces the index wholesale. It runs in
// the background worker and must never block catalog writes; a failed run
// is retried on the next tick.
func (s *FacetService) Rebuild(ctx context.Context) error {
	rows, err := s.repo.GetFacetComponents(ctx)
	if err != nil {
		s.logger.Error("facet rebuild failed reading catalog", zap.Error(err))

		return err
	}

	groups := map[string]*facetSets{model.FacetAllKinds: newFacetSets()}

	for _, row := range rows {
		if _, found := groups[row.Kind]; !found {
			groups[row.Kind] = newFacetSets()
		}

		groups[row.Kind].add(row)
		groups[model.FacetAllKinds].add(row)
	}

	now := time.Now().UTC()
	entries := make([]model.FacetEntry, 0, len(groups))

	for group, sets := range groups {
		entries = append(entries, model.FacetEntry{
			Group:     group,
			Types:     sorted(sets.types),
			Colors:    sorted(sets.colors),
			Countries: sorted(sets.countries),
			RebuiltAt: now,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Group < entries[j].Group })

	if err = s.repo.ReplaceFacets(ctx, entries); err != nil {
		s.logger.Error("facet rebuild failed writing index", zap.Error(err))

		return err
	}

	s.logger.Info("facet index rebuilt", zap.Int("groups", len(entries)), zap.Int("alcohols", len(rows)))

	return nil
}

func (s *FacetService) Facets(ctx context.Context) ([]*model.FacetEntry, error) {
	return s.repo.GetFacets(ctx)
}

func (s *FacetService) FacetsForKind(ctx context.Context, kind model.Kind) (*model.FacetEntry, error) {
	return s.repo.GetFacetsForGroup(ctx, string(kind))
}

func sorted(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}

	sort.Strings(values)

	return values
}
