package integrations

import (
	"go.uber.org/zap"

	openfoodfactsweb "alkoholove.dev/Alkoholove/pkg/integrations/openfoodfacts-web"
)

// Product is the prefill an integration can offer for a scanned barcode.
// Absent fields stay nil.
type Product struct {
	Name         *string
	Kind         *string
	Manufacturer *string
}

type Integration interface {
	Name() string
	FindProduct(barcode string) (*Product, error)
}

func GetIntegration(name string, logger *zap.Logger) Integration {
	if name == openfoodfactsweb.IntegrationName {
		return newOpenFoodFactsAdapter(logger)
	}

	return nil
}

type openFoodFactsAdapter struct {
	integration *openfoodfactsweb.Integration
}

func newOpenFoodFactsAdapter(logger *zap.Logger) *openFoodFactsAdapter {
	return &openFoodFactsAdapter{integration: openfoodfactsweb.New(logger)}
}

func (a *openFoodFactsAdapter) Name() string {
	return openfoodfactsweb.IntegrationName
}

func (a *openFoodFactsAdapter) FindProduct(barcode string) (*Product, error) {
	product, err := a.integration.FindProduct(barcode)
	if err != nil || product == nil {
		return nil, err
	}

	return &Product{Name: product.Name, Kind: product.Kind, Manufacturer: product.Brand}, nil
}
