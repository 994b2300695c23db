package openfoodfactsweb

import (
	"encoding/json"
	"strings"

	"github.com/gocolly/colly/v2"
	"go.openly.dev/pointy"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Product struct {
	Name  *string
	Brand *string
	Kind  *string
}

type productJSON struct {
	Name  string `json:"name"`
	Brand struct {
		Name string `json:"name"`
	} `json:"brand"`
	Category string `json:"category"`
}

type productScraped struct {
	Name     string `selector:"h1.title-1"`
	Brand    string `selector:"span#field_brands_value"`
	Category string `selector:"span#field_categories_value"`
}

// kindForCategory maps the page's category text onto a catalog kind.
// Unrecognized categories leave the kind to the suggesting user.
func kindForCategory(category string) *string {
	category = strings.ToLower(category)

	for keyword, kind := range map[string]string{
		"beer":    "piwo",
		"piwo":    "piwo",
		"whisky":  "whisky",
		"whiskey": "whisky",
		"vodka":   "wódka",
		"wódka":   "wódka",
		"wine":    "wino",
		"wino":    "wino",
		"rum":     "rum",
		"liqueur": "likier",
		"likier":  "likier",
	} {
		if strings.Contains(category, keyword) {
			return pointy.String(kind)
		}
	}

	return nil
}

// FindProduct scrapes the public product page for a barcode. A missing
// page is not an error; it returns nil so callers can fall back to an
// empty prefill.
func (i *Integration) FindProduct(barcode string) (*Product, error) {
	collector := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:15.0) Gecko/20100101 Firefox/15.0.1"),
	)

	var (
		errs    error
		product *Product
	)

	collector.OnHTML("head script[type='application/ld+json']", func(element *colly.HTMLElement) {
		var data productJSON
		_ = json.Unmarshal([]byte(element.Text), &data)

		if len(data.Name) == 0 {
			return
		}

		i.logger.Info("scraped product from JSON data", zap.String("barcode", barcode), zap.String("name", data.Name))

		result := Product{Name: pointy.String(data.Name), Kind: kindForCategory(data.Category)}
		if len(data.Brand.Name) > 0 {
			result.Brand = pointy.String(data.Brand.Name)
		}

		product = &result
	})

	collector.OnHTML("body", func(element *colly.HTMLElement) {
		if product != nil {
			return
		}

		scraped := productScraped{}

		err := element.Unmarshal(&scraped)
		if multierr.AppendInto(&errs, err) {
			i.logger.Error("failed to unmarshal scraped product", zap.Error(err))

			return
		}

		if len(scraped.Name) == 0 {
			return
		}

		result := Product{Name: pointy.String(strings.TrimSpace(scraped.Name)), Kind: kindForCategory(scraped.Category)}
		if len(scraped.Brand) > 0 {
			result.Brand = pointy.String(strings.TrimSpace(scraped.Brand))
		}

		product = &result
	})

	notFound := false

	collector.OnError(func(response *colly.Response, err error) {
		if response.StatusCode == 404 {
			notFound = true

			return
		}

		i.logger.Error("error while scraping product page", zap.String("url", response.Request.URL.String()), zap.Error(err))
		multierr.AppendInto(&errs, err)
	})

	i.logger.Info("scraping product page", zap.String("barcode", barcode))
	multierr.AppendInto(&errs, collector.Visit(i.baseURL+"/product/"+barcode))

	if notFound {
		return nil, nil
	}

	return product, errs
}
