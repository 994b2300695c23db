package openfoodfactsweb

import "go.uber.org/zap"

const IntegrationName = "openfoodfacts_web"

const defaultBaseURL = "https://world.openfoodfacts.org"

type Integration struct {
	logger  *zap.Logger
	baseURL string
}

type Option func(*Integration)

// WithBaseURL points the scraper at a different host; tests use it to
// target a local server.
func WithBaseURL(baseURL string) Option {
	return func(i *Integration) {
		i.baseURL = baseURL
	}
}

func New(logger *zap.Logger, options ...Option) *Integration {
	integration := &Integration{logger: logger, baseURL: defaultBaseURL}

	for _, option := range options {
		option(integration)
	}

	return integration
}
