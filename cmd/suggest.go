package cmd

import (
	"context"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/integrations"
	"alkoholove.dev/Alkoholove/pkg/repository"
	"alkoholove.dev/Alkoholove/pkg/service"
)

type SuggestCmd struct {
	ConfigFile  string  `default:".Alkoholove.toml" help:"Path to config file" short:"c"`
	UserID      uint    `help:"Id of the suggesting user"       required:""`
	Barcode     string  `help:"Barcode of the missing item"     required:""`
	Description *string `help:"Free-form note for the curators"`
}

func (s *SuggestCmd) Run(_ *Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close()

	suggestions := service.NewSuggestionService(repo, suggestionIntegrations(conf, logger), logger)

	suggestion, err := suggestions.Suggest(context.Background(), s.UserID, s.Barcode, s.Description)
	if err != nil {
		return err
	}

	logger.Info("suggestion recorded",
		zap.Uint("id", suggestion.ID),
		zap.String("barcode", suggestion.Barcode),
		zap.Int("suggested_by", len(suggestion.UserIDs)))

	return nil
}

func suggestionIntegrations(conf *configs.Config, logger *zap.Logger) []integrations.Integration {
	var enabled []integrations.Integration

	for _, name := range conf.Integrations.Suggestions {
		integration := integrations.GetIntegration(name, logger)
		if integration == nil {
			logger.Warn("unknown suggestion integration", zap.String("name", name))

			continue
		}

		enabled = append(enabled, integration)
	}

	return enabled
}
