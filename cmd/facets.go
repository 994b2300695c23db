package cmd

import (
	"context"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/repository"
	"alkoholove.dev/Alkoholove/pkg/service"
)

type RebuildFacetsCmd struct {
	ConfigFile string `default:".Alkoholove.toml" help:"Path to config file" short:"c"`
}

func (f *RebuildFacetsCmd) Run(_ *Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(f.ConfigFile, logger)
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

	facets := service.NewFacetService(repo, logger)

	return facets.Rebuild(context.Background())
}
