package cmd

import (
	"context"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/repository"
	"alkoholove.dev/Alkoholove/pkg/service"
)

type ReconcileCmd struct {
	ConfigFile string `default:".Alkoholove.toml" help:"Path to config file" short:"c"`
}

func (r *ReconcileCmd) Run(_ *Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(r.ConfigFile, logger)
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

	social := service.NewSocialService(repo, logger)

	repaired, err := social.Reconcile(context.Background())
	if err != nil {
		return err
	}

	logger.Info("social counters reconciled", zap.Int64("repaired", repaired))

	return nil
}
