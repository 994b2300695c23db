package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/repository"
	"alkoholove.dev/Alkoholove/pkg/service"
	"alkoholove.dev/Alkoholove/pkg/worker"
)

type WorkerCmd struct {
	ConfigFile string `default:".Alkoholove.toml" help:"Path to config file" short:"c"`
}

func (w *WorkerCmd) Run(_ *Context) error {
	logConfig := zap.NewProductionConfig()

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(w.ConfigFile, logger)
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
	social := service.NewSocialService(repo, logger)

	scheduler := worker.NewScheduler(conf, repo, facets, social, logger)

	err = scheduler.Start()
	if err != nil {
		logger.Error("failed to start scheduler", zap.Error(err))

		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	scheduler.Stop()

	return nil
}
