package cmd

import (
	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/model"
	"alkoholove.dev/Alkoholove/pkg/repository"
)

type MigrateCmd struct {
	ConfigFile string `default:".Alkoholove.toml" help:"Path to config file" short:"c"`
}

func (m *MigrateCmd) Run(_ *Context) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.DisableStacktrace = true

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(m.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Fatal("error connecting to database")
	}
	defer repo.Close()

	err = repo.DB.AutoMigrate(
		&model.User{},
		&model.Alcohol{}, &model.Barcode{},
		&model.FollowEdge{},
		&model.WishlistEntry{}, &model.FavouriteEntry{},
		&model.Tag{}, &model.TagEntry{}, &model.SearchHistoryEntry{},
		&model.Review{}, &model.ReviewReport{}, &model.ReviewHelpfulVote{}, &model.BannedReview{},
		&model.FacetEntry{},
		&model.AlcoholSuggestion{},
		&model.BlacklistedToken{})
	if err != nil {
		return err
	}

	return nil
}
