package configs

import (
	"errors"
	"os"
	"strings"

	"github.com/kkyr/fig"
	"go.uber.org/zap"
)

type DB struct {
	Host               string `validate:"required"`
	Port               int    `default:"5432"`
	User               string `default:"postgres"`
	Password           string `validate:"required"`
	Database           string `default:"postgres"`
	MaxIdleConnections int    `default:"10"`
	MaxOpenConnections int    `default:"10"`
}

type Moderation struct {
	ReportThreshold   int  `default:"2"`
	RevertRatingOnBan bool
}

type Rating struct {
	Minimum int `default:"1"`
	Maximum int `default:"10"`
}

type Worker struct {
	FacetRebuildSchedule string `default:"@hourly"`
	TokenPurgeSchedule   string `default:"@hourly"`
	ReconcileSchedule    string `default:"@daily"`
}

type Auth struct {
	SecretKey       string `validate:"required"`
	TokenTTLMinutes int    `default:"60"`
}

type Integrations struct {
	Suggestions []string `default:"[openfoodfacts_web]"`
}

type Config struct {
	DB           DB
	Moderation   Moderation
	Rating       Rating
	Worker       Worker
	Auth         Auth
	Integrations Integrations
}

const envPrefix = "ALKOHOLOVE" // env prefix for env vars

var ErrConfiguration = errors.New("configuration error")

func GetConfig(configFileName string, logger *zap.Logger) (*Config, error) {
	config := Config{}
	homeDir, _ := os.UserHomeDir()

	logger.Info("Loading config", zap.String("file", configFileName))

	err := fig.Load(&config, fig.File(configFileName), fig.Dirs(".", homeDir), fig.UseEnv(envPrefix))
	if err != nil {
		if strings.Contains(err.Error(), "file not found") {
			logger.Warn("Could not find config file", zap.String("file", configFileName))

			err = fig.Load(&config, fig.IgnoreFile(), fig.UseEnv(envPrefix))
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	return &config, nil
}
