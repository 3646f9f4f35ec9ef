// Package main provides the entry point for the Pitwall Picks scoring service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/pitwall-picks/internal/config"
	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/logger"
	"github.com/yourusername/pitwall-picks/internal/repository"
	"github.com/yourusername/pitwall-picks/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	services   *serviceSet
)

type serviceSet struct {
	roster      *service.RosterResolver
	points      *service.PointsService
	scorer      *service.PredictionScorer
	results     *service.ResultService
	predictions *service.PredictionService
	standings   *service.StandingsService
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "pitwall",
	Short: "Race prediction scoring engine",
	Long:  `Calculates championship points, scores participant predictions and builds season standings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv(config.EnvPrefix+"_AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv(config.EnvPrefix + "_AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and %s_AWS_SECRET_NAME must be set when secrets are enabled", config.EnvPrefix)
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	db, err = database.NewDB(connectCtx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	services = newServiceSet(repos, cfg, appLog)

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Debug("Dependencies initialized")
	return nil
}

func newServiceSet(repos *repository.Repositories, cfg *config.Config, base *logrus.Logger) *serviceSet {
	scoringLog := logger.NewScoringLogger(base)
	audit := logger.NewAuditLogger(base)

	standings := service.NewStandingsService(repos, cfg.StandingsCacheTTL())
	roster := service.NewRosterResolver(repos.Team, repos.Driver, repos.Roster, audit)
	points := service.NewPointsService(repos, roster, standings, scoringLog)
	scorer := service.NewPredictionScorer(repos, cfg.Scoring.Workers, standings, scoringLog)

	return &serviceSet{
		roster:      roster,
		points:      points,
		scorer:      scorer,
		results:     service.NewResultService(repos, points, scorer, cfg.Scoring.ScorePredictionsOnSave, audit),
		predictions: service.NewPredictionService(repos, audit),
		standings:   standings,
	}
}
