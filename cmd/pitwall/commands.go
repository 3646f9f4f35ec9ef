package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/pitwall-picks/internal/api"
	"github.com/yourusername/pitwall-picks/internal/database"
	"github.com/yourusername/pitwall-picks/internal/metrics"
	"github.com/yourusername/pitwall-picks/internal/models"
	"github.com/yourusername/pitwall-picks/internal/service"
)

var (
	raceID        string
	category      string
	driverID      string
	teamID        string
	effectiveFrom string
	note          string
)

func init() {
	calculatePointsCmd.Flags().StringVar(&raceID, "race", "", "Race ID to calculate")
	calculatePointsCmd.MarkFlagRequired("race")

	scorePredictionsCmd.Flags().StringVar(&raceID, "race", "", "Race ID to score")
	scorePredictionsCmd.MarkFlagRequired("race")

	standingsPredictionsCmd.Flags().StringVar(&category, "category", service.CategoryTotal,
		"Category: "+strings.Join(service.Categories, ", "))
	standingsCmd.AddCommand(standingsDriversCmd, standingsConstructorsCmd, standingsPredictionsCmd)

	rosterAssignCmd.Flags().StringVar(&driverID, "driver", "", "Driver ID")
	rosterAssignCmd.Flags().StringVar(&teamID, "team", "", "Team ID")
	rosterAssignCmd.Flags().StringVar(&effectiveFrom, "from", "", "Effective date (YYYY-MM-DD)")
	rosterAssignCmd.Flags().StringVar(&note, "note", "", "Reason for the change")
	rosterAssignCmd.MarkFlagRequired("driver")
	rosterAssignCmd.MarkFlagRequired("team")
	rosterAssignCmd.MarkFlagRequired("from")
	rosterCmd.AddCommand(rosterAssignCmd)

	rootCmd.AddCommand(
		serveCmd,
		migrateCmd,
		calculatePointsCmd,
		scorePredictionsCmd,
		standingsCmd,
		rosterCmd,
		versionCmd,
	)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metricsPath := ""
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
			metricsPath = cfg.Metrics.Path
		}

		server := api.NewServer(api.Config{
			ServiceName:  cfg.App.Name,
			Version:      Version,
			Commit:       GitCommit,
			Addr:         cfg.ListenAddr(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
			TriggerRate:  cfg.Server.TriggerRatePerSecond,
			TriggerBurst: cfg.Server.TriggerBurst,
			MetricsPath:  metricsPath,
			Logger:       appLog,
			DB:           db,
		}, api.Services{
			Points:      services.points,
			Scorer:      services.scorer,
			Results:     services.results,
			Predictions: services.predictions,
			Standings:   services.standings,
		})

		return server.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		appLog.Info("Database schema is up to date")
		return nil
	},
}

var calculatePointsCmd = &cobra.Command{
	Use:   "calculate-points",
	Short: "Recalculate driver and constructor points for a race",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := services.points.CalculateAllPoints(cmd.Context(), raceID)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var scorePredictionsCmd = &cobra.Command{
	Use:   "score-predictions",
	Short: "Score every prediction for a race and refresh profile totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := services.scorer.ScoreRace(cmd.Context(), raceID)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Print season standings",
}

var standingsDriversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Drivers' championship",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStandings(cmd.Context(), services.standings.DriverStandings)
	},
}

var standingsConstructorsCmd = &cobra.Command{
	Use:   "constructors",
	Short: "Constructors' championship",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStandings(cmd.Context(), services.standings.ConstructorStandings)
	},
}

var standingsPredictionsCmd = &cobra.Command{
	Use:   "predictions",
	Short: "Prediction game table for one category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStandings(cmd.Context(), func(ctx context.Context) (*service.StandingsTable, error) {
			return services.standings.PredictionStandings(ctx, category)
		})
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage driver team assignments",
}

var rosterAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Move a driver to another team from a given date",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := time.Parse("2006-01-02", effectiveFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		return services.roster.Assign(cmd.Context(), &models.RosterAssignment{
			DriverID:      driverID,
			TeamID:        teamID,
			EffectiveFrom: from,
			Note:          note,
		})
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pitwall %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStandings(ctx context.Context, load func(context.Context) (*service.StandingsTable, error)) error {
	table, err := load(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{"POS", "NAME"}
	for _, race := range table.Races {
		header = append(header, race.ID)
	}
	header = append(header, "TOTAL", "AVG")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, row := range table.Rows {
		line := []string{fmt.Sprint(row.Position), row.Name}
		for _, race := range table.Races {
			if pts, ok := row.Points[race.ID]; ok {
				line = append(line, fmt.Sprint(pts))
			} else {
				line = append(line, "-")
			}
		}
		line = append(line, fmt.Sprint(row.Total), row.Average.StringFixed(2))
		fmt.Fprintln(w, strings.Join(line, "\t"))
	}
	return w.Flush()
}
