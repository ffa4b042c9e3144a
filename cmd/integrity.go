package cmd

import (
	"context"
	"fmt"

	"facility-matcher/core/config"
	"facility-matcher/core/database"
	"facility-matcher/core/logger"
	"facility-matcher/core/storage"
	"facility-matcher/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	fixFlag    bool
	tablesFlag []string
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check storage layout and registry database",
	Long:  `Checks that the storage bucket has the uploads/ and exports/ folders and that the registry database is reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// databaseCmd represents the integrity database command
var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the registry database and source tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, databaseCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	databaseCmd.Flags().StringSliceVar(&tablesFlag, "tables", nil, "Source tables to inspect")
}

func runIntegrityChecks(ctx context.Context, runStructure, runDatabase bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logg.Sync()

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	var db *gorm.DB
	if runDatabase {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
		}
	}

	svc := integrity.NewService(store, cfg.Storage.Bucket, logg, db)

	if runStructure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		switch {
		case len(missing) == 0:
			logg.Info("Structure is intact.")
		case fixFlag:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if err := svc.FixStructure(ctx, missing); err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			logg.Info("Structure fixed successfully.")
		default:
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			logg.Info("Run 'integrity structure --fix' to create missing folders.")
		}
	}

	if runDatabase && db != nil {
		logg.Info("Checking registry database...", zap.String("driver", cfg.Database.Driver))
		report, err := svc.CheckDatabase(ctx, tablesFlag)
		if err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}
		if !report.Reachable {
			logg.Warn("Database unreachable", zap.Strings("errors", report.Errors))
		}
		for name, tbl := range report.Tables {
			if tbl.Status == "ok" {
				logg.Info("Source table found", zap.String("table", name), zap.Strings("columns", tbl.Columns))
			} else {
				logg.Warn("Source table unusable", zap.String("table", name), zap.String("status", tbl.Status))
			}
		}
	}

	return nil
}
