package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gostage/internal/catalog"
	"github.com/dbsmedya/gostage/internal/config"
	"github.com/dbsmedya/gostage/internal/database"
	"github.com/dbsmedya/gostage/internal/extractor"
	"github.com/dbsmedya/gostage/internal/graph"
	"github.com/dbsmedya/gostage/internal/lock"
	"github.com/dbsmedya/gostage/internal/logger"
	"github.com/dbsmedya/gostage/internal/verifier"
)

var (
	syncJob         string
	syncForce       bool
	syncFullRefresh bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync data from source to destination database",
	Long: `Sync copies the selected tables from source to destination in
foreign-key dependency order using the stage-then-merge pipeline.

The sync process follows these steps:
  1. Build the dependency graph and resolve the load order
  2. Stage each table's new rows chunk-wise into a staging relation
  3. Merge staging into the destination with one REPLACE statement
  4. Advance the incremental cursor and verify row counts

Example:
  gostage sync --config gostage.yaml --job nightly_sync`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncJob, "job", "j", "",
		"Job name from configuration file (required)")
	syncCmd.MarkFlagRequired("job")

	syncCmd.Flags().BoolVar(&syncForce, "force", false,
		"Force execution even if job lock cannot be acquired (use with caution)")
	syncCmd.Flags().BoolVar(&syncFullRefresh, "full-refresh", false,
		"Ignore stored cursors and restage every table in full")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	job, err := cfg.GetJob(syncJob)
	if err != nil {
		return err
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.ChunkSize, overrides.SleepSeconds, overrides.SkipVerify)
	processing := cfg.ApplyJobOverrides(job, overrides.ChunkSize, overrides.SleepSeconds)

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("Starting sync operation",
		"job", syncJob,
		"config", configFile,
	)

	// cancellation is observed at chunk boundaries
	ctx := database.SetupSignalHandler()

	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to databases: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	// The lock lives on the destination: that is where two concurrent runs
	// would race on staging relations and cursor rows.
	if !syncForce {
		jobLock := lock.NewJobLock(dbManager.Destination, syncJob)
		if err := jobLock.AcquireOrFail(ctx); err != nil {
			if errors.Is(err, lock.ErrLockTimeout) {
				return fmt.Errorf("job %q is already running on another instance (use --force to override)", syncJob)
			}
			return fmt.Errorf("failed to acquire job lock: %w", err)
		}
		defer jobLock.ReleaseLock(context.Background())
		log.Infow("Acquired advisory lock for job", "job", syncJob)
	} else {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)", "job", syncJob)
	}

	cat := catalog.NewMySQL(dbManager.Source)
	entries, err := computePlan(ctx, cat, job)
	if err != nil {
		return err
	}
	plan := make([]graph.TableRef, len(entries))
	for i, e := range entries {
		plan[i] = e.table
	}

	cursors, err := extractor.NewSQLCursorStore(dbManager.Destination)
	if err != nil {
		return err
	}
	if err := cursors.InitializeTable(ctx); err != nil {
		return err
	}

	// pin one destination session so the FK-check toggle covers every merge
	destConn, err := dbManager.Destination.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve destination connection: %w", err)
	}
	defer destConn.Close()

	ext, err := extractor.New(
		cat,
		extractor.NewSQLReader(dbManager.Source),
		extractor.NewSQLWriter(destConn),
		cursors,
		processing,
		log,
	)
	if err != nil {
		return err
	}

	sel := extractor.SelectionFromJob(job)
	report, err := ext.RunSync(ctx, syncJob, plan, sel, syncFullRefresh)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Sync operation cancelled by user")
			return nil
		}
		return fmt.Errorf("sync operation failed: %w", err)
	}

	if !cfg.Verification.SkipVerification && cfg.Verification.Method != string(verifier.MethodNone) {
		v, err := verifier.NewVerifier(dbManager.Source, dbManager.Destination,
			verifier.VerificationMethod(cfg.Verification.Method), log)
		if err != nil {
			return err
		}
		stats, err := v.VerifyTables(ctx, plan)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		if stats.TablesFailed > 0 {
			return fmt.Errorf("verification found %d mismatched table(s)", stats.TablesFailed)
		}
	}

	cmd.Printf("\n=== Sync Complete ===\n")
	cmd.Printf("Job: %s\n", report.Job)
	cmd.Printf("Duration: %s\n", report.Duration)
	cmd.Printf("Tables Synced: %d\n", report.TablesDone())
	cmd.Printf("Rows Staged: %d\n", report.RowsStaged())
	cmd.Printf("Rows Merged: %d\n", report.RowsMerged())
	cmd.Printf("Success: %v\n", report.Success)

	return nil
}
