package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/badno/monito/internal/catalog/postgres"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDBMigrate,
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check database connectivity",
	RunE:  runDBPing,
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbPingCmd)
}

func connectedStore(ctx context.Context) (*postgres.Store, error) {
	cfg := loadConfig()
	pgCfg := postgres.ConfigFromEnv(cfg.Database.Postgres.UsernameEnv, cfg.Database.Postgres.PasswordEnv)
	pgCfg.Host = cfg.Database.Postgres.Host
	pgCfg.Port = cfg.Database.Postgres.Port
	pgCfg.Database = cfg.Database.Postgres.Database
	pgCfg.SSLMode = cfg.Database.Postgres.SSLMode
	pgCfg.MaxConns = cfg.Database.Postgres.MaxConns
	pgCfg.MinConns = cfg.Database.Postgres.MinConns

	store := postgres.New(pgCfg)
	if err := store.Connect(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := connectedStore(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer store.Close()

	if err := store.RunMigrations(); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	version, dirty, err := store.MigrationVersion()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	color.Green("  ✓ Migrations applied, schema version %d (dirty=%v)", version, dirty)
	return nil
}

func runDBPing(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := connectedStore(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	stats := store.Stats()
	fmt.Printf("  Connected. Pool: %d total, %d idle\n", stats.TotalConns(), stats.IdleConns())
	color.Green("  ✓ Database reachable")
	return nil
}
