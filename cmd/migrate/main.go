package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ramchandran06/E-commerce-backend/pkg/config"
	"github.com/Ramchandran06/E-commerce-backend/pkg/db"
	"github.com/Ramchandran06/E-commerce-backend/pkg/logger"
	"github.com/Ramchandran06/E-commerce-backend/pkg/migrate"
)

const usage = "migration command: up|down|status|version|create|validate|automigrate"

func main() {
	cmd := flag.String("cmd", "up", usage)
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory (default is the embedded set)")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version YYYYMMDDHHMMSS (for version)")
	flag.Parse()

	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	// create and validate only touch files.
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"cmd":       *cmd,
		"dir":       *dir,
		"db_driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	// sqlite has no goose history; the models are the schema there.
	if *cmd == "automigrate" || cfg.DB.IsSQLite() {
		if err := migrate.AutoMigrateModels(ctx, dbClient.DB()); err != nil {
			fail("%v", err)
		}
		logg.Info(ctx, "schema migrated from models")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(logg, "sql database", err)
	runner, err := migrate.NewRunner(sqlDB, *dir)
	requireResource(logg, "goose runner", err)

	switch *cmd {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			fail("%v", err)
		}
		logg.Info(logg.WithFields(ctx, map[string]any{"applied": applied}), "migrations applied")
	case "down":
		if err := runner.Down(ctx); err != nil {
			fail("%v", err)
		}
		logg.Info(ctx, "rolled back one migration")
	case "status":
		if err := printStatus(ctx, runner); err != nil {
			fail("%v", err)
		}
	case "version":
		if *version == "" {
			current, err := runner.Version(ctx)
			if err != nil {
				fail("%v", err)
			}
			fmt.Println("current version:", current)
			return
		}
		if err := runner.To(ctx, *version); err != nil {
			fail("%v", err)
		}
		logg.Info(ctx, "schema moved to version "+*version)
	default:
		fail("unknown -cmd value: %s (%s)", *cmd, usage)
	}
}

func printStatus(ctx context.Context, runner *migrate.Runner) error {
	statuses, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	return w.Flush()
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
