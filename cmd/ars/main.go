// cmd/ars/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/retail-ars/internal/config"
	"github.com/andresuchdata/retail-ars/internal/drive"
	"github.com/andresuchdata/retail-ars/internal/pipeline"
	"github.com/andresuchdata/retail-ars/internal/repository/postgres"
	"github.com/andresuchdata/retail-ars/internal/storage"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ars",
		Usage: "multi-channel retail inventory reconciliation and replenishment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "trace|debug|info|warn|error",
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			extractCommand(),
			analyzeCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "extract and consolidate channel files without running analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Value: "inventory",
				Usage: "inventory or sales",
			},
			&cli.BoolFlag{
				Name:  "sync-drive",
				Usage: "download channel files from the configured drive folder first",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if c.Bool("sync-drive") {
				if err := syncDrive(c.Context, cfg); err != nil {
					return err
				}
			}
			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}
			kind := pipeline.Kind(c.String("kind"))
			if kind != pipeline.KindInventory && kind != pipeline.KindSales {
				return fmt.Errorf("unknown kind %q", c.String("kind"))
			}
			byChannel, err := p.RunExtraction(kind)
			if err != nil {
				return err
			}
			for ch, records := range byChannel {
				log := logger.WithChannel(ch)
				log.Info().Int("records", len(records)).Msg("channel consolidated")
			}
			return nil
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "run the full ARS analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Value: "file",
				Usage: "file (input directory) or db (channel_sales/channel_inventory tables)",
			},
			&cli.StringFlag{
				Name:    "db-url",
				EnvVars: []string{"DATABASE_URL"},
				Usage:   "postgres URL; when set, metrics are persisted to retail_ars",
			},
			&cli.StringSliceFlag{
				Name:  "channel",
				Usage: "restrict db-sourced analysis to these channels",
			},
			&cli.BoolFlag{
				Name:  "archive",
				Usage: "upload the workbook to the configured object storage",
			},
			&cli.BoolFlag{
				Name:  "sync-drive",
				Usage: "download channel files from the configured drive folder first",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if c.Bool("sync-drive") {
				if err := syncDrive(c.Context, cfg); err != nil {
					return err
				}
			}
			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}

			var db *postgres.DB
			if url := c.String("db-url"); url != "" {
				db, err = postgres.ConnectDSN(url)
				if err != nil {
					return err
				}
				defer db.Close()
				p.Repo = postgres.NewRetailARSRepository(db)
			}
			if c.Bool("archive") && cfg.Archive.Enabled {
				arch, err := storage.NewMinioStorage(c.Context, cfg.Archive)
				if err != nil {
					return err
				}
				p.Archive = arch
			}

			switch c.String("source") {
			case "file":
				return p.Run(c.Context)
			case "db":
				if p.Repo == nil {
					return fmt.Errorf("db source requires --db-url or DATABASE_URL")
				}
				return analyzeFromDB(c.Context, p, c.StringSlice("channel"), cfg.App.SalesWindowDays)
			default:
				return fmt.Errorf("unknown source %q", c.String("source"))
			}
		},
	}
}

func analyzeFromDB(ctx context.Context, p *pipeline.Pipeline, channels []string, windowDays int) error {
	if len(channels) == 0 {
		channels = p.Sales.Channels()
	}
	analyzed := 0
	for _, ch := range channels {
		sales, err := p.Repo.FetchChannelSales(ctx, ch, windowDays)
		if err != nil {
			return err
		}
		stock, err := p.Repo.FetchChannelStock(ctx, ch)
		if err != nil {
			return err
		}
		if len(sales) == 0 && len(stock) == 0 {
			log := logger.WithChannel(ch)
			log.Warn().Msg("no db rows for channel")
			continue
		}
		if err := p.AnalyzeChannel(ctx, ch, sales, stock); err != nil {
			return err
		}
		analyzed++
	}
	if analyzed == 0 {
		return pipeline.ErrNoValidData
	}
	return nil
}

func syncDrive(ctx context.Context, cfg *config.Config) error {
	if !cfg.Drive.Enabled {
		return fmt.Errorf("drive sync requested but DRIVE_ENABLED is false")
	}
	svc, err := drive.NewService(ctx, cfg.Drive.CredentialsFile)
	if err != nil {
		return err
	}
	n, err := svc.SyncFolder(cfg.Drive.FolderPath, cfg.App.InputDir)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("files", n).Msg("drive sync complete")
	return nil
}

var seedSchema = []string{
	`CREATE TABLE IF NOT EXISTS retail_ars (
		store_id TEXT NOT NULL,
		store_name TEXT,
		store_type TEXT,
		channel TEXT NOT NULL,
		sku_id TEXT NOT NULL,
		sku_name TEXT,
		brand_line TEXT,
		mrp DOUBLE PRECISION,
		mdq DOUBLE PRECISION,
		total_sales DOUBLE PRECISION,
		total_sales_value DOUBLE PRECISION,
		weeks_of_data INTEGER,
		total_weeks INTEGER,
		avg_weekly_sales DOUBLE PRECISION,
		avg_weekly_revenue DOUBLE PRECISION,
		sales_std DOUBLE PRECISION,
		sale_frequency_in_weeks DOUBLE PRECISION,
		sales_velocity DOUBLE PRECISION,
		avg_sales_90day DOUBLE PRECISION,
		avg_sales_30day DOUBLE PRECISION,
		current_stock DOUBLE PRECISION,
		weeks_coverage DOUBLE PRECISION,
		revenue_rank INTEGER,
		sku_segment TEXT,
		performance_bucket TEXT,
		safety_stock DOUBLE PRECISION,
		refill_level DOUBLE PRECISION,
		weeks_until_stockout DOUBLE PRECISION,
		potential_revenue_loss DOUBLE PRECISION,
		PRIMARY KEY (store_id, sku_id, channel)
	)`,
	`CREATE TABLE IF NOT EXISTS channel_sales (
		channel TEXT NOT NULL,
		store_id TEXT NOT NULL,
		sku_id TEXT NOT NULL,
		sale_date TEXT NOT NULL,
		sales_units DOUBLE PRECISION NOT NULL DEFAULT 0,
		sales_value DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_sales_channel ON channel_sales (channel)`,
	`CREATE TABLE IF NOT EXISTS channel_inventory (
		channel TEXT NOT NULL,
		store_id TEXT NOT NULL,
		sku_id TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_inventory_channel ON channel_inventory (channel)`,
}

func seedCommand() *cli.Command {
	var db *sql.DB
	return &cli.Command{
		Name:  "seed",
		Usage: "create the retail_ars schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			db, err = sql.Open("pgx", c.String("db-url"))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			return db.PingContext(c.Context)
		},
		After: func(c *cli.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			for _, stmt := range seedSchema {
				if _, err := db.ExecContext(c.Context, stmt); err != nil {
					return fmt.Errorf("apply schema: %w", err)
				}
			}
			logger.Log.Info().Msg("schema ready")
			return nil
		},
	}
}
