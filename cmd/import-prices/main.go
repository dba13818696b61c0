// Admin tool: load material prices from an xlsx into the catalog.
// Usage: import-prices <file.xlsx>
// Run a template recalculation afterwards (POST /admin/recalculate).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tallerapp/taller-backend/internal/config"
	"github.com/tallerapp/taller-backend/internal/domain/materials"
	"github.com/tallerapp/taller-backend/internal/infra/db"
	"github.com/tallerapp/taller-backend/internal/infra/logger"

	"github.com/subosito/gotenv"
)

func main() {
	cfgPath := flag.String("config", "config/example.yaml", "config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: import-prices [-config path] <file.xlsx>")
		os.Exit(2)
	}

	_ = gotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read file:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db connect:", err)
		os.Exit(1)
	}
	defer pool.Close()

	res, err := materials.ImportPrices(ctx, materials.NewRepo(pool), data)
	if err != nil {
		log.Error("price import failed", "err", err)
		os.Exit(1)
	}
	log.Info("price import finished",
		"rows", res.Rows, "updated", res.Updated, "created", res.Created, "skipped", res.Skipped)
}
