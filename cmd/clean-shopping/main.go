// Admin tool: purge legacy fields that old frontend builds wrote into
// shopping list items. Safe to rerun; reports whether anything changed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tallerapp/taller-backend/internal/config"
	"github.com/tallerapp/taller-backend/internal/domain/shopping"
	"github.com/tallerapp/taller-backend/internal/infra/db"
	"github.com/tallerapp/taller-backend/internal/infra/logger"

	"github.com/subosito/gotenv"
)

var legacyItemFields = []string{"nombreManual", "nombreCliente"}

func main() {
	cfgPath := flag.String("config", "config/example.yaml", "config file")
	flag.Parse()

	_ = gotenv.Load()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db connect:", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := shopping.NewService(shopping.NewRepo(pool), log)
	changed, err := svc.StripLegacyFields(ctx, legacyItemFields...)
	if err != nil {
		log.Error("shopping list cleanup failed", "err", err)
		os.Exit(1)
	}
	if changed {
		log.Info("shopping list cleanup finished", "fields", legacyItemFields)
	} else {
		log.Info("shopping list already clean")
	}
}
