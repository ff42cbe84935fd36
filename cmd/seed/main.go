package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/internal/search"
	"github.com/Skotchmaster/emart/internal/service"
	"github.com/Skotchmaster/emart/pkg/config"
	pkgdb "github.com/Skotchmaster/emart/pkg/db"
	"github.com/Skotchmaster/emart/pkg/logging"
)

//go:embed products.json
var sampleProducts []byte

func main() {
	keep := flag.Bool("keep", false, "append to the catalog instead of replacing it")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("notice: no .env loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.LogLevel).With("cmd", "seed")

	var products []models.Product
	if err := json.Unmarshal(sampleProducts, &products); err != nil {
		log.Fatalf("decode sample products: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	db, err := pkgdb.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("mongo open: %v", err)
	}
	defer pkgdb.Close(context.Background(), db)

	svc := &service.CatalogService{Products: &repo.MongoRepo{DB: db}}
	if cfg.ESURL != "" {
		sc, err := search.NewClient(search.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			logger.Warn("search_unavailable", "error", err)
		} else if err := sc.EnsureIndex(ctx); err != nil {
			logger.Warn("search_ensure_index_error", "error", err)
		} else {
			svc.Index = sc
		}
	}

	n, err := svc.Seed(ctx, products, !*keep)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	logger.Info("seed_complete", "products", n, "replaced", !*keep)
}
