package main

import (
	"log"
	"os"
	"path/filepath"

	"comicvault/internal/api"
	"comicvault/internal/comicvine"
	"comicvault/internal/logger"
	"comicvault/internal/selfcheck"
	"comicvault/internal/ws"
	"comicvault/pkg/config"
	"comicvault/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	vine := comicvine.NewClient(cfg.ComicvineBase, cfg.ComicvineAPIKey)
	if cfg.ComicvineAPIKey == "" {
		logger.Warn("COMICVINE_API_KEY not set; provider requests will fail")
	}

	hub := ws.NewHub()
	go hub.Run()

	if cfg.SelfPingURL != "" {
		selfcheck.New(cfg.SelfPingURL).Start()
	}

	server := api.NewServer(db, cfg, vine, hub)
	r := server.Router()

	logger.Info("HTTP API listening on :%s", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
