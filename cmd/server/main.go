package main

import (
	"log"
	"net/http"
	"os"

	"whos-who/internal/config"
	"whos-who/internal/db"
	"whos-who/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(db.PoolSettings{
		MaxOpenConns:        cfg.DBMaxOpenConns,
		MaxIdleConns:        cfg.DBMaxIdleConns,
		ConnMaxLifetimeSecs: cfg.DBConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSecs: cfg.DBConnMaxIdleTimeSeconds,
	})
	if err != nil {
		log.Printf("running without database: %v", err)
		conn = nil
	} else if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, cfg)
	log.Printf("whos-who server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
