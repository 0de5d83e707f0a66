package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ericfitz/formfields/internal/config"
	"github.com/ericfitz/formfields/internal/dbconn"
	"github.com/ericfitz/formfields/internal/slogging"
)

func main() {
	configFile, _, err := config.ParseFlags()
	if err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := slogging.Initialize(slogging.Config{
		Level:            cfg.GetLogLevel(),
		IsDev:            true,
		AlsoLogToConsole: true,
	}); err != nil {
		log.Printf("Warning: Failed to initialize logger: %v", err)
	}
	logger := slogging.Get()
	defer func() {
		if err := logger.Close(); err != nil {
			log.Printf("Error closing logger: %v", err)
		}
	}()

	gdb, err := dbconn.NewGormDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.Database.Type, err)
	}
	defer func() {
		if err := gdb.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	logger.Info("Running migrations on %s", gdb.DatabaseType())
	if err := gdb.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := dbconn.Seed(ctx, gdb.DB()); err != nil {
		log.Fatalf("Failed to seed field definitions: %v", err)
	}

	logger.GetSlogger().Info("Seed complete",
		"database", string(gdb.DatabaseType()),
		"fields", len(dbconn.SeedFields()),
		"groups", 1,
	)
	fmt.Println("\nField definitions seeded.")
}
