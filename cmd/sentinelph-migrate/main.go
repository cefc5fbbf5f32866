package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/config"
	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/database"
)

func main() {
	cfg := config.Load()

	if len(os.Args) > 1 && os.Args[1] == "-print" {
		stmts, err := database.Statements()
		if err != nil {
			log.Fatalf("Failed to load schema: %v", err)
		}
		for _, stmt := range stmts {
			fmt.Printf("%s;\n\n", stmt)
		}
		return
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n", cfg.Database.Database)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.ApplySchema(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fmt.Println("Schema applied successfully")
}
