// Command initdb creates the inventory tables and optionally seeds the
// product catalog from a CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"stockroom/m/internal/config"
	"stockroom/m/internal/database"
	"stockroom/m/internal/migrations"
	"stockroom/m/internal/seed"
)

func main() {
	products := flag.String("products", "", "optional product catalog CSV to import")
	flag.Parse()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	fmt.Println("Initialized the database.")

	if *products != "" {
		n, err := seed.LoadProducts(context.Background(), db, *products)
		if err != nil {
			log.Fatalf("failed to import products: %v", err)
		}
		fmt.Printf("Imported %d products.\n", n)
	}
}
