// cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/config"
	"github.com/ushanirp/messaging-platfor-twilio-poc/internal/db"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	sqlFiles := []string{
		"db/schema.sql",
		"db/seed.sql",
	}

	for _, file := range sqlFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("failed to read %s: %v", file, err)
		}
		if _, err := database.Exec(string(content)); err != nil {
			log.Fatalf("failed to execute %s: %v", file, err)
		}
		fmt.Printf("Applied: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
