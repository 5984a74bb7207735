package main

import (
	"fmt"
	"log"
	"os"

	"fieldtrack-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Apply schema
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Query and display summary
	var result struct {
		Users        int `db:"users"`
		Shifts       int `db:"shifts"`
		ActiveShifts int `db:"active_shifts"`
		Breaks       int `db:"breaks"`
		Activities   int `db:"activities"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM shifts) AS shifts,
			(SELECT COUNT(*) FROM shifts WHERE end_time IS NULL) AS active_shifts,
			(SELECT COUNT(*) FROM breaks) AS breaks,
			(SELECT COUNT(*) FROM activity_log) AS activities
	`

	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	// Display results
	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:           %d\n", result.Users)
	fmt.Printf("Shifts:          %d\n", result.Shifts)
	fmt.Printf("Active shifts:   %d\n", result.ActiveShifts)
	fmt.Printf("Breaks:          %d\n", result.Breaks)
	fmt.Printf("Activity rows:   %d\n", result.Activities)
	fmt.Println("============================================================")
}
