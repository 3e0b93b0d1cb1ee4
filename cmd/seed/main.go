// Command seed populates the database with students, imported clubs and demo posts.
package main

import (
	"context"
	"flag"
	"log"

	"clubhub/internal/config"
	"clubhub/internal/database"
	"clubhub/internal/seed"
)

func main() {
	clubsCSV := flag.String("clubs", "data/clubs.csv", "CSV file of clubs to import")
	students := flag.Int("students", 10, "Number of dummy students to create")
	adminEmail := flag.String("admin", "", "Admin account email (default admin@"+seed.StudentDomain+")")
	reset := flag.Bool("reset", false, "Drop and recreate every table before seeding")
	fast := flag.Bool("fast", false, "Hash passwords at minimum bcrypt cost")
	rngSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		ClubsCSV:   *clubsCSV,
		Students:   *students,
		AdminEmail: *adminEmail,
		Reset:      *reset,
		SkipBcrypt: *fast,
		Seed:       *rngSeed,
	})
	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d students, %d clubs, %d demo posts", sum.Students, sum.Clubs, sum.DemoPosts)
	log.Printf("All seeded accounts use the password: %s", seed.DefaultPassword)
}
