package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	dir := flag.String("dir", "file://./migrations", "directory with migrations")
	dsn := flag.String("dsn", os.Getenv("DOTENV_DATABASE_URL"), "database connection string")
	action := flag.String("action", "up", "migration action: up, down, version")

	flag.Parse()

	if *dsn == "" {
		log.Fatal("dsn is required (flag -dsn or DOTENV_DATABASE_URL)")
	}

	m, err := migrate.New(*dir, *dsn)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}

	switch *action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatalf("failed to read version: %v", verr)
		}
		fmt.Printf("version: %d dirty: %v\n", version, dirty)
		return
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	fmt.Println("migration done successfully")
}
