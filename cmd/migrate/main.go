package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/medimind/medimind-server/internal/db"
)

// Standalone migration runner. The api-server migrates on startup; this
// binary exists for operators who need to run or repair migrations without
// serving traffic.
//
//	migrate           apply all pending migrations
//	migrate up        same as above
//	migrate force N   mark version N as applied after a dirty failure
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	_ = godotenv.Load()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := db.RunMigrations(dsn); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("migrations applied")
	case "force":
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid version %q", os.Args[2])
		}
		if err := db.ForceMigrationVersion(dsn, version); err != nil {
			log.Fatalf("migrate force: %v", err)
		}
		log.Printf("forced migration version to %d", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up or force)\n", cmd)
		os.Exit(2)
	}
}
