package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// Blocks until the platform database accepts connections, so compose and CI
// steps can order the server and the integration suite after Postgres is up.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "waitforpostgres:", err)
		os.Exit(1)
	}
}

func run() error {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return fmt.Errorf("set TEST_POSTGRES_DSN or DATABASE_URL")
	}

	timeout := 60 * time.Second
	if raw := os.Getenv("WAIT_FOR_POSTGRES_TIMEOUT_SEC"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return fmt.Errorf("invalid WAIT_FOR_POSTGRES_TIMEOUT_SEC: %q", raw)
		}
		timeout = time.Duration(secs) * time.Second
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()

	deadline := time.Now().Add(timeout)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		pingErr := db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			fmt.Println("platform database is ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not reachable within %s: %w", timeout, pingErr)
		}
		time.Sleep(2 * time.Second)
	}
}
