// Package main is a diagnostic tool for database connectivity. It connects with the
// configured DSN and prints the audit log and document header row counts, the
// organisation directory and the schema version. It exits non-zero on any failure
// so it can gate deployments in CI/CD pipelines.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/publink/publink-logs/internal/config"
	"github.com/publink/publink-logs/internal/db"
	"github.com/publink/publink-logs/internal/db/repositories"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("check-db: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database.GetDSN(), 2, 1)
	if err != nil {
		return err
	}
	defer database.Close()

	version, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)

	sqlxDB := sqlx.NewDb(database, "postgres")

	total, err := repositories.NewAuditLogRepository(sqlxDB).CountAuditLogs(ctx, repositories.AuditLogFilter{})
	if err != nil {
		return fmt.Errorf("count audit_log: %w", err)
	}
	fmt.Printf("audit_log rows: %d\n", total)

	var headers int
	if err := sqlxDB.GetContext(ctx, &headers, `SELECT COUNT(*) FROM document_header`); err != nil {
		return fmt.Errorf("count document_header: %w", err)
	}
	fmt.Printf("document_header rows: %d\n", headers)

	orgs, err := repositories.NewOrganizationRepository(sqlxDB).ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("list organisations: %w", err)
	}
	fmt.Printf("\n=== ORGANISATIONS (%d) ===\n", len(orgs))
	for _, org := range orgs {
		name := org.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s  %s\n", org.ID, name)
	}

	return nil
}
