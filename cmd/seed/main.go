// Package main seeds a database with a small deterministic dataset for local
// development: two organisations, each with contracts created in correlated
// batches plus standalone edits. Running it again replaces the seeded rows.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/publink/publink-logs/internal/cache"
	"github.com/publink/publink-logs/internal/config"
	"github.com/publink/publink-logs/internal/db"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database.GetDSN(), 2, 1)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database, "up"); err != nil {
		return err
	}

	ds := buildDataset(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	if err := insert(ctx, sqlx.NewDb(database, "postgres"), ds); err != nil {
		return err
	}

	log.Printf("Seeded %d document headers and %d audit log rows", len(ds.Documents), len(ds.AuditLogs))

	// a running server would otherwise serve the stale directory until the TTL expires
	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Warning: organisation cache not invalidated: %v", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		orgCache := cache.NewOrganizationCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.OrganizationsTTL)
		if err := orgCache.Invalidate(ctx); err != nil {
			log.Printf("Warning: organisation cache not invalidated: %v", err)
		}
	}

	log.Printf("Organisations: %s, %s", acmeOrgID, globexOrgID)
	return nil
}

func insert(ctx context.Context, database *sqlx.DB, ds dataset) error {
	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	orgs := pq.Array([]string{acmeOrgID.String(), globexOrgID.String()})
	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_log WHERE organization_id = ANY($1::uuid[])`, orgs); err != nil {
		return fmt.Errorf("clear audit_log: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_header WHERE organization_id = ANY($1::uuid[])`, orgs); err != nil {
		return fmt.Errorf("clear document_header: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO document_header (id, number, organization_id, contractor_name, created_date)
		VALUES (:id, :number, :organization_id, :contractor_name, :created_date)`, ds.Documents); err != nil {
		return fmt.Errorf("insert document_header: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO audit_log (organization_id, user_id, user_email, type, entity_type, created_date,
		                       entity_id, parent_id, correlation_id, affected_columns)
		VALUES (:organization_id, :user_id, :user_email, :type, :entity_type, :created_date,
		        :entity_id, :parent_id, :correlation_id, :affected_columns)`, ds.AuditLogs); err != nil {
		return fmt.Errorf("insert audit_log: %w", err)
	}

	return tx.Commit()
}
