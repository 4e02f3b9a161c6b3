package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"filedock/internal/config"
	"filedock/pkg/password"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email));

CREATE TABLE IF NOT EXISTS folders (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name       TEXT NOT NULL,
	parent_id  UUID REFERENCES folders(id),
	created_by UUID NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ
);

-- Sibling names are unique per parent; root-level folders share one
-- sentinel parent for the purpose of the constraint.
CREATE UNIQUE INDEX IF NOT EXISTS folders_parent_name_key
	ON folders (COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), name);

CREATE TABLE IF NOT EXISTS files (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	original_name TEXT NOT NULL,
	slug          TEXT,
	storage_key   TEXT NOT NULL,
	size          BIGINT NOT NULL DEFAULT 0,
	content_type  TEXT,
	is_public     BOOLEAN NOT NULL DEFAULT FALSE,
	description   TEXT,
	file_type     TEXT,
	tags          TEXT,
	folder_id     UUID REFERENCES folders(id),
	uploaded_by   UUID NOT NULL REFERENCES users(id),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ,
	CONSTRAINT files_slug_key UNIQUE (slug),
	CONSTRAINT files_storage_key_key UNIQUE (storage_key)
);

CREATE INDEX IF NOT EXISTS files_uploaded_by_idx ON files (uploaded_by);
CREATE INDEX IF NOT EXISTS files_folder_id_idx ON files (folder_id);
CREATE INDEX IF NOT EXISTS files_created_at_idx ON files (created_at DESC);

CREATE TABLE IF NOT EXISTS audit_events (
	id            UUID PRIMARY KEY,
	event_type    TEXT NOT NULL,
	actor_type    TEXT NOT NULL,
	actor_id      UUID,
	resource_type TEXT NOT NULL,
	resource_id   UUID,
	action        TEXT NOT NULL,
	status        TEXT NOT NULL,
	ip_address    TEXT,
	user_agent    TEXT,
	request_id    TEXT,
	metadata      JSONB,
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS audit_events_created_at_idx ON audit_events (created_at DESC);
CREATE INDEX IF NOT EXISTS audit_events_actor_id_idx ON audit_events (actor_id);
`

const (
	envSeedAdminEmail    = "SEED_ADMIN_EMAIL"
	envSeedAdminPassword = "SEED_ADMIN_PASSWORD"
	envSeedUserEmail     = "SEED_USER_EMAIL"
	envSeedUserPassword  = "SEED_USER_PASSWORD"

	defaultAdminEmail = "admin@filedock.local"
	defaultUserEmail  = "user@filedock.local"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	fmt.Println("Executing schema...")
	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("Failed to execute schema: %v", err)
	}
	fmt.Println("Schema applied")

	seedUser(ctx, pool, getenv(envSeedAdminEmail, defaultAdminEmail), os.Getenv(envSeedAdminPassword), true)
	seedUser(ctx, pool, getenv(envSeedUserEmail, defaultUserEmail), os.Getenv(envSeedUserPassword), false)

	fmt.Println("Done")
}

func seedUser(ctx context.Context, pool *pgxpool.Pool, email, plaintext string, isAdmin bool) {
	if plaintext == "" {
		fmt.Printf("Skipping seed for %s: no password set\n", email)
		return
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	query := `
		INSERT INTO users (email, password_hash, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(email)) DO NOTHING
	`

	tag, err := pool.Exec(ctx, query, email, hash, isAdmin)
	if err != nil {
		log.Fatalf("Failed to seed user %s: %v", email, err)
	}

	if tag.RowsAffected() == 0 {
		fmt.Printf("User %s already exists\n", email)
		return
	}

	fmt.Printf("Seeded user %s (admin=%t)\n", email, isAdmin)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
