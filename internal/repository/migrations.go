package repository

import (
	"context"
	"fmt"
)

// Схема создаётся идемпотентно при старте. Уникальные ограничения на
// short_code и target_url — это и есть защита от гонок при создании ссылок,
// приложение на них опирается (см. linkRepository.Create).
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS links (
		id UUID PRIMARY KEY,
		short_code VARCHAR(6) NOT NULL,
		target_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT links_short_code_key UNIQUE (short_code),
		CONSTRAINT links_target_url_key UNIQUE (target_url)
	)`,
	`CREATE TABLE IF NOT EXISTS clicks (
		id UUID PRIMARY KEY,
		link_id UUID NOT NULL REFERENCES links(id) ON DELETE CASCADE,
		clicked_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id)`,
}

// Migrate применяет DDL к базе
func (db *PostgresDB) Migrate(ctx context.Context) error {
	for _, query := range migrations {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
