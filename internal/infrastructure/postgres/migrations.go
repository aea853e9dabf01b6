package postgres

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	content string
}

// loadMigrations lee los archivos "N_nombre.sql" ordenados por versión.
func loadMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("leer migraciones: %w", err)
	}
	var list []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		version, err := strconv.Atoi(prefix)
		if !ok || err != nil {
			log.Warn().Str("file", entry.Name()).Msg("migración con nombre inválido, se omite")
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", entry.Name(), err)
		}
		list = append(list, migration{version: version, name: entry.Name(), content: string(content)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].version < list[j].version })
	return list, nil
}

// Migrate aplica las migraciones pendientes, cada una en su transacción,
// registrándolas en schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := MigrateCount(ctx, pool)
	return err
}

// MigrateCount igual que Migrate pero informa cuántas migraciones aplicó.
func MigrateCount(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	list, err := loadMigrations()
	if err != nil {
		return 0, err
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`); err != nil {
		return 0, fmt.Errorf("crear schema_migrations: %w", err)
	}
	applied := 0
	for _, m := range list {
		var done bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&done); err != nil {
			return applied, fmt.Errorf("estado de migración %s: %w", m.name, err)
		}
		if done {
			continue
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return applied, fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, m.content); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("migración %s: %w", m.name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("registrar migración %s: %w", m.name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, fmt.Errorf("commit transaction: %w", err)
		}
		log.Info().Int("version", m.version).Str("name", m.name).Msg("migración aplicada")
		applied++
	}
	return applied, nil
}
