package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx"
	_ "github.com/lib/pq"              // driver "postgres"
)

// NewDBConnection abre o pool no driver escolhido (pgx ou postgres) e testa o Ping.
func NewDBConnection(driver, connString string) (*sql.DB, error) {
	if driver == "" {
		driver = "pgx"
	}
	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, fmt.Errorf("abrir conexão (%s): %w", driver, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping no banco: %w", err)
	}

	return db, nil
}

// withTx roda fn numa transação; qualquer erro faz rollback.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("iniciar transação: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// execer é o que *sql.DB e *sql.Tx têm em comum.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
