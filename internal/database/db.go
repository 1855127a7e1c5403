package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver - registered for database/sql
	"github.com/jmoiron/sqlx"

	"github.com/familynest/admin-backend/internal/config"
)

// Connect opens the PostgreSQL connection pool described by cfg and verifies
// it with a ping. The returned pool is constructed once at startup, shared by
// reference across handlers, and closed on shutdown.
func Connect(cfg config.Config) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	db, err := sqlx.Connect("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return db, nil
}
