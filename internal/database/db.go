package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jsonnorm/internal/config"
)

// EnsureDatabaseExists connects to the maintenance database and creates the
// target database if it is missing, so a fresh deployment boots without
// manual setup.
func EnsureDatabaseExists(cfg config.Database) error {
	userInfo := url.UserPassword(cfg.Username, cfg.Password)
	dsn := fmt.Sprintf(
		"postgres://%s@%s:%s/postgres?sslmode=disable",
		userInfo.String(),
		cfg.Host,
		cfg.Port,
	)

	log.Printf("Checking if database '%s' exists...", cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	err = pool.QueryRow(ctx, query, cfg.Database).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		log.Printf("Database '%s' does not exist. Creating it...", cfg.Database)

		// CREATE DATABASE cannot run in a transaction; quote the name to
		// handle special characters.
		quotedDBName := pgx.Identifier{cfg.Database}.Sanitize()
		createQuery := fmt.Sprintf("CREATE DATABASE %s", quotedDBName)
		_, err = pool.Exec(ctx, createQuery)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		log.Printf("Database '%s' created successfully", cfg.Database)
	} else {
		log.Printf("Database '%s' already exists", cfg.Database)
	}

	return nil
}

// Connect opens the connection pool against the target database and verifies
// it with a ping.
func Connect(cfg config.Database) (*pgxpool.Pool, error) {
	// Build connection string using postgres:// URL format; encode username
	// and password so special characters survive.
	userInfo := url.UserPassword(cfg.Username, cfg.Password)
	encodedDatabase := url.PathEscape(cfg.Database)

	dsn := fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(),
		cfg.Host,
		cfg.Port,
		encodedDatabase,
	)

	log.Printf("Connecting to database: postgres://%s:***@%s:%s/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection pool established successfully")
	return pool, nil
}
