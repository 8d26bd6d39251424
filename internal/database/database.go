package database

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}

	// Conditional migration: add final_price_minor to projects if missing
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = 'projects' AND column_name = 'final_price_minor'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check final_price_minor column: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE projects ADD COLUMN final_price_minor BIGINT`); err != nil {
			return fmt.Errorf("add final_price_minor column: %w", err)
		}
	}

	// Conditional migration: add deliverable_path to projects if missing
	err = db.QueryRow(`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = 'projects' AND column_name = 'deliverable_path'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check deliverable_path column: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE projects ADD COLUMN deliverable_path TEXT`); err != nil {
			return fmt.Errorf("add deliverable_path column: %w", err)
		}
	}

	// Conditional migration: add verified flag to reviews if missing
	err = db.QueryRow(`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_name = 'reviews' AND column_name = 'verified'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check verified column: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE reviews ADD COLUMN verified BOOLEAN NOT NULL DEFAULT FALSE`); err != nil {
			return fmt.Errorf("add verified column: %w", err)
		}
	}

	return nil
}
