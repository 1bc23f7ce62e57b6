package store

import (
	"context"
	"fmt"
)

// Migrate creates the tables the importer writes to. It is safe to run
// on every start.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cities (
			id          VARCHAR(64) PRIMARY KEY,
			name        VARCHAR(255) NOT NULL,
			ibge_code   BIGINT,
			mayor       VARCHAR(255),
			vice_mayor  VARCHAR(255),
			party       VARCHAR(64),
			population  BIGINT,
			voters      BIGINT,
			valid_votes BIGINT,
			mayor_votes BIGINT,
			status      VARCHAR(64),
			region      VARCHAR(255),
			updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS council_members (
			id         VARCHAR(64) PRIMARY KEY,
			city_id    VARCHAR(64) NOT NULL REFERENCES cities(id),
			name       VARCHAR(255) NOT NULL,
			party      VARCHAR(64),
			votes      BIGINT,
			phone      VARCHAR(64),
			email      VARCHAR(255),
			elected    VARCHAR(64),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS press_outlets (
			id         VARCHAR(64) PRIMARY KEY,
			city_id    VARCHAR(64) REFERENCES cities(id),
			name       VARCHAR(255) NOT NULL,
			kind       VARCHAR(64),
			phone      VARCHAR(64),
			email      VARCHAR(255),
			website    VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS business_contacts (
			id         VARCHAR(64) PRIMARY KEY,
			city_id    VARCHAR(64) REFERENCES cities(id),
			name       VARCHAR(255) NOT NULL,
			company    VARCHAR(255),
			role       VARCHAR(255),
			phone      VARCHAR(64),
			email      VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	if s.dialect != "mysql" {
		// MySQL has no CREATE INDEX IF NOT EXISTS
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS idx_council_members_city ON council_members (city_id)`,
			`CREATE INDEX IF NOT EXISTS idx_press_outlets_city ON press_outlets (city_id)`,
			`CREATE INDEX IF NOT EXISTS idx_business_contacts_city ON business_contacts (city_id)`,
		)
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
