package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS Quotes (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id CHAR(36) NOT NULL,
		devis_number VARCHAR(16) NOT NULL,
		client_name VARCHAR(200) NOT NULL,
		client_email VARCHAR(254) NOT NULL,
		client_phone VARCHAR(40) NOT NULL DEFAULT '',
		client_company VARCHAR(200) NOT NULL DEFAULT '',
		site_type VARCHAR(32) NOT NULL,
		design_type VARCHAR(32) NOT NULL,
		features JSON NOT NULL,
		maintenance VARCHAR(16) NOT NULL,
		maintenance_fee INT NOT NULL DEFAULT 0,
		project_description TEXT,
		amount INT NOT NULL,
		total VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL,
		signed_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_quotes_id (id),
		UNIQUE KEY uq_quotes_devis_number (devis_number),
		KEY idx_quotes_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS Signatures (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id CHAR(36) NOT NULL,
		devis_number VARCHAR(16) NOT NULL,
		image_key VARCHAR(255) NOT NULL,
		mime_type VARCHAR(32) NOT NULL,
		size_bytes BIGINT NOT NULL,
		signer_name VARCHAR(200) NOT NULL,
		signer_email VARCHAR(254) NOT NULL,
		signer_phone VARCHAR(40) NOT NULL DEFAULT '',
		signer_company VARCHAR(200) NOT NULL DEFAULT '',
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		user_agent VARCHAR(512) NOT NULL DEFAULT '',
		signed_at DATETIME(6) NOT NULL,
		recorded_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_signatures_id (id),
		KEY idx_signatures_devis_number (devis_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the Quotes and Signatures tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
