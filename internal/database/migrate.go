package database

import (
	"github.com/jmoiron/sqlx"
)

// Migrate creates the application tables if they do not exist yet.
// Statements are idempotent so the server can run it on every start.
func Migrate(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			org_id INT NOT NULL DEFAULT 1,
			name VARCHAR(255) NOT NULL,
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'user',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS import_jobs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			job_code VARCHAR(50) NOT NULL UNIQUE,
			org_id INT NOT NULL,
			template_key VARCHAR(50) NOT NULL,
			source_file VARCHAR(500) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'staged',
			total_rows INT NOT NULL DEFAULT 0,
			valid_rows INT NOT NULL DEFAULT 0,
			invalid_rows INT NOT NULL DEFAULT 0,
			applied_rows INT NOT NULL DEFAULT 0,
			skipped_rows INT NOT NULL DEFAULT 0,
			error_message TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_import_jobs_org (org_id),
			INDEX idx_import_jobs_status_created (status, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS import_rows (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			job_code VARCHAR(50) NOT NULL,
			row_num INT NOT NULL,
			raw_payload JSON NOT NULL,
			normalized_payload JSON,
			is_valid BOOLEAN NOT NULL DEFAULT FALSE,
			validation_error VARCHAR(500) NOT NULL DEFAULT '',
			is_applied BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_import_rows_job_row (job_code, row_num),
			INDEX idx_import_rows_job (job_code)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			org_id INT NOT NULL,
			name VARCHAR(500) NOT NULL,
			barcode VARCHAR(100) NOT NULL DEFAULT '',
			internal_code VARCHAR(100) NOT NULL DEFAULT '',
			unit_price DECIMAL(14,2),
			stock DECIMAL(14,3),
			category VARCHAR(255) NOT NULL DEFAULT '',
			supplier_name VARCHAR(255) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_products_org_barcode (org_id, barcode),
			INDEX idx_products_org_code (org_id, internal_code),
			INDEX idx_products_org_name (org_id, name(191))
		)`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			org_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			tax_id VARCHAR(50) NOT NULL DEFAULT '',
			phone VARCHAR(50) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT '',
			address VARCHAR(500) NOT NULL DEFAULT '',
			contact VARCHAR(255) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_suppliers_org_name (org_id, name),
			INDEX idx_suppliers_org (org_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
