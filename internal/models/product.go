package models

import (
	"database/sql"
	"time"
)

type Product struct {
	ID           int64           `db:"id" json:"id"`
	OrgID        int             `db:"org_id" json:"org_id"`
	Name         string          `db:"name" json:"name"`
	Barcode      string          `db:"barcode" json:"barcode"`
	InternalCode string          `db:"internal_code" json:"internal_code"`
	UnitPrice    sql.NullFloat64 `db:"unit_price" json:"unit_price"`
	Stock        sql.NullFloat64 `db:"stock" json:"stock"`
	Category     string          `db:"category" json:"category"`
	SupplierName string          `db:"supplier_name" json:"supplier_name"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

type ProductRequest struct {
	Name         string   `json:"name"`
	Barcode      string   `json:"barcode"`
	InternalCode string   `json:"internal_code"`
	UnitPrice    *float64 `json:"unit_price"`
	Stock        *float64 `json:"stock"`
	Category     string   `json:"category"`
	SupplierName string   `json:"supplier_name"`
	IsActive     bool     `json:"is_active"`
}
