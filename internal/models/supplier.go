package models

import "time"

type Supplier struct {
	ID        int64     `db:"id" json:"id"`
	OrgID     int       `db:"org_id" json:"org_id"`
	Name      string    `db:"name" json:"name"`
	TaxID     string    `db:"tax_id" json:"tax_id"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	Contact   string    `db:"contact" json:"contact"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type SupplierRequest struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Contact  string `json:"contact"`
	IsActive bool   `json:"is_active"`
}
