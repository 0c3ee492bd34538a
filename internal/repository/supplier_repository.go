package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"retail-backoffice/internal/models"
)

type SupplierRepository struct {
	db *sqlx.DB
}

func NewSupplierRepository(db *sqlx.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(supplier *models.Supplier) error {
	query := `INSERT INTO suppliers (org_id, name, tax_id, phone, email, address, contact, is_active)
	          VALUES (:org_id, :name, :tax_id, :phone, :email, :address, :contact, :is_active)`
	result, err := r.db.NamedExec(query, supplier)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	supplier.ID = id
	return nil
}

func (r *SupplierRepository) GetByID(orgID int, id int64) (*models.Supplier, error) {
	var supplier models.Supplier
	query := "SELECT * FROM suppliers WHERE id = ? AND org_id = ? LIMIT 1"
	if err := r.db.Get(&supplier, query, id, orgID); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) GetAll(orgID, limit, offset int, search string) ([]models.Supplier, int, error) {
	var suppliers []models.Supplier
	var total int

	whereClause := "WHERE org_id = ?"
	args := []interface{}{orgID}
	if search != "" {
		whereClause += " AND (name LIKE ? OR tax_id LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like)
	}

	countQuery := "SELECT COUNT(*) FROM suppliers " + whereClause
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM suppliers " + whereClause + " ORDER BY name LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	if err := r.db.Select(&suppliers, query, args...); err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

func (r *SupplierRepository) Update(supplier *models.Supplier) error {
	query := `UPDATE suppliers SET name = :name, tax_id = :tax_id, phone = :phone,
	          email = :email, address = :address, contact = :contact, is_active = :is_active
	          WHERE id = :id AND org_id = :org_id`
	result, err := r.db.NamedExec(query, supplier)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("supplier %d not found", supplier.ID)
	}
	return nil
}

func (r *SupplierRepository) Delete(orgID int, id int64) error {
	result, err := r.db.Exec("DELETE FROM suppliers WHERE id = ? AND org_id = ?", id, orgID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("supplier %d not found", id)
	}
	return nil
}
