package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"retail-backoffice/internal/models"
)

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(product *models.Product) error {
	query := `INSERT INTO products (org_id, name, barcode, internal_code, unit_price, stock, category, supplier_name, is_active)
	          VALUES (:org_id, :name, :barcode, :internal_code, :unit_price, :stock, :category, :supplier_name, :is_active)`
	result, err := r.db.NamedExec(query, product)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	product.ID = id
	return nil
}

func (r *ProductRepository) GetByID(orgID int, id int64) (*models.Product, error) {
	var product models.Product
	query := "SELECT * FROM products WHERE id = ? AND org_id = ? LIMIT 1"
	if err := r.db.Get(&product, query, id, orgID); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) GetAll(orgID, limit, offset int, search string) ([]models.Product, int, error) {
	var products []models.Product
	var total int

	whereClause := "WHERE org_id = ?"
	args := []interface{}{orgID}
	if search != "" {
		whereClause += " AND (name LIKE ? OR barcode LIKE ? OR internal_code LIKE ?)"
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}

	countQuery := "SELECT COUNT(*) FROM products " + whereClause
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM products " + whereClause + " ORDER BY name LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	if err := r.db.Select(&products, query, args...); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) Update(product *models.Product) error {
	query := `UPDATE products SET name = :name, barcode = :barcode, internal_code = :internal_code,
	          unit_price = :unit_price, stock = :stock, category = :category,
	          supplier_name = :supplier_name, is_active = :is_active
	          WHERE id = :id AND org_id = :org_id`
	result, err := r.db.NamedExec(query, product)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("product %d not found", product.ID)
	}
	return nil
}

func (r *ProductRepository) Delete(orgID int, id int64) error {
	result, err := r.db.Exec("DELETE FROM products WHERE id = ? AND org_id = ?", id, orgID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("product %d not found", id)
	}
	return nil
}
