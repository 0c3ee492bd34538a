package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"retail-backoffice/internal/importer"
	"retail-backoffice/internal/models"
	"retail-backoffice/internal/tabular"
)

const (
	ApplyModeUpsert     = "upsert"
	ApplyModeInsertOnly = "insert_only"
)

// ImportRepository is the MySQL implementation of service.ImportBackend,
// plus the read queries the job listing endpoints need.
type ImportRepository struct {
	db        *sqlx.DB
	batchSize int
}

func NewImportRepository(db *sqlx.DB, batchSize int) *ImportRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ImportRepository{db: db, batchSize: batchSize}
}

func (r *ImportRepository) CreateJob(orgID int, templateKey, sourceFile, status string) (string, error) {
	jobCode := "IMP-" + uuid.New().String()[:8]

	query := `INSERT INTO import_jobs (job_code, org_id, template_key, source_file, status)
	          VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.Exec(query, jobCode, orgID, templateKey, sourceFile, status); err != nil {
		return "", err
	}
	return jobCode, nil
}

// InsertRows persists rows in chunks to stay under the MySQL placeholder
// limit and keep transactions short.
func (r *ImportRepository) InsertRows(jobCode string, rows []models.ImportRow) error {
	if len(rows) == 0 {
		return r.updateJobTotal(jobCode, 0)
	}

	query := `INSERT INTO import_rows (job_code, row_num, raw_payload, normalized_payload, is_valid, validation_error, is_applied)
	          VALUES (:job_code, :row_num, :raw_payload, :normalized_payload, :is_valid, :validation_error, :is_applied)`

	for i := 0; i < len(rows); i += r.batchSize {
		end := i + r.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := r.db.NamedExec(query, rows[i:end]); err != nil {
			return fmt.Errorf("error inserting rows %d-%d: %w", i+1, end, err)
		}
	}

	return r.updateJobTotal(jobCode, len(rows))
}

// LoadStagedRows hands back the rows of a staged job and flips the job to
// consumed. The status flip is conditional on the current status so a job
// code can only ever be resumed once, no matter how many callers race.
func (r *ImportRepository) LoadStagedRows(orgID int, jobCode, templateKey string) ([]models.ImportRow, string, error) {
	var job models.ImportJob
	err := r.db.Get(&job, "SELECT * FROM import_jobs WHERE job_code = ? AND org_id = ? LIMIT 1", jobCode, orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", importer.NewError(importer.TagStagedJobNotFound,
				fmt.Sprintf("staged job %s not found", jobCode))
		}
		return nil, "", err
	}
	if job.TemplateKey != templateKey {
		return nil, "", importer.NewError(importer.TagStagedJobMismatch,
			fmt.Sprintf("job %s was staged for template %s", jobCode, job.TemplateKey))
	}

	result, err := r.db.Exec("UPDATE import_jobs SET status = ? WHERE job_code = ? AND status = ?",
		models.JobStatusConsumed, jobCode, models.JobStatusStaged)
	if err != nil {
		return nil, "", err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, "", importer.NewError(importer.TagStagedJobConsumed,
			fmt.Sprintf("job %s was already resumed", jobCode))
	}

	var rows []models.ImportRow
	err = r.db.Select(&rows, "SELECT * FROM import_rows WHERE job_code = ? ORDER BY row_num", jobCode)
	if err != nil {
		return nil, "", err
	}
	return rows, job.SourceFile, nil
}

// ValidateJob walks every row of the job in batches, checks the template's
// required fields against the normalized payload and records the per-row
// verdict. Rows whose mapping produced nothing are invalid by definition.
func (r *ImportRepository) ValidateJob(orgID int, jobCode string) (*models.ValidationSummary, error) {
	job, err := r.getOwnedJob(orgID, jobCode)
	if err != nil {
		return nil, err
	}
	template, err := importer.TemplateByKey(job.TemplateKey)
	if err != nil {
		return nil, err
	}
	required := template.RequiredFields()

	summary := &models.ValidationSummary{}
	validIDs := make([]int64, 0, r.batchSize)
	lastID := int64(0)

	for {
		var rows []models.ImportRow
		err := r.db.Select(&rows,
			"SELECT * FROM import_rows WHERE job_code = ? AND id > ? ORDER BY id LIMIT ?",
			jobCode, lastID, r.batchSize)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			lastID = row.ID
			summary.TotalRows++

			verdict := validateRow(&row, required)
			if verdict == "" {
				summary.ValidRows++
				validIDs = append(validIDs, row.ID)
				continue
			}
			summary.InvalidRows++
			if _, err := r.db.Exec(
				"UPDATE import_rows SET is_valid = FALSE, validation_error = ? WHERE id = ?",
				verdict, row.ID); err != nil {
				return nil, err
			}
		}

		if err := r.markRowsValid(validIDs); err != nil {
			return nil, err
		}
		validIDs = validIDs[:0]
	}

	_, err = r.db.Exec(
		`UPDATE import_jobs SET status = ?, total_rows = ?, valid_rows = ?, invalid_rows = ? WHERE job_code = ?`,
		models.JobStatusValidated, summary.TotalRows, summary.ValidRows, summary.InvalidRows, jobCode)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ApplyJob writes the valid rows of a validated job into the catalog. Each
// row is matched to an existing catalog entry by its identity (barcode,
// then internal code, then name for products; name for suppliers). In
// upsert mode a match is merged and updated, in insert_only mode it is
// skipped.
func (r *ImportRepository) ApplyJob(orgID int, jobCode, mode string) (*models.ApplySummary, error) {
	if mode == "" {
		mode = ApplyModeUpsert
	}
	if mode != ApplyModeUpsert && mode != ApplyModeInsertOnly {
		return nil, fmt.Errorf("unknown apply mode %q", mode)
	}

	job, err := r.getOwnedJob(orgID, jobCode)
	if err != nil {
		return nil, err
	}

	summary := &models.ApplySummary{}
	appliedIDs := make([]int64, 0, r.batchSize)
	lastID := int64(0)

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for {
		var rows []models.ImportRow
		err := r.db.Select(&rows,
			"SELECT * FROM import_rows WHERE job_code = ? AND is_valid = TRUE AND is_applied = FALSE AND id > ? ORDER BY id LIMIT ?",
			jobCode, lastID, r.batchSize)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			lastID = row.ID

			rec, err := decodePayload(row.NormalizedPayload.String)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row.RowNumber, err)
			}

			var applied bool
			switch job.TemplateKey {
			case importer.TemplateProducts:
				applied, err = r.applyProduct(tx, orgID, rec, mode)
			case importer.TemplateSuppliers:
				applied, err = r.applySupplier(tx, orgID, rec, mode)
			default:
				err = fmt.Errorf("unknown template %q", job.TemplateKey)
			}
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row.RowNumber, err)
			}

			if applied {
				summary.AppliedRows++
				appliedIDs = append(appliedIDs, row.ID)
			} else {
				summary.SkippedRows++
			}
		}
	}

	if err := r.markRowsApplied(tx, appliedIDs); err != nil {
		return nil, err
	}
	_, err = tx.Exec(
		"UPDATE import_jobs SET status = ?, applied_rows = ?, skipped_rows = ? WHERE job_code = ?",
		models.JobStatusApplied, summary.AppliedRows, summary.SkippedRows, jobCode)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

// Queries used by the job listing endpoints.

func (r *ImportRepository) GetJobs(orgID, limit, offset int) ([]models.ImportJob, int, error) {
	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_jobs WHERE org_id = ?", orgID); err != nil {
		return nil, 0, err
	}

	var jobs []models.ImportJob
	err := r.db.Select(&jobs,
		"SELECT * FROM import_jobs WHERE org_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *ImportRepository) GetJobByCode(orgID int, jobCode string) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.Get(&job, "SELECT * FROM import_jobs WHERE job_code = ? AND org_id = ? LIMIT 1", jobCode, orgID)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImportRepository) GetJobRows(orgID int, jobCode string, onlyInvalid bool, limit, offset int) ([]models.ImportRow, int, error) {
	if _, err := r.getOwnedJob(orgID, jobCode); err != nil {
		return nil, 0, err
	}

	where := "WHERE job_code = ?"
	if onlyInvalid {
		where += " AND is_valid = FALSE"
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_rows "+where, jobCode); err != nil {
		return nil, 0, err
	}

	var rows []models.ImportRow
	err := r.db.Select(&rows,
		"SELECT * FROM import_rows "+where+" ORDER BY row_num LIMIT ? OFFSET ?",
		jobCode, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// PurgeStaleJobs deletes staged and consumed jobs (and their rows) older
// than the given retention window. Returns the number of jobs removed.
func (r *ImportRepository) PurgeStaleJobs(olderThanHours int) (int64, error) {
	var codes []string
	err := r.db.Select(&codes,
		"SELECT job_code FROM import_jobs WHERE status IN (?, ?) AND created_at < NOW() - INTERVAL ? HOUR",
		models.JobStatusStaged, models.JobStatusConsumed, olderThanHours)
	if err != nil {
		return 0, err
	}
	if len(codes) == 0 {
		return 0, nil
	}

	for i := 0; i < len(codes); i += r.batchSize {
		end := i + r.batchSize
		if end > len(codes) {
			end = len(codes)
		}
		chunk := codes[i:end]

		query, args, err := sqlx.In("DELETE FROM import_rows WHERE job_code IN (?)", chunk)
		if err != nil {
			return 0, err
		}
		if _, err := r.db.Exec(query, args...); err != nil {
			return 0, err
		}

		query, args, err = sqlx.In("DELETE FROM import_jobs WHERE job_code IN (?)", chunk)
		if err != nil {
			return 0, err
		}
		if _, err := r.db.Exec(query, args...); err != nil {
			return 0, err
		}
	}
	return int64(len(codes)), nil
}

// Internals.

func (r *ImportRepository) getOwnedJob(orgID int, jobCode string) (*models.ImportJob, error) {
	var job models.ImportJob
	err := r.db.Get(&job, "SELECT * FROM import_jobs WHERE job_code = ? AND org_id = ? LIMIT 1", jobCode, orgID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job %s not found", jobCode)
		}
		return nil, err
	}
	return &job, nil
}

func (r *ImportRepository) updateJobTotal(jobCode string, total int) error {
	_, err := r.db.Exec("UPDATE import_jobs SET total_rows = ? WHERE job_code = ?", total, jobCode)
	return err
}

func (r *ImportRepository) markRowsValid(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("UPDATE import_rows SET is_valid = TRUE, validation_error = '' WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(query, args...)
	return err
}

func (r *ImportRepository) markRowsApplied(tx *sqlx.Tx, ids []int64) error {
	for i := 0; i < len(ids); i += r.batchSize {
		end := i + r.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		query, args, err := sqlx.In("UPDATE import_rows SET is_applied = TRUE WHERE id IN (?)", ids[i:end])
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

// validateRow returns an empty string when the row passes, or the reason it
// does not.
func validateRow(row *models.ImportRow, required []string) string {
	if !row.NormalizedPayload.Valid || row.NormalizedPayload.String == "" {
		return "no mapped fields"
	}
	rec, err := decodePayload(row.NormalizedPayload.String)
	if err != nil {
		return "payload not decodable"
	}

	missing := []string{}
	for _, field := range required {
		if strings.TrimSpace(rec.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return "missing required fields: " + strings.Join(missing, ", ")
	}
	return ""
}

func decodePayload(payload string) (*tabular.Record, error) {
	rec := tabular.NewRecord()
	if err := json.Unmarshal([]byte(payload), rec); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return rec, nil
}

func (r *ImportRepository) applyProduct(tx *sqlx.Tx, orgID int, rec *tabular.Record, mode string) (bool, error) {
	incoming := models.Product{
		OrgID:        orgID,
		Name:         rec.Get("name"),
		Barcode:      rec.Get("barcode"),
		InternalCode: rec.Get("internal_code"),
		Category:     rec.Get("category"),
		SupplierName: rec.Get("supplier_name"),
		UnitPrice:    parseNullFloat(rec.Get("unit_price")),
		Stock:        parseNullFloat(rec.Get("stock")),
	}

	existing, err := findProduct(tx, orgID, &incoming)
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := tx.NamedExec(
			`INSERT INTO products (org_id, name, barcode, internal_code, unit_price, stock, category, supplier_name)
			 VALUES (:org_id, :name, :barcode, :internal_code, :unit_price, :stock, :category, :supplier_name)`,
			incoming)
		return err == nil, err
	}
	if mode == ApplyModeInsertOnly {
		return false, nil
	}

	merged := mergeProduct(existing, &incoming)
	_, err = tx.NamedExec(
		`UPDATE products SET name = :name, barcode = :barcode, internal_code = :internal_code,
		 unit_price = :unit_price, stock = :stock, category = :category, supplier_name = :supplier_name
		 WHERE id = :id`,
		merged)
	return err == nil, err
}

func (r *ImportRepository) applySupplier(tx *sqlx.Tx, orgID int, rec *tabular.Record, mode string) (bool, error) {
	incoming := models.Supplier{
		OrgID:   orgID,
		Name:    rec.Get("name"),
		TaxID:   rec.Get("tax_id"),
		Phone:   rec.Get("phone"),
		Email:   rec.Get("email"),
		Address: rec.Get("address"),
		Contact: rec.Get("contact"),
	}

	var existing models.Supplier
	err := tx.Get(&existing, "SELECT * FROM suppliers WHERE org_id = ? AND name = ? LIMIT 1", orgID, incoming.Name)
	if err == sql.ErrNoRows {
		_, err := tx.NamedExec(
			`INSERT INTO suppliers (org_id, name, tax_id, phone, email, address, contact)
			 VALUES (:org_id, :name, :tax_id, :phone, :email, :address, :contact)`,
			incoming)
		return err == nil, err
	}
	if err != nil {
		return false, err
	}
	if mode == ApplyModeInsertOnly {
		return false, nil
	}

	merged := existing
	merged.TaxID = pickNonEmpty(incoming.TaxID, existing.TaxID)
	merged.Phone = pickNonEmpty(incoming.Phone, existing.Phone)
	merged.Email = pickNonEmpty(incoming.Email, existing.Email)
	merged.Address = pickNonEmpty(incoming.Address, existing.Address)
	merged.Contact = pickNonEmpty(incoming.Contact, existing.Contact)
	_, err = tx.NamedExec(
		`UPDATE suppliers SET tax_id = :tax_id, phone = :phone, email = :email,
		 address = :address, contact = :contact WHERE id = :id`,
		merged)
	return err == nil, err
}

// findProduct matches the strongest identity the incoming row carries:
// barcode, then internal code, then exact name.
func findProduct(tx *sqlx.Tx, orgID int, p *models.Product) (*models.Product, error) {
	var (
		existing models.Product
		err      error
	)
	switch {
	case p.Barcode != "":
		err = tx.Get(&existing, "SELECT * FROM products WHERE org_id = ? AND barcode = ? LIMIT 1", orgID, p.Barcode)
	case p.InternalCode != "":
		err = tx.Get(&existing, "SELECT * FROM products WHERE org_id = ? AND internal_code = ? LIMIT 1", orgID, p.InternalCode)
	default:
		err = tx.Get(&existing, "SELECT * FROM products WHERE org_id = ? AND name = ? LIMIT 1", orgID, p.Name)
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func mergeProduct(existing, incoming *models.Product) *models.Product {
	merged := *existing
	merged.Name = pickNonEmpty(incoming.Name, existing.Name)
	merged.Barcode = pickNonEmpty(incoming.Barcode, existing.Barcode)
	merged.InternalCode = pickNonEmpty(incoming.InternalCode, existing.InternalCode)
	merged.Category = pickNonEmpty(incoming.Category, existing.Category)
	merged.SupplierName = pickNonEmpty(incoming.SupplierName, existing.SupplierName)
	if incoming.UnitPrice.Valid {
		merged.UnitPrice = incoming.UnitPrice
	}
	if incoming.Stock.Valid {
		merged.Stock = incoming.Stock
	}
	return &merged
}

func pickNonEmpty(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}

func parseNullFloat(value string) sql.NullFloat64 {
	if value == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
