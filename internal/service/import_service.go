package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"retail-backoffice/internal/config"
	"retail-backoffice/internal/importer"
	"retail-backoffice/internal/models"
	"retail-backoffice/internal/tabular"
)

// ImportBackend is the persistence boundary of the import pipeline. The
// orchestrator only ever touches storage through these five operations, so
// the whole pipeline can run against MySQL in production and an in-memory
// fake in tests.
type ImportBackend interface {
	// CreateJob allocates a new job and returns its code.
	CreateJob(orgID int, templateKey, sourceFile, status string) (string, error)
	// InsertRows persists rows for a job. Implementations batch as needed.
	InsertRows(jobCode string, rows []models.ImportRow) error
	// LoadStagedRows resumes a staged job, marking it consumed exactly once.
	// It returns the staged rows in row order plus the original file name.
	LoadStagedRows(orgID int, jobCode, templateKey string) ([]models.ImportRow, string, error)
	// ValidateJob checks required fields on every row of the job and
	// records the per-row outcome.
	ValidateJob(orgID int, jobCode string) (*models.ValidationSummary, error)
	// ApplyJob upserts the valid subset of the job into the catalog.
	ApplyJob(orgID int, jobCode, mode string) (*models.ApplySummary, error)
}

// DetectRequest carries one uploaded file into the detect phase.
type DetectRequest struct {
	OrgID       int
	TemplateKey string
	FileName    string
	Data        []byte
}

// ImportRequest runs the full import. Exactly one of Data or StagedJobCode
// feeds the pipeline: a fresh file, or a job staged earlier by detect.
type ImportRequest struct {
	OrgID            int
	TemplateKey      string
	FileName         string
	Data             []byte
	StagedJobCode    string
	MappingOverrides map[string]string
	ApplyNow         bool
	ApplyMode        string
}

type ImportService struct {
	backend ImportBackend
	redis   *redis.Client
	cfg     *config.Config
	log     *logrus.Logger
}

func NewImportService(backend ImportBackend, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *ImportService {
	return &ImportService{
		backend: backend,
		redis:   redisClient,
		cfg:     cfg,
		log:     log,
	}
}

// Templates lists the import templates available to the mapping UI.
func (s *ImportService) Templates() []*importer.Template {
	return importer.Templates()
}

// Detect decodes the upload, stages every raw row under a new job and
// proposes a column mapping. Nothing is written to the catalog; the caller
// reviews the proposal and comes back through Import with the job code.
func (s *ImportService) Detect(req *DetectRequest) (*models.DetectResult, error) {
	template, err := importer.TemplateByKey(req.TemplateKey)
	if err != nil {
		return nil, err
	}

	records, err := s.decodeUpload(req.FileName, req.Data)
	if err != nil {
		return nil, err
	}

	columns := records[0].Keys()
	proposed := importer.AutoMap(columns, template)

	jobCode, err := s.backend.CreateJob(req.OrgID, template.Key, req.FileName, models.JobStatusStaged)
	if err != nil {
		return nil, importer.WrapError(importer.TagJobCreateFailed, "could not create import job", err)
	}

	rows, err := s.buildRows(jobCode, records, nil)
	if err != nil {
		return nil, err
	}
	if err := s.backend.InsertRows(jobCode, rows); err != nil {
		return nil, importer.WrapError(importer.TagRowsInsertFailed, "could not stage import rows", err)
	}

	s.setProgress(jobCode, "staged")
	s.log.WithFields(logrus.Fields{
		"job_code": jobCode,
		"template": template.Key,
		"rows":     len(records),
	}).Info("Import job staged")

	return &models.DetectResult{
		Step:            "staged",
		JobCode:         jobCode,
		TemplateKey:     template.Key,
		SourceFile:      req.FileName,
		TotalRows:       len(records),
		DetectedColumns: columns,
		ProposedMapping: proposed,
	}, nil
}

// Import runs the pipeline end to end: source the records (fresh upload or
// staged job), resolve the mapping, normalize and coerce every record,
// deduplicate, persist, validate, and optionally apply.
func (s *ImportService) Import(req *ImportRequest) (*models.ImportResult, error) {
	template, err := importer.TemplateByKey(req.TemplateKey)
	if err != nil {
		return nil, err
	}

	var (
		records    []*tabular.Record
		sourceFile string
	)
	if req.StagedJobCode != "" {
		records, sourceFile, err = s.resumeStaged(req.OrgID, req.StagedJobCode, template.Key)
	} else {
		sourceFile = req.FileName
		records, err = s.decodeUpload(req.FileName, req.Data)
	}
	if err != nil {
		return nil, err
	}

	mapping := s.resolveMapping(records, template, req.MappingOverrides)

	now := time.Now()
	pairs := make([]importer.RowPair, 0, len(records))
	for _, raw := range records {
		normalized := importer.ApplyMapping(raw, mapping, template)
		if normalized != nil {
			importer.CoerceValues(normalized, template, now)
			if template.Key == importer.TemplateProducts {
				importer.ApplyDerivedUnitPrice(normalized, mapping["unit_price"])
			}
		}
		pairs = append(pairs, importer.RowPair{Raw: raw, Normalized: normalized})
	}

	pairs, deduped := importer.DeduplicateRows(pairs, template.Key)

	jobCode, err := s.backend.CreateJob(req.OrgID, template.Key, sourceFile, models.JobStatusImported)
	if err != nil {
		return nil, importer.WrapError(importer.TagJobCreateFailed, "could not create import job", err)
	}
	s.setProgress(jobCode, "normalizing")

	rows := make([]models.ImportRow, 0, len(pairs))
	for i, pair := range pairs {
		row, err := s.buildRow(jobCode, i+1, pair.Raw, pair.Normalized)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := s.backend.InsertRows(jobCode, rows); err != nil {
		return nil, importer.WrapError(importer.TagRowsInsertFailed, "could not persist import rows", err)
	}

	s.setProgress(jobCode, "validating")
	summary, err := s.backend.ValidateJob(req.OrgID, jobCode)
	if err != nil {
		return nil, importer.WrapError(importer.TagValidateFailed, "validation failed", err)
	}

	result := &models.ImportResult{
		JobCode:     jobCode,
		TemplateKey: template.Key,
		SourceFile:  sourceFile,
		TotalRows:   summary.TotalRows,
		ValidRows:   summary.ValidRows,
		InvalidRows: summary.InvalidRows,
		DedupedRows: deduped,
	}

	if req.ApplyNow && summary.ValidRows > 0 {
		s.setProgress(jobCode, "applying")
		applied, err := s.backend.ApplyJob(req.OrgID, jobCode, req.ApplyMode)
		if err != nil {
			return nil, importer.WrapError(importer.TagApplyFailed, "apply failed", err)
		}
		result.AppliedRows = applied.AppliedRows
		result.SkippedRows = applied.SkippedRows
		result.Applied = true
	}

	s.setProgress(jobCode, "done")
	s.log.WithFields(logrus.Fields{
		"job_code": jobCode,
		"template": template.Key,
		"total":    result.TotalRows,
		"valid":    result.ValidRows,
		"invalid":  result.InvalidRows,
		"deduped":  result.DedupedRows,
		"applied":  result.Applied,
	}).Info("Import job completed")

	return result, nil
}

// decodeUpload enforces the upload gates and turns the file into records:
// presence, size ceiling, supported extension, parseability, at least one
// data row, and the row ceiling, in that order.
func (s *ImportService) decodeUpload(fileName string, data []byte) ([]*tabular.Record, error) {
	if len(data) == 0 {
		return nil, importer.NewError(importer.TagFileRequired, "no file was uploaded")
	}
	if len(data) > s.cfg.UploadMaxSize {
		return nil, importer.NewError(importer.TagFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.UploadMaxSize))
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		rows = tabular.DecodeCSV(string(data))
	case ".xlsx":
		rows, err = tabular.DecodeXLSX(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, importer.NewError(importer.TagUnsupportedFile,
			fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(fileName)))
	}

	records := tabular.Objectify(rows)
	if len(records) == 0 {
		return nil, importer.NewError(importer.TagEmptyFile, "the file has no data rows")
	}
	if len(records) > s.cfg.ImportMaxRows {
		return nil, importer.NewError(importer.TagTooManyRows,
			fmt.Sprintf("file has %d rows, the limit is %d", len(records), s.cfg.ImportMaxRows))
	}
	return records, nil
}

// resumeStaged loads the rows staged by an earlier detect call and decodes
// them back into records. The backend guarantees single consumption.
func (s *ImportService) resumeStaged(orgID int, jobCode, templateKey string) ([]*tabular.Record, string, error) {
	rows, sourceFile, err := s.backend.LoadStagedRows(orgID, jobCode, templateKey)
	if err != nil {
		return nil, "", err
	}

	records := make([]*tabular.Record, 0, len(rows))
	for _, row := range rows {
		rec := tabular.NewRecord()
		if err := json.Unmarshal([]byte(row.RawPayload), rec); err != nil {
			return nil, "", importer.WrapError(importer.TagParseFailed,
				fmt.Sprintf("staged row %d is not decodable", row.RowNumber), err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, "", importer.NewError(importer.TagEmptyFile, "the staged job has no rows")
	}
	return records, sourceFile, nil
}

func (s *ImportService) resolveMapping(records []*tabular.Record, template *importer.Template, overrides map[string]string) map[string]string {
	columns := records[0].Keys()
	auto := importer.AutoMap(columns, template)
	return importer.ResolveMapping(auto, overrides, template, columns)
}

func (s *ImportService) buildRows(jobCode string, raw []*tabular.Record, normalized []*tabular.Record) ([]models.ImportRow, error) {
	rows := make([]models.ImportRow, 0, len(raw))
	for i, rec := range raw {
		var norm *tabular.Record
		if normalized != nil {
			norm = normalized[i]
		}
		row, err := s.buildRow(jobCode, i+1, rec, norm)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ImportService) buildRow(jobCode string, rowNumber int, raw, normalized *tabular.Record) (models.ImportRow, error) {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return models.ImportRow{}, importer.WrapError(importer.TagRowsInsertFailed,
			fmt.Sprintf("row %d could not be encoded", rowNumber), err)
	}

	row := models.ImportRow{
		JobCode:    jobCode,
		RowNumber:  rowNumber,
		RawPayload: string(rawJSON),
	}
	if normalized != nil {
		normJSON, err := json.Marshal(normalized)
		if err != nil {
			return models.ImportRow{}, importer.WrapError(importer.TagRowsInsertFailed,
				fmt.Sprintf("row %d could not be encoded", rowNumber), err)
		}
		row.NormalizedPayload.String = string(normJSON)
		row.NormalizedPayload.Valid = true
	}
	return row, nil
}

// setProgress publishes the current stage for pollers. Redis being down is
// not a reason to fail an import, so errors are only logged.
func (s *ImportService) setProgress(jobCode, stage string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.redis.Set(ctx, ProgressKey(jobCode), stage, time.Hour).Err(); err != nil {
		s.log.WithError(err).Warn("Failed to publish import progress")
	}
}

// Progress reports the last published stage for a job, or "unknown" when
// nothing is recorded.
func (s *ImportService) Progress(jobCode string) string {
	if s.redis == nil {
		return "unknown"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	stage, err := s.redis.Get(ctx, ProgressKey(jobCode)).Result()
	if err != nil {
		return "unknown"
	}
	return stage
}

func ProgressKey(jobCode string) string {
	return "import:progress:" + jobCode
}
