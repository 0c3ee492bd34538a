package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"retail-backoffice/internal/importer"
	"retail-backoffice/internal/models"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/tabular"
)

// ReportService renders Excel downloads: the per-template upload sheet,
// the invalid-row report for a finished job, and the job history export.
type ReportService struct {
	importRepo *repository.ImportRepository
}

func NewReportService(importRepo *repository.ImportRepository) *ReportService {
	return &ReportService{importRepo: importRepo}
}

// TemplateWorkbook builds an empty upload workbook for a template: one
// header row with the canonical field names, ready to fill in.
func (s *ReportService) TemplateWorkbook(templateKey string) (*bytes.Buffer, string, error) {
	template, err := importer.TemplateByKey(templateKey)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := template.Label
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})

	for i, field := range template.Fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", err
		}
		f.SetCellValue(sheetName, cell, field.Label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		f.SetColWidth(sheetName, mustColumnName(i+1), mustColumnName(i+1), 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("template_%s.xlsx", template.Key), nil
}

// InvalidRowsReport exports the rows of a job that failed validation, with
// the original cell values so the operator can fix the source file.
func (s *ReportService) InvalidRowsReport(orgID int, jobCode string) (*bytes.Buffer, string, error) {
	job, err := s.importRepo.GetJobByCode(orgID, jobCode)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Invalid Rows"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#F8D7DA"},
			Pattern: 1,
		},
	})

	var columns []string
	sheetRow := 1
	const pageSize = 500

	for offset := 0; ; offset += pageSize {
		rows, _, err := s.importRepo.GetJobRows(orgID, jobCode, true, pageSize, offset)
		if err != nil {
			return nil, "", err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			rec := tabular.NewRecord()
			if err := rec.UnmarshalJSON([]byte(row.RawPayload)); err != nil {
				continue
			}

			if columns == nil {
				columns = append([]string{"row", "error"}, rec.Keys()...)
				for i, col := range columns {
					cell, _ := excelize.CoordinatesToCellName(i+1, sheetRow)
					f.SetCellValue(sheetName, cell, col)
					f.SetCellStyle(sheetName, cell, cell, headerStyle)
				}
				sheetRow++
			}

			cell, _ := excelize.CoordinatesToCellName(1, sheetRow)
			f.SetCellValue(sheetName, cell, row.RowNumber)
			cell, _ = excelize.CoordinatesToCellName(2, sheetRow)
			f.SetCellValue(sheetName, cell, row.ValidationError)
			for i, col := range columns[2:] {
				cell, _ := excelize.CoordinatesToCellName(i+3, sheetRow)
				f.SetCellValue(sheetName, cell, rec.Get(col))
			}
			sheetRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("invalid_rows_%s.xlsx", job.JobCode), nil
}

// JobsReport exports the org's import history.
func (s *ReportService) JobsReport(orgID int) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Jobs"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Job Code", "Template", "Source File", "Status",
		"Total", "Valid", "Invalid", "Applied", "Skipped", "Created At",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	sheetRow := 2
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		jobs, _, err := s.importRepo.GetJobs(orgID, pageSize, offset)
		if err != nil {
			return nil, "", err
		}
		if len(jobs) == 0 {
			break
		}
		for _, job := range jobs {
			writeJobRow(f, sheetName, sheetRow, &job)
			sheetRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf, "import_jobs.xlsx", nil
}

func writeJobRow(f *excelize.File, sheetName string, sheetRow int, job *models.ImportJob) {
	values := []interface{}{
		job.JobCode, job.TemplateKey, job.SourceFile, job.Status,
		job.TotalRows, job.ValidRows, job.InvalidRows,
		job.AppliedRows, job.SkippedRows,
		job.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for i, value := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, sheetRow)
		f.SetCellValue(sheetName, cell, value)
	}
}

func mustColumnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
