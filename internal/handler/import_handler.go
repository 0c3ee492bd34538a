package handler

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"retail-backoffice/internal/importer"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/service"
	"retail-backoffice/internal/utils"
)

type ImportHandler struct {
	importService *service.ImportService
	reportService *service.ReportService
	importRepo    *repository.ImportRepository
}

func NewImportHandler(importService *service.ImportService, reportService *service.ReportService, importRepo *repository.ImportRepository) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		reportService: reportService,
		importRepo:    importRepo,
	}
}

// Templates lists the available import templates with their fields, for
// the mapping UI.
func (h *ImportHandler) Templates(c *fiber.Ctx) error {
	templates := h.importService.Templates()

	out := make([]fiber.Map, 0, len(templates))
	for _, t := range templates {
		fields := make([]fiber.Map, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, fiber.Map{
				"name":     f.Name,
				"label":    f.Label,
				"kind":     f.Kind,
				"required": f.Required,
			})
		}
		out = append(out, fiber.Map{
			"key":    t.Key,
			"label":  t.Label,
			"fields": fields,
		})
	}
	return utils.SuccessResponse(c, "Templates retrieved successfully", out)
}

// Detect stages the uploaded file and returns the proposed column mapping.
func (h *ImportHandler) Detect(c *fiber.Ctx) error {
	fileName, data, err := readUpload(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Could not read uploaded file", err)
	}

	result, err := h.importService.Detect(&service.DetectRequest{
		OrgID:       orgIDFromCtx(c),
		TemplateKey: c.FormValue("template_key"),
		FileName:    fileName,
		Data:        data,
	})
	if err != nil {
		return importErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, "File staged successfully", result)
}

// Import runs the pipeline on a fresh upload or a staged job.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	fileName, data, err := readUpload(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Could not read uploaded file", err)
	}

	var overrides map[string]string
	if raw := c.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Mapping must be a JSON object of field to column", err)
		}
	}

	result, err := h.importService.Import(&service.ImportRequest{
		OrgID:            orgIDFromCtx(c),
		TemplateKey:      c.FormValue("template_key"),
		FileName:         fileName,
		Data:             data,
		StagedJobCode:    c.FormValue("staged_job_code"),
		MappingOverrides: overrides,
		ApplyNow:         c.FormValue("apply") == "true",
		ApplyMode:        c.FormValue("apply_mode"),
	})
	if err != nil {
		return importErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, "Import completed successfully", result)
}

// Jobs lists the org's import jobs, newest first.
func (h *ImportHandler) Jobs(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	jobs, total, err := h.importRepo.GetJobs(orgIDFromCtx(c), params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve jobs", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Jobs retrieved successfully", jobs, pagination)
}

// JobDetail returns one job by its code.
func (h *ImportHandler) JobDetail(c *fiber.Ctx) error {
	job, err := h.importRepo.GetJobByCode(orgIDFromCtx(c), c.Params("code"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Job not found", nil)
	}
	return utils.SuccessResponse(c, "Job retrieved successfully", job)
}

// JobRows pages through the persisted rows of a job. With only_invalid=true
// the listing is restricted to rows that failed validation.
func (h *ImportHandler) JobRows(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	onlyInvalid := c.Query("only_invalid") == "true"

	rows, total, err := h.importRepo.GetJobRows(orgIDFromCtx(c), c.Params("code"), onlyInvalid, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Job not found", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Rows retrieved successfully", rows, pagination)
}

// Progress reports the last published pipeline stage for a job.
func (h *ImportHandler) Progress(c *fiber.Ctx) error {
	jobCode := c.Params("code")
	return utils.SuccessResponse(c, "Progress retrieved successfully", fiber.Map{
		"job_code": jobCode,
		"stage":    h.importService.Progress(jobCode),
	})
}

// DownloadTemplate serves an empty upload workbook for a template.
func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	buf, fileName, err := h.reportService.TemplateWorkbook(c.Params("key"))
	if err != nil {
		return importErrorResponse(c, err)
	}
	return sendWorkbook(c, buf.Bytes(), fileName)
}

// DownloadInvalidRows serves the invalid-row report of a job.
func (h *ImportHandler) DownloadInvalidRows(c *fiber.Ctx) error {
	buf, fileName, err := h.reportService.InvalidRowsReport(orgIDFromCtx(c), c.Params("code"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Job not found", err)
	}
	return sendWorkbook(c, buf.Bytes(), fileName)
}

// DownloadJobs serves the org's import history as a workbook.
func (h *ImportHandler) DownloadJobs(c *fiber.Ctx) error {
	buf, fileName, err := h.reportService.JobsReport(orgIDFromCtx(c))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build report", err)
	}
	return sendWorkbook(c, buf.Bytes(), fileName)
}

// readUpload pulls the optional multipart file out of the request. A
// missing file is not an error here; the service decides whether one was
// required.
func readUpload(c *fiber.Ctx) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return fileHeader.Filename, data, nil
}

func sendWorkbook(c *fiber.Ctx, data []byte, fileName string) error {
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	return c.Send(data)
}

func orgIDFromCtx(c *fiber.Ctx) int {
	if v, ok := c.Locals("org_id").(int); ok {
		return v
	}
	return 0
}

// importErrorResponse maps the pipeline's error tags to HTTP statuses so
// API clients can branch on the failure kind.
func importErrorResponse(c *fiber.Ctx, err error) error {
	tag := importer.TagOf(err)

	status := fiber.StatusInternalServerError
	switch tag {
	case importer.TagUnknownTemplate, importer.TagFileRequired,
		importer.TagUnsupportedFile, importer.TagEmptyFile,
		importer.TagTooManyRows, importer.TagStagedJobMismatch:
		status = fiber.StatusBadRequest
	case importer.TagFileTooLarge:
		status = fiber.StatusRequestEntityTooLarge
	case importer.TagParseFailed:
		status = fiber.StatusUnprocessableEntity
	case importer.TagStagedJobNotFound:
		status = fiber.StatusNotFound
	case importer.TagStagedJobConsumed:
		status = fiber.StatusConflict
	default:
		// Structural decode failures carry their own zip_/xlsx_ tags.
		if strings.HasPrefix(tag, "zip_") || strings.HasPrefix(tag, "xlsx_") {
			status = fiber.StatusUnprocessableEntity
		}
	}

	return utils.TaggedErrorResponse(c, status, tag, err.Error(), nil)
}
