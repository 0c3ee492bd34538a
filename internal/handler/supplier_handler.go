package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"retail-backoffice/internal/models"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/utils"
)

type SupplierHandler struct {
	supplierRepo *repository.SupplierRepository
}

func NewSupplierHandler(supplierRepo *repository.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{supplierRepo: supplierRepo}
}

func (h *SupplierHandler) GetAll(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	suppliers, total, err := h.supplierRepo.GetAll(orgIDFromCtx(c), params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve suppliers", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Suppliers retrieved successfully", suppliers, pagination)
}

func (h *SupplierHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid supplier ID", err)
	}

	supplier, err := h.supplierRepo.GetByID(orgIDFromCtx(c), id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Supplier not found", nil)
	}
	return utils.SuccessResponse(c, "Supplier retrieved successfully", supplier)
}

func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var req models.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Supplier name is required", nil)
	}

	supplier := supplierFromRequest(orgIDFromCtx(c), &req)
	if err := h.supplierRepo.Create(supplier); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create supplier", err)
	}
	return utils.SuccessResponse(c, "Supplier created successfully", supplier)
}

func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid supplier ID", err)
	}

	var req models.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Supplier name is required", nil)
	}

	supplier := supplierFromRequest(orgIDFromCtx(c), &req)
	supplier.ID = id
	if err := h.supplierRepo.Update(supplier); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Supplier not found", err)
	}
	return utils.SuccessResponse(c, "Supplier updated successfully", supplier)
}

func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid supplier ID", err)
	}

	if err := h.supplierRepo.Delete(orgIDFromCtx(c), id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Supplier not found", err)
	}
	return utils.SuccessResponse(c, "Supplier deleted successfully", nil)
}

func supplierFromRequest(orgID int, req *models.SupplierRequest) *models.Supplier {
	return &models.Supplier{
		OrgID:    orgID,
		Name:     req.Name,
		TaxID:    req.TaxID,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Contact:  req.Contact,
		IsActive: req.IsActive,
	}
}
