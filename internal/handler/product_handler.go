package handler

import (
	"database/sql"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"retail-backoffice/internal/models"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/utils"
)

type ProductHandler struct {
	productRepo *repository.ProductRepository
}

func NewProductHandler(productRepo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

func (h *ProductHandler) GetAll(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	products, total, err := h.productRepo.GetAll(orgIDFromCtx(c), params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve products", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Products retrieved successfully", products, pagination)
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product ID", err)
	}

	product, err := h.productRepo.GetByID(orgIDFromCtx(c), id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Product not found", nil)
	}
	return utils.SuccessResponse(c, "Product retrieved successfully", product)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req models.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Product name is required", nil)
	}

	product := productFromRequest(orgIDFromCtx(c), &req)
	if err := h.productRepo.Create(product); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create product", err)
	}
	return utils.SuccessResponse(c, "Product created successfully", product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product ID", err)
	}

	var req models.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Product name is required", nil)
	}

	product := productFromRequest(orgIDFromCtx(c), &req)
	product.ID = id
	if err := h.productRepo.Update(product); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Product not found", err)
	}
	return utils.SuccessResponse(c, "Product updated successfully", product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product ID", err)
	}

	if err := h.productRepo.Delete(orgIDFromCtx(c), id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Product not found", err)
	}
	return utils.SuccessResponse(c, "Product deleted successfully", nil)
}

func productFromRequest(orgID int, req *models.ProductRequest) *models.Product {
	product := &models.Product{
		OrgID:        orgID,
		Name:         req.Name,
		Barcode:      req.Barcode,
		InternalCode: req.InternalCode,
		Category:     req.Category,
		SupplierName: req.SupplierName,
		IsActive:     req.IsActive,
	}
	if req.UnitPrice != nil {
		product.UnitPrice = sql.NullFloat64{Float64: *req.UnitPrice, Valid: true}
	}
	if req.Stock != nil {
		product.Stock = sql.NullFloat64{Float64: *req.Stock, Valid: true}
	}
	return product
}
