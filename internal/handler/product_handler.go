package handler

import (
	"errors"
	"io"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProductHandler struct {
	catalog  service.CatalogService
	importer service.ImportService
}

func NewProductHandler(catalog service.CatalogService, importer service.ImportService) *ProductHandler {
	return &ProductHandler{catalog: catalog, importer: importer}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid JSON"})
	}

	if err := h.catalog.CreateProduct(&product); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.Status(400).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to create product"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	page, err := h.catalog.ListProducts(repository.ProductSearch{
		Query:   c.Query("q"),
		SortBy:  c.Query("sortBy", "name"),
		SortDir: c.Query("sortDir", "asc"),
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 20),
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": err.Error(), "code": "INTERNAL_ERROR"})
	}
	return c.JSON(page)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Product not found"})
	}

	product, err := h.catalog.GetProduct(id)
	if errors.Is(err, service.ErrProductNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Product not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid JSON"})
	}

	updated, err := h.catalog.UpdateProduct(id, &product)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(400).JSON(fiber.Map{"success": false, "message": err.Error()})
		case errors.Is(err, service.ErrProductNotFound):
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Product not found"})
	}

	if err := h.catalog.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Product not found"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted successfully"})
}

func (h *ProductHandler) BulkImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "No file uploaded"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "message": "No file uploaded"})
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to read file"})
	}

	result, err := h.importer.ImportProducts(fileHeader.Filename, payload)
	if err != nil {
		var dup *service.DuplicateUploadError
		switch {
		case errors.As(err, &dup):
			return c.Status(409).JSON(fiber.Map{
				"success":    false,
				"message":    "This file has already been uploaded",
				"uploadId":   dup.UploadID,
				"uploadedAt": dup.UploadedAt,
			})
		case errors.Is(err, service.ErrValidation):
			return c.Status(400).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"uploadId": result.UploadID,
		"inserted": result.Inserted,
		"updated":  result.Updated,
	})
}

func (h *ProductHandler) RollbackBatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("uploadId"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "message": "Upload batch not found"})
	}

	result, err := h.importer.RollbackBatch(id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "message": "Upload batch not found"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  result.Message,
		"fileName": result.FileName,
	})
}

func (h *ProductHandler) GetBatches(c *fiber.Ctx) error {
	batches, err := h.importer.ListBatches()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": batches})
}
