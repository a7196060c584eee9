package service

import (
	"errors"
	"fmt"
	"math"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/pkg/validator"

	"github.com/google/uuid"
)

// Pagination is the envelope returned by every listing endpoint.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	PageSize    int   `json:"pageSize"`
}

// NewPagination clamps page/limit to at least 1 before computing bounds.
func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalCount:  total,
		PageSize:    limit,
	}
}

func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return page, limit
}

// ProductView decorates a product with its aggregate stock for listings.
type ProductView struct {
	model.Product
	Quantity int `json:"quantity"`
}

type ProductPage struct {
	Products   []ProductView `json:"products"`
	Pagination Pagination    `json:"pagination"`
}

type CatalogService interface {
	CreateProduct(product *model.Product) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(s repository.ProductSearch) (*ProductPage, error)
	UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func validateProduct(product *model.Product) error {
	if errs := validator.ValidateStruct(product); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
	}
	return nil
}

func (s *catalogService) CreateProduct(product *model.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.productRepo.Create(product)
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *catalogService) ListProducts(search repository.ProductSearch) (*ProductPage, error) {
	search.Page, search.Limit = clampPaging(search.Page, search.Limit)

	products, total, err := s.productRepo.Search(search)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, Quantity: p.TotalQuantity()})
	}

	return &ProductPage{
		Products:   views,
		Pagination: NewPagination(search.Page, search.Limit, total),
	}, nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.WholesalePrice = req.WholesalePrice
	existing.RetailPrice = req.RetailPrice
	existing.Sizes = req.Sizes
	existing.Description = req.Description
	existing.Brand = req.Brand
	existing.Barcode = req.Barcode
	existing.HsnSac = req.HsnSac
	existing.GST = req.GST

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	err := s.productRepo.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
