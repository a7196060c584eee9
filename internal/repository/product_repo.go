package repository

import (
	"errors"

	"go-retail-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductSearch carries the listing parameters for the catalog.
type ProductSearch struct {
	Query   string
	SortBy  string
	SortDir string
	Page    int
	Limit   int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	// FindByKey looks a product up by its import identity (name, category, brand).
	FindByKey(name, category, brand string) (*model.Product, error)
	Search(s ProductSearch) ([]model.Product, int64, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	DeleteMany(ids []uuid.UUID) error
	// DecrementSizeQuantity applies a guarded atomic decrement; it fails with
	// ErrInsufficientStock when the stored quantity is below qty, so two
	// concurrent orders can never drive a quantity negative.
	DecrementSizeQuantity(productID uuid.UUID, size string, qty int) error
	IncrementSizeQuantity(productID uuid.UUID, size string, qty int) error
	SetSizeQuantity(productID uuid.UUID, size string, quantity int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Sizes").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByKey(name, category, brand string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Sizes").
		First(&product, "name = ? AND category = ? AND brand = ?", name, category, brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Search(s ProductSearch) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{}).Preload("Sizes")

	if s.Query != "" {
		like := "%" + s.Query + "%"
		query = query.Where(
			"name ILIKE ? OR category ILIKE ? OR brand ILIKE ? OR barcode ILIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if s.SortDir == "desc" {
		dir = "DESC"
	}
	order := "name " + dir
	switch s.SortBy {
	case "retailPrice":
		order = "retail_price " + dir
	case "quantity":
		// Aggregate stock lives on the size rows, sort on the summed subquery.
		order = "(SELECT COALESCE(SUM(quantity), 0) FROM product_sizes WHERE product_sizes.product_id = products.id) " + dir
	}

	var products []model.Product
	err := query.Order(order).
		Offset((s.Page - 1) * s.Limit).
		Limit(s.Limit).
		Find(&products).Error
	return products, total, err
}

// Update replaces the product row and its size variants.
func (r *productRepo) Update(product *model.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductSize{}).Error; err != nil {
			return err
		}
		for i := range product.Sizes {
			product.Sizes[i].ID = 0
			product.Sizes[i].ProductID = product.ID
		}
		return tx.Save(product).Error
	})
}

func (r *productRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) DeleteMany(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&model.Product{}, "id IN ?", ids).Error
}

// firstSizeRow selects the lowest-id size row for (product, size).
// Duplicate size labels are not constrained away; stock math touches the
// first row only.
func (r *productRepo) firstSizeRow(productID uuid.UUID, size string) *gorm.DB {
	return r.db.Model(&model.ProductSize{}).
		Select("id").
		Where("product_id = ? AND size = ?", productID, size).
		Order("id").
		Limit(1)
}

func (r *productRepo) DecrementSizeQuantity(productID uuid.UUID, size string, qty int) error {
	res := r.db.Model(&model.ProductSize{}).
		Where("id = (?) AND quantity >= ?", r.firstSizeRow(productID, size), qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *productRepo) IncrementSizeQuantity(productID uuid.UUID, size string, qty int) error {
	return r.db.Model(&model.ProductSize{}).
		Where("id = (?)", r.firstSizeRow(productID, size)).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func (r *productRepo) SetSizeQuantity(productID uuid.UUID, size string, quantity int) error {
	return r.db.Model(&model.ProductSize{}).
		Where("id = (?)", r.firstSizeRow(productID, size)).
		UpdateColumn("quantity", quantity).Error
}
